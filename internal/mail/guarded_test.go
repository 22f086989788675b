package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/belovedzguard/beloved-api/pkg/breaker"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

type countingMailer struct {
	calls int
	err   error
}

func (m *countingMailer) Send(context.Context, *Message) error {
	m.calls++
	return m.err
}

func TestGuardedMailer(t *testing.T) {
	relay := &countingMailer{err: errors.New("421 service not available")}
	m := NewGuardedMailer(relay, 2, time.Hour, logger.NewNop())
	msg := &Message{From: "a@b.co", To: "c@d.co"}

	assert.Error(t, m.Send(context.Background(), msg))
	assert.Error(t, m.Send(context.Background(), msg))
	assert.Equal(t, breaker.StateOpen, m.State())

	err := m.Send(context.Background(), msg)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, 2, relay.calls)
}

func TestGuardedMailer_Success(t *testing.T) {
	relay := &countingMailer{}
	m := NewGuardedMailer(relay, 2, time.Hour, logger.NewNop())

	for i := 0; i < 5; i++ {
		assert.NoError(t, m.Send(context.Background(), &Message{}))
	}
	assert.Equal(t, 5, relay.calls)
	assert.Equal(t, breaker.StateClosed, m.State())
}

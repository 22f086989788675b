package mail

import (
	"context"
	"time"

	"github.com/belovedzguard/beloved-api/pkg/breaker"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// GuardedMailer stops calling the relay after repeated failures and fails
// fast until the cooldown passes.
type GuardedMailer struct {
	next    Mailer
	breaker *breaker.CircuitBreaker
}

// NewGuardedMailer wraps next with a breaker that opens after maxFailures
// consecutive delivery errors.
func NewGuardedMailer(next Mailer, maxFailures int, cooldown time.Duration, log logger.Logger) *GuardedMailer {
	cb := breaker.New(breaker.Config{
		Name:        "smtp",
		MaxFailures: maxFailures,
		Cooldown:    cooldown,
		OnStateChange: func(name string, from, to breaker.State) {
			log.Warn("Mail relay circuit changed state",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &GuardedMailer{next: next, breaker: cb}
}

// Send implements Mailer. It returns breaker.ErrOpen without contacting
// the relay while the circuit is open.
func (m *GuardedMailer) Send(ctx context.Context, msg *Message) error {
	return m.breaker.Execute(ctx, func(ctx context.Context) error {
		return m.next.Send(ctx, msg)
	})
}

// State reports the breaker state.
func (m *GuardedMailer) State() breaker.State {
	return m.breaker.State()
}

package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belovedzguard/beloved-api/pkg/logger"
)

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("backfill", DefaultSchedule, time.Minute, noop))
	assert.Error(t, s.Add("backfill", DefaultSchedule, time.Minute, noop))
	assert.Error(t, s.Add("broken", "every tuesday", time.Minute, noop))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	require.NoError(t, s.Add("backfill", DefaultSchedule, time.Minute, func(context.Context) error { return nil }))

	assert.True(t, s.Next().IsZero())
	s.Start()
	assert.True(t, s.Next().After(time.Now()))
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	var deadline bool
	require.NoError(t, s.Add("backfill", DefaultSchedule, time.Minute, func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}))
	require.NoError(t, s.Add("failing", DefaultSchedule, 0, func(context.Context) error {
		return fmt.Errorf("boom")
	}))

	require.NoError(t, s.RunNow(context.Background(), "backfill"))
	assert.True(t, deadline)

	assert.EqualError(t, s.RunNow(context.Background(), "failing"), "boom")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"now", 1, "entry", 2, "dangling"})
	require.Len(t, fields, 2)
	assert.Equal(t, "now", fields[0].Key)
	assert.Equal(t, 2, fields[1].Value)
}

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_InvalidSpec(t *testing.T) {
	s := NewScheduler(time.Second)
	err := s.Add("stats", "every five minutes", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestWrap_BoundsContextAndSwallowsErrors(t *testing.T) {
	s := NewScheduler(50 * time.Millisecond)

	var deadline time.Time
	run := s.wrap("stats", func(ctx context.Context) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		require.True(t, ok)
		return errors.New("mongo down")
	})

	assert.NotPanics(t, run)
	assert.WithinDuration(t, time.Now(), deadline, time.Second)
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(time.Second)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("stats", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))
	assert.Equal(t, 1, s.Entries())

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

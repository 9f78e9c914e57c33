package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsJobs(t *testing.T) {
	r := NewRunner(context.Background(), logging.Nop())

	var n atomic.Int32
	for range 5 {
		require.True(t, r.Go("inc", func(context.Context) error {
			n.Add(1)
			return nil
		}))
	}
	require.NoError(t, r.Close())
	require.EqualValues(t, 5, n.Load())
}

func TestRunner_CloseCancelsAndWaits(t *testing.T) {
	r := NewRunner(context.Background(), logging.Nop())

	started := make(chan struct{})
	var finished atomic.Bool
	r.Go("block", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	})

	<-started
	require.NoError(t, r.Close())
	require.True(t, finished.Load())
}

func TestRunner_RejectsAfterClose(t *testing.T) {
	r := NewRunner(context.Background(), logging.Nop())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	require.False(t, r.Go("late", func(context.Context) error {
		t.Fatal("must not run")
		return nil
	}))
}

func TestRunner_JobErrorDoesNotStopOthers(t *testing.T) {
	r := NewRunner(context.Background(), logging.Nop())

	var ok atomic.Bool
	r.Go("fail", func(context.Context) error { return errors.New("boom") })
	r.Go("ok", func(context.Context) error {
		ok.Store(true)
		return nil
	})

	require.NoError(t, r.Close())
	require.True(t, ok.Load())
}

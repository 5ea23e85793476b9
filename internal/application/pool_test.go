package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"climbing-holds/internal/domain/entity"
)

func TestWorkerPool_QueueTimeout(t *testing.T) {
	pool := NewWorkerPool(1, 20*time.Millisecond)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- pool.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := pool.Do(context.Background(), func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrQueueFull)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, pool.Do(context.Background(), func(ctx context.Context) error { return nil }))
}

func TestWorkerPool_CancelWhileWaiting(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_ = pool.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := pool.Do(ctx, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, entity.ErrCancelled)
	require.True(t, IsCancelled(err))
}

func TestWorkerPool_LimitsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2, 0)
	require.Equal(t, 2, pool.Size())

	var running, peak int32
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		go func() {
			errs <- pool.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	for i := 0; i < 6; i++ {
		require.NoError(t, <-errs)
	}
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestNewWorkerPool_MinimumSize(t *testing.T) {
	require.Equal(t, 1, NewWorkerPool(0, 0).Size())
}

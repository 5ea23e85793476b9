package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"climbing-holds/internal/domain/entity"
)

// ErrQueueFull слот не освободился за время ожидания
var ErrQueueFull = errors.New("processing queue is full, try again later")

// WorkerPool ограничивает число одновременных тяжёлых задач обработки изображений.
type WorkerPool struct {
	sem          *semaphore.Weighted
	size         int
	queueTimeout time.Duration
}

// NewWorkerPool создаёт пул на size слотов. queueTimeout <= 0 означает ждать,
// пока не отменят ctx.
func NewWorkerPool(size int, queueTimeout time.Duration) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		sem:          semaphore.NewWeighted(int64(size)),
		size:         size,
		queueTimeout: queueTimeout,
	}
}

// Size число слотов
func (p *WorkerPool) Size() int { return p.size }

// Do ждёт свободный слот и выполняет fn с исходным ctx.
func (p *WorkerPool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	wait := ctx
	if p.queueTimeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(wait, 1); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", entity.ErrCancelled, ctx.Err())
		}
		return ErrQueueFull
	}
	defer p.sem.Release(1)

	return fn(ctx)
}

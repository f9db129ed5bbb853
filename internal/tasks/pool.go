// Package tasks runs short-lived background work with a hard cap on how many
// tasks may be in flight.
package tasks

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const DefaultLimit = 4

// Pool is a bounded fire-and-forget executor. Submissions never block: when
// every slot is busy the task is rejected.
type Pool struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(limit int64, logger *zerolog.Logger) *Pool {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(limit),
		ctx:    ctx,
		cancel: cancel,
		log:    l,
	}
}

// Go starts fn in its own goroutine if a slot is free. fn receives a context
// that is cancelled when the pool closes.
func (p *Pool) Go(name string, fn func(ctx context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.log.Debug().Str("task", name).Msg("pool closed, task dropped")
		return false
	}
	if !p.sem.TryAcquire(1) {
		p.log.Warn().Str("task", name).Msg("task pool saturated, task dropped")
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().Str("task", name).Interface("panic", r).Msg("task panicked")
			}
		}()
		fn(p.ctx)
	}()
	return true
}

// Close cancels running tasks and waits for them to return.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

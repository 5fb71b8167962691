package infrastructure

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/interfaces"
)

// WorkerPool runs fire-and-forget tasks on a fixed number of goroutines
// fed by a bounded queue. Each task gets its own timeout.
type WorkerPool struct {
	tasks       chan func(ctx context.Context)
	taskTimeout time.Duration
	metrics     interfaces.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(workers, queueSize int, taskTimeout time.Duration, metrics interfaces.Metrics) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if metrics == nil {
		metrics = interfaces.NopMetrics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		tasks:       make(chan func(ctx context.Context), queueSize),
		taskTimeout: taskTimeout,
		metrics:     metrics,
		ctx:         ctx,
		cancel:      cancel,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking. It reports false when the queue
// is full or the pool is shut down; the task is then dropped.
func (p *WorkerPool) Submit(task func(ctx context.Context)) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.metrics.ObserveDroppedTask()
		log.Warn("task queue full, dropping task")
		return false
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *WorkerPool) run(task func(ctx context.Context)) {
	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("background task panicked")
		}
	}()
	task(ctx)
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
// When ctx expires first, running tasks see their context cancelled.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

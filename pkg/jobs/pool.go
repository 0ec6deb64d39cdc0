package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of work handed to a Pool.
type Task struct {
	ID      string
	Kind    string
	Attempt int
}

// Handler processes a task.
type Handler func(context.Context, Task) error

// Result reports the outcome of a task after its final attempt.
type Result struct {
	Task Task
	Err  error
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// PoolConfig configures worker pool behaviour.
type PoolConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Pool runs a batch of tasks on a fixed number of goroutines and retries failures.
type Pool struct {
	name       string
	handler    Handler
	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewPool builds a pool with the provided handler. A negative MaxRetries disables retries.
func NewPool(name string, handler Handler, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Run processes every task and blocks until all are done. Results follow the input order.
// Tasks not started before ctx is cancelled report ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = p.process(ctx, tasks[idx])
			}
		}()
	}

	p.logger.Sugar().Infow("pool started", "pool", p.name, "workers", p.workers, "tasks", len(tasks))
feed:
	for idx := range tasks {
		select {
		case <-ctx.Done():
			for rest := idx; rest < len(tasks); rest++ {
				results[rest] = Result{Task: tasks[rest], Err: ctx.Err()}
			}
			break feed
		case indexes <- idx:
		}
	}
	close(indexes)
	wg.Wait()
	p.logger.Sugar().Infow("pool finished", "pool", p.name)
	return results
}

func (p *Pool) process(ctx context.Context, task Task) Result {
	for {
		task.Attempt++
		err := p.handler(ctx, task)
		if err == nil {
			return Result{Task: task}
		}
		var permanent *permanentError
		if errors.As(err, &permanent) {
			p.logger.Sugar().Errorw("task failed", "pool", p.name, "task_id", task.ID, "kind", task.Kind, "error", permanent.err)
			return Result{Task: task, Err: permanent.err}
		}
		if task.Attempt > p.maxRetries {
			p.logger.Sugar().Errorw("task exceeded retries", "pool", p.name, "task_id", task.ID, "kind", task.Kind, "error", err)
			return Result{Task: task, Err: err}
		}
		p.logger.Sugar().Warnw("task failed, retrying", "pool", p.name, "task_id", task.ID, "kind", task.Kind, "attempt", task.Attempt, "error", err)

		timer := time.NewTimer(p.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{Task: task, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

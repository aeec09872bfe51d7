package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of queued work carrying a typed payload.
type Task[P any] struct {
	ID      string
	Payload P

	attempt int
}

// Handler processes a task. A returned error schedules a retry until the attempt
// budget runs out.
type Handler[P any] func(ctx context.Context, task Task[P]) error

// Options tunes the worker pool.
type Options struct {
	Workers    int
	Buffer     int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-process worker pool over a typed task channel. Tasks live in memory
// only; anything that must survive a restart belongs in the artifact it produces, not
// in the queue.
type Queue[P any] struct {
	name    string
	handler Handler[P]
	opts    Options

	tasks chan Task[P]

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds a queue. Start must be called before Enqueue.
func New[P any](name string, handler Handler[P], opts Options) *Queue[P] {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Queue[P]{
		name:    name,
		handler: handler,
		opts:    opts,
		tasks:   make(chan Task[P], opts.Buffer),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[P]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.started = true
	q.opts.Logger.Info("queue started",
		zap.String("queue", q.name),
		zap.Int("workers", q.opts.Workers))
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (q *Queue[P]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands a task to the pool. It blocks while the buffer is full and fails once
// the queue is stopped.
func (q *Queue[P]) Enqueue(task Task[P]) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	default:
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue[P]) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			if err := q.handler(q.ctx, task); err != nil {
				q.retry(task, err)
			}
		}
	}
}

func (q *Queue[P]) retry(task Task[P], err error) {
	task.attempt++
	if task.attempt > q.opts.MaxRetries {
		q.opts.Logger.Error("task exhausted its retries",
			zap.String("queue", q.name),
			zap.String("task_id", task.ID),
			zap.Error(err))
		return
	}
	q.opts.Logger.Warn("task failed, retrying",
		zap.String("queue", q.name),
		zap.String("task_id", task.ID),
		zap.Int("attempt", task.attempt),
		zap.Error(err))

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(q.opts.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			select {
			case <-q.ctx.Done():
			case q.tasks <- task:
			}
		}
	}()
}

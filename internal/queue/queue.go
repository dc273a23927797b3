// Package queue runs webhook side effects in-process with retries.
// The HTTP handler answers Telegram immediately, but the effect is
// neither dropped on failure nor fired blindly: each task is retried
// with exponential backoff and counted in the metrics.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/internal/metrics"
	"github.com/maximzayviy-pixel/tgwallet/utils"
)

type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Queue struct {
	tasks      chan Task
	logger     *utils.Logger
	workers    int
	maxRetries int
	baseDelay  time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

type Option func(*Queue)

func WithMaxRetries(n int) Option {
	return func(q *Queue) { q.maxRetries = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(q *Queue) { q.baseDelay = d }
}

func NewQueue(logger *utils.Logger, workers, buffer int, opts ...Option) *Queue {
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{
		tasks:      make(chan Task, buffer),
		logger:     logger,
		workers:    workers,
		maxRetries: 3,
		baseDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Stop drains already queued tasks, then shuts the workers down.
func (q *Queue) Stop() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.tasks)
		q.mu.Unlock()

		q.wg.Wait()
		if q.cancel != nil {
			q.cancel()
		}
	})
}

// Enqueue schedules a task. A full buffer or a stopped queue drops the
// task and counts it as failed rather than blocking or panicking.
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Errorf("Очередь задач остановлена, задача %s отброшена", name)
		metrics.TasksFailed.WithLabelValues(name).Inc()
		return
	}

	select {
	case q.tasks <- Task{Name: name, Fn: fn}:
	default:
		q.logger.Errorf("Очередь задач переполнена, задача %s отброшена", name)
		metrics.TasksFailed.WithLabelValues(name).Inc()
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(ctx, task)
	}
}

func (q *Queue) run(ctx context.Context, task Task) {
	delay := q.baseDelay
	for attempt := 0; ; attempt++ {
		err := task.Fn(ctx)
		if err == nil {
			metrics.TasksSucceeded.WithLabelValues(task.Name).Inc()
			return
		}

		if attempt >= q.maxRetries {
			q.logger.Errorf("Задача %s провалена после %d попыток: %v", task.Name, attempt+1, err)
			metrics.TasksFailed.WithLabelValues(task.Name).Inc()
			return
		}

		q.logger.Warnf("Задача %s не выполнена (попытка %d): %v, повтор через %s", task.Name, attempt+1, err, delay)
		metrics.TaskRetries.WithLabelValues(task.Name).Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			metrics.TasksFailed.WithLabelValues(task.Name).Inc()
			return
		}
		delay *= 2
	}
}

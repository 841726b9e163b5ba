package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, t *Task) error

type WorkerConfig struct {
	Concurrency int
	MaxAttempts int
	PollTimeout time.Duration
}

// Worker drains a Queue with a fixed pool of goroutines. Failed tasks go
// back on the queue until MaxAttempts is reached.
type Worker struct {
	queue    Queue
	cfg      WorkerConfig
	logger   logger.ZapLogger
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewWorker(queue Queue, cfg WorkerConfig, log logger.ZapLogger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	return &Worker{
		queue:    queue,
		cfg:      cfg,
		logger:   log,
		handlers: make(map[string]Handler),
	}
}

func (w *Worker) Register(taskType string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[taskType] = h
}

// Run blocks until ctx is cancelled and all in-flight tasks finish. Tasks
// left unacknowledged by a previous run are queued again first.
func (w *Worker) Run(ctx context.Context) {
	if n, err := w.queue.Recover(ctx); err != nil {
		w.logger.Error("Failed to recover in-flight tasks", zap.Error(err))
	} else if n > 0 {
		w.logger.Warn("Recovered unfinished tasks", zap.Int("count", n))
	}

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) {
	w.logger.Info("Task worker started", zap.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Task worker stopped", zap.Int("worker", id))
			return
		default:
		}

		t, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to dequeue task", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if t == nil {
			continue
		}

		w.Process(context.WithoutCancel(ctx), t)
	}
}

// Process runs the handler for t and re-enqueues it on failure. The
// dequeued copy is acknowledged only after that, so a crash in between
// leaves the task recoverable.
func (w *Worker) Process(ctx context.Context, t *Task) {
	defer w.ack(ctx, t)

	w.mu.RLock()
	h, ok := w.handlers[t.Type]
	w.mu.RUnlock()

	if !ok {
		w.logger.Warn("No handler registered for task", zap.String("task_type", t.Type), zap.String("task_id", t.ID))
		return
	}

	t.Attempts++
	err := w.run(ctx, h, t)
	if err == nil {
		w.logger.Debug("Task done", zap.String("task_type", t.Type), zap.String("task_id", t.ID))
		return
	}

	if t.Attempts >= w.cfg.MaxAttempts {
		w.logger.Error("Task failed permanently",
			zap.String("task_type", t.Type),
			zap.String("task_id", t.ID),
			zap.Int("attempts", t.Attempts),
			zap.Error(err),
		)
		return
	}

	w.logger.Warn("Task failed, retrying",
		zap.String("task_type", t.Type),
		zap.String("task_id", t.ID),
		zap.Int("attempts", t.Attempts),
		zap.Error(err),
	)
	if err := w.queue.Enqueue(ctx, t); err != nil {
		w.logger.Error("Failed to re-enqueue task", zap.String("task_id", t.ID), zap.Error(err))
	}
}

func (w *Worker) ack(ctx context.Context, t *Task) {
	if err := w.queue.Ack(ctx, t); err != nil {
		w.logger.Error("Failed to acknowledge task", zap.String("task_id", t.ID), zap.Error(err))
	}
}

func (w *Worker) run(ctx context.Context, h Handler, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return h(ctx, t)
}

package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`

	// encoded form as read from the queue, used to acknowledge it
	raw string
}

func New(taskType string, payload any) (*Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (t *Task) Decode(dst any) error {
	if err := json.Unmarshal(t.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

// Enqueuer is what request-side code needs to schedule background work.
type Enqueuer interface {
	Enqueue(ctx context.Context, t *Task) error
}

// Queue is the full broker contract used by the worker. A dequeued task is
// only gone for good once it has been acknowledged.
type Queue interface {
	Enqueuer
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	Ack(ctx context.Context, t *Task) error
	Recover(ctx context.Context) (int, error)
}

// Submit builds a task and enqueues it.
func Submit(ctx context.Context, q Enqueuer, taskType string, payload any) (*Task, error) {
	t, err := New(taskType, payload)
	if err != nil {
		return nil, err
	}
	if err := q.Enqueue(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

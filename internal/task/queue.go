package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a reliable list queue. Dequeue moves a task onto a
// processing list where it stays until Ack, so a worker that dies mid-task
// leaves it behind for Recover.
type RedisQueue struct {
	client     *redis.Client
	key        string
	processing string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key, processing: key + ":processing"}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t *Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", t.Type, err)
	}
	return nil
}

// Dequeue blocks for up to timeout and returns nil, nil when nothing arrived.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	raw, err := q.client.BLMove(ctx, q.key, q.processing, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		// undecodable entries would come back on every Recover
		q.client.LRem(ctx, q.processing, 1, raw)
		return nil, fmt.Errorf("decode task: %w", err)
	}
	t.raw = raw
	return &t, nil
}

// Ack drops a dequeued task from the processing list.
func (q *RedisQueue) Ack(ctx context.Context, t *Task) error {
	if t.raw == "" {
		return nil
	}
	if err := q.client.LRem(ctx, q.processing, 1, t.raw).Err(); err != nil {
		return fmt.Errorf("ack task %s: %w", t.ID, err)
	}
	return nil
}

// Recover puts every unacknowledged task back at the head of the queue.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.key, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("recover tasks: %w", err)
		}
		n++
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) InFlight(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.processing).Result()
}

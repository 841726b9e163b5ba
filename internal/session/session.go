package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	KeyCartID   = "cart_id"
	KeyForm     = "form"
	KeyUserID   = "user_id"
	keyMessages = "_messages"
)

// Session binds a Store to one session id.
type Session struct {
	id    string
	store Store
	// called with the new id after Rotate
	onRotate func(id string)
}

func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

func (s *Session) Delete(ctx context.Context, keys ...string) error {
	return s.store.Delete(ctx, s.id, keys...)
}

// Pop returns the value and removes it.
func (s *Session) Pop(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.store.Get(ctx, s.id, key)
	if err != nil || !ok {
		return v, ok, err
	}
	return v, true, s.store.Delete(ctx, s.id, key)
}

// Rotate moves the session data under a fresh id. Call it whenever the
// privilege level of the session changes so a planted id stops working.
func (s *Session) Rotate(ctx context.Context) error {
	id := uuid.New().String()
	if err := s.store.Rename(ctx, s.id, id); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	s.id = id
	if s.onRotate != nil {
		s.onRotate(id)
	}
	return nil
}

func (s *Session) Flush(ctx context.Context) error {
	return s.store.Destroy(ctx, s.id)
}

func (s *Session) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode session %s: %w", key, err)
	}
	return true, nil
}

func (s *Session) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(raw))
}

package session

import "context"

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// AddMessage queues a flash message shown on the next page.
func (s *Session) AddMessage(ctx context.Context, level Level, text string) error {
	var msgs []Message
	if _, err := s.GetJSON(ctx, keyMessages, &msgs); err != nil {
		return err
	}
	msgs = append(msgs, Message{Level: level, Text: text})
	return s.SetJSON(ctx, keyMessages, msgs)
}

func (s *Session) PopMessages(ctx context.Context) ([]Message, error) {
	var msgs []Message
	ok, err := s.GetJSON(ctx, keyMessages, &msgs)
	if err != nil || !ok {
		return nil, err
	}
	return msgs, s.Delete(ctx, keyMessages)
}

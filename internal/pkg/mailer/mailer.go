package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Message is one composed email. Text is derived from HTML when empty.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages over a single transport connection.
type Sender interface {
	Send(ctx context.Context, msgs ...*Message) error
}

type Mailer struct {
	from string
	dial func() (gomail.SendCloser, error)
}

func NewMailer(cfg *Config) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{from: cfg.From, dial: d.Dial}
}

// NewMailerWithDialer lets callers supply their own transport.
func NewMailerWithDialer(from string, dial func() (gomail.SendCloser, error)) *Mailer {
	return &Mailer{from: from, dial: dial}
}

var ErrNoRecipients = errors.New("mailer: message has no recipients")

func (m *Mailer) Send(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	composed := make([]*gomail.Message, 0, len(msgs))
	for _, msg := range msgs {
		gm, err := m.compose(msg)
		if err != nil {
			return err
		}
		composed = append(composed, gm)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := m.dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	if err := gomail.Send(conn, composed...); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *Mailer) compose(msg *Message) (*gomail.Message, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	text := msg.Text
	if text == "" && msg.HTML != "" {
		text = StripTags(msg.HTML)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return gm, nil
}

// Render executes one of the embedded email templates.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

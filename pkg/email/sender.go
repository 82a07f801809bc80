package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"sort"
	"strings"
)

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// New returns the Sender selected by cfg.Backend.
func New(cfg Config) (Sender, error) {
	switch cfg.Backend {
	case BackendPostmark:
		return NewPostmarkSender(cfg)
	case BackendDev:
		return NewDevSender(cfg.DevDir), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Envelope is a message broken into the parts delivery APIs need.
type Envelope struct {
	To      []string
	Subject string
	Body    string
	// Headers holds the X- extension headers, such as the notification ID.
	Headers map[string]string
}

// Parse reads msg, consuming its body.
func Parse(msg *mail.Message) (Envelope, error) {
	if msg == nil {
		return Envelope{}, errors.Join(ErrInvalidMessage, errors.New("nil message"))
	}
	to, err := msg.Header.AddressList("To")
	if err != nil {
		return Envelope{}, errors.Join(ErrInvalidMessage, fmt.Errorf("bad recipients: %w", err))
	}

	var dec mime.WordDecoder
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		return Envelope{}, errors.Join(ErrInvalidMessage, fmt.Errorf("bad subject: %w", err))
	}

	var body []byte
	if msg.Body != nil {
		if body, err = io.ReadAll(msg.Body); err != nil {
			return Envelope{}, errors.Join(ErrInvalidMessage, fmt.Errorf("failed to read body: %w", err))
		}
	}

	env := Envelope{
		Subject: subject,
		Body:    strings.ReplaceAll(string(body), "\r\n", "\n"),
		Headers: make(map[string]string),
	}
	for _, a := range to {
		env.To = append(env.To, a.String())
	}
	for name := range msg.Header {
		if strings.HasPrefix(name, "X-") {
			env.Headers[name] = msg.Header.Get(name)
		}
	}
	return env, nil
}

func headerNames(h mail.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

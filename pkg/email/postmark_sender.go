package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/mrz1836/postmark"
)

// PostmarkAPI is the part of the Postmark client PostmarkSender uses.
type PostmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender sends messages as plain text Postmark emails.
type PostmarkSender struct {
	api PostmarkAPI
	cfg Config
}

// PostmarkOption configures a PostmarkSender.
type PostmarkOption func(*PostmarkSender)

// WithPostmarkAPI replaces the Postmark client.
func WithPostmarkAPI(api PostmarkAPI) PostmarkOption {
	return func(s *PostmarkSender) {
		if api != nil {
			s.api = api
		}
	}
}

// NewPostmarkSender creates a Postmark-backed sender. Both tokens and a
// valid sender address are required.
func NewPostmarkSender(cfg Config, opts ...PostmarkOption) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if _, err := mail.ParseAddress(cfg.Sender); err != nil {
		return nil, fmt.Errorf("%w: Sender must be a valid email address", ErrInvalidConfig)
	}
	if cfg.ReplyTo != "" {
		if _, err := mail.ParseAddress(cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("%w: ReplyTo must be a valid email address", ErrInvalidConfig)
		}
	}

	s := &PostmarkSender{
		api: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send implements Sender. Extension headers are passed through.
func (s *PostmarkSender) Send(ctx context.Context, msg *mail.Message) error {
	env, err := Parse(msg)
	if err != nil {
		return err
	}

	var headers []postmark.Header
	for _, name := range headerNames(msg.Header) {
		if value, ok := env.Headers[name]; ok {
			headers = append(headers, postmark.Header{Name: name, Value: value})
		}
	}

	resp, err := s.api.SendEmail(ctx, postmark.Email{
		From:     s.cfg.Sender,
		ReplyTo:  s.cfg.ReplyTo,
		To:       strings.Join(env.To, ", "),
		Subject:  env.Subject,
		Tag:      s.cfg.Tag,
		TextBody: env.Body,
		Headers:  headers,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

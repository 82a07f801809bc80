package email

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes messages to a directory as .eml files instead of
// sending them.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender creates a sender writing to dir, created on first use.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

// Send implements Sender. Files are named after the send time and the
// notification ID, or the subject if the message has none.
func (d *DevSender) Send(ctx context.Context, msg *mail.Message) error {
	env, err := Parse(msg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	var b strings.Builder
	for _, name := range headerNames(msg.Header) {
		for _, value := range msg.Header[name] {
			fmt.Fprintf(&b, "%s: %s\r\n", name, value)
		}
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(env.Body, "\n", "\r\n"))

	identifier := env.Headers["X-Kcidb-Notification-Id"]
	if identifier == "" {
		identifier = env.Subject
	}
	name := fmt.Sprintf("%s_%s.eml", d.now().UTC().Format("2006_01_02_150405.000000"), sanitizeFilename(identifier))

	if err := os.WriteFile(filepath.Join(d.dir, name), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write message: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename keeps filesystem-safe characters of s, up to 100 of them.
func sanitizeFilename(s string) string {
	s = strings.NewReplacer(" ", "_", ":", "_").Replace(s)
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}

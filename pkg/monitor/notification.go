package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/mail"
	"strings"
)

// Message is what a subscription wants sent about one object.
type Message struct {
	// To lists RFC 5322 addresses, such as "LTP <ltp@lists.linux.it>".
	To []string
	// Summary starts the subject; the object summary is appended to it.
	Summary string
	// Description is the message body. Empty means the subject is repeated.
	Description string
	// ID tells apart several messages one subscription sends about the same
	// object. Usually empty.
	ID string
}

// Notification is a Message bound to the object and subscription that
// produced it.
type Notification struct {
	ObjectType    string
	ObjectID      string
	ObjectSummary string
	Subscription  string
	Message       Message
}

// ID returns the stable notification ID
// "<subscription>:<hex SHA-256 of object type, object ID and message ID>".
func (n Notification) ID() string {
	h := sha256.New()
	for _, part := range []string{n.ObjectType, n.ObjectID, n.Message.ID} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return n.Subscription + ":" + hex.EncodeToString(h.Sum(nil))
}

// Subject returns the message subject.
func (n Notification) Subject() string {
	return n.Message.Summary + n.ObjectSummary
}

// Body returns the plain text message body.
func (n Notification) Body() string {
	body := n.Message.Description
	if body == "" {
		body = n.Subject()
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body
}

// Recipients parses the recipient list.
func (n Notification) Recipients() ([]*mail.Address, error) {
	if len(n.Message.To) == 0 {
		return nil, ErrNoRecipients
	}
	return mail.ParseAddressList(strings.Join(n.Message.To, ", "))
}

// Render returns the notification as an RFC 5322 message with CRLF line
// endings, UTF-8 text body and a Q-encoded subject where needed.
func (n Notification) Render() (string, error) {
	to, err := n.Recipients()
	if err != nil {
		return "", err
	}
	addrs := make([]string, len(to))
	for i, a := range to {
		addrs[i] = a.String()
	}

	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	header("To", strings.Join(addrs, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", n.Subject()))
	header("X-KCIDB-Notification-ID", n.ID())
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(n.Body(), "\r\n", "\n"), "\n", "\r\n"))
	return b.String(), nil
}

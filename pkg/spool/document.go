package spool

import (
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// NeverPicked is the PickedUntil of a fresh notification: always in the past.
	NeverPicked = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Forever is the PickedUntil of an acknowledged notification: never in the past.
	Forever = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// maxIDLength is the longest notification ID in bytes.
const maxIDLength = 1500

// Document is the stored state of one notification.
type Document struct {
	ID          string
	CreatedAt   time.Time
	PickedAt    *time.Time
	PickedUntil time.Time
	AckedAt     *time.Time
	// Message is the rendered RFC 5322 message.
	Message string
}

// Patch lists the fields an update sets; nil fields are left alone.
type Patch struct {
	PickedAt    *time.Time
	PickedUntil *time.Time
	AckedAt     *time.Time
}

func (p Patch) apply(doc *Document) {
	if p.PickedAt != nil {
		t := *p.PickedAt
		doc.PickedAt = &t
	}
	if p.PickedUntil != nil {
		doc.PickedUntil = *p.PickedUntil
	}
	if p.AckedAt != nil {
		t := *p.AckedAt
		doc.AckedAt = &t
	}
}

// IsValidID reports whether id can name a notification: non-empty UTF-8 of
// at most 1500 bytes, without '/', other than "." and "..", and not of the
// reserved form "__...__".
func IsValidID(id string) bool {
	switch {
	case id == "", id == ".", id == "..":
		return false
	case len(id) > maxIDLength:
		return false
	case !utf8.ValidString(id):
		return false
	case strings.ContainsRune(id, '/'):
		return false
	case len(id) >= 4 && strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return false
	}
	return true
}

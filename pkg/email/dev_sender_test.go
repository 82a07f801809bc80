package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/email"
)

func TestDevSender_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	s := email.NewDevSender(dir)
	require.NoError(t, s.Send(context.Background(), message(t, rendered)))

	files, err := filepath.Glob(filepath.Join(dir, "*.eml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "_ltp_maintainers_abc.eml"))

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)

	saved := message(t, string(content))
	env, err := email.Parse(saved)
	require.NoError(t, err)
	assert.Equal(t, "LTP failed for в", env.Subject)
	assert.Equal(t, "line one\nline two\n", env.Body)
	assert.Equal(t, "ltp_maintainers:abc", env.Headers["X-Kcidb-Notification-Id"])
}

func TestDevSender_SubjectFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := email.NewDevSender(dir)
	require.NoError(t, s.Send(context.Background(), message(t, "To: a@example.com\r\nSubject: Hello World!\r\n\r\nhi\r\n")))

	files, err := filepath.Glob(filepath.Join(dir, "*_hello_world.eml"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDevSender_InvalidMessage(t *testing.T) {
	t.Parallel()

	s := email.NewDevSender(t.TempDir())
	err := s.Send(context.Background(), message(t, "Subject: x\r\n\r\n"))
	assert.ErrorIs(t, err, email.ErrInvalidMessage)
}

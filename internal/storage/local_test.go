package storage

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveOpenDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "documents/2026/03/01/blob.pdf"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("hello pdf"), 9, "application/pdf"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello pdf", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocal_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../escape", "documents/../../escape", "a//b", `a\b`} {
		t.Run(key, func(t *testing.T) {
			err := store.Save(ctx, key, bytes.NewReader(nil), 0, "")
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, err = store.Open(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestLocal_SaveHonoursCancellation(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Save(ctx, "documents/cancelled.txt", strings.NewReader("data"), 4, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Open(context.Background(), "documents/cancelled.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)

	key := NewKey(now, ".PDF")
	assert.Regexp(t, regexp.MustCompile(`^documents/2026/03/07/[0-9a-f-]{36}\.pdf$`), key)
	assert.NoError(t, validateKey(key))

	assert.NotEqual(t, key, NewKey(now, ".pdf"))
	assert.Regexp(t, `^documents/2026/03/07/[0-9a-f-]{36}$`, NewKey(now, ""))
}

package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_UploadGetDelete(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "/api/attachments/")
	require.NoError(t, err)
	ctx := context.Background()

	res, err := p.Upload(ctx, "bug-reports/2026/03/a.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "/api/attachments/bug-reports/2026/03/a.txt", res.URL)
	assert.Equal(t, int64(5), res.Size)

	rc, err := p.Get(ctx, res.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, p.Delete(ctx, res.Key))
	_, err = p.Get(ctx, res.Key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestCleanKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "/", "..", "../../etc/passwd"} {
		_, err := cleanKey(key)
		assert.Error(t, err, key)
	}

	got, err := cleanKey("/a/./b/../c.txt")
	require.NoError(t, err)
	assert.Equal(t, "a/c.txt", got)
}

func TestBuildObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	key := BuildObjectKey("bug-reports", "Screen Shot.PNG", now)
	assert.True(t, strings.HasPrefix(key, "bug-reports/2026/03/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	err   error
	calls []string
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	f.calls = append(f.calls, key)
	return f.err
}

type memStore struct {
	Storage
	objects map[string][]byte
}

func (m memStore) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func TestReadLimit(t *testing.T) {
	ctx := context.Background()
	store := memStore{objects: map[string][]byte{
		"templates/small.docx": bytes.Repeat([]byte("a"), 10),
		"templates/big.docx":   bytes.Repeat([]byte("a"), 11),
	}}

	buf, err := ReadLimit(ctx, store, "templates/small.docx", 10)
	require.NoError(t, err)
	assert.Len(t, buf, 10)

	buf, err = ReadLimit(ctx, store, "templates/big.docx", 10)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "templates/big.docx exceeds 10 bytes")
	assert.Nil(t, buf)

	_, err = ReadLimit(ctx, store, "templates/missing.docx", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "templates/hop_dong_tin_dung.docx", TemplateKey("hop_dong_tin_dung"))
	assert.Equal(t, "results/a_1_20240101_000000.docx", ResultKey("a_1_20240101_000000.docx"))
}

func TestDeleteFirst(t *testing.T) {
	ctx := context.Background()

	t.Run("first backend wins", func(t *testing.T) {
		remote, local := &fakeDeleter{}, &fakeDeleter{}
		ok, err := DeleteFirst(ctx, "results/x.docx", Backend{"remote", remote}, Backend{"local", local})
		assert.True(t, ok)
		assert.NoError(t, err)
		assert.Equal(t, []string{"results/x.docx"}, remote.calls)
		assert.Empty(t, local.calls)
	})

	t.Run("falls back on failure", func(t *testing.T) {
		remote, local := &fakeDeleter{err: errors.New("connection refused")}, &fakeDeleter{}
		ok, err := DeleteFirst(ctx, "results/x.docx", Backend{"remote", remote}, Backend{"local", local})
		assert.True(t, ok)
		assert.NoError(t, err)
		assert.Len(t, local.calls, 1)
	})

	t.Run("all backends fail", func(t *testing.T) {
		remote := &fakeDeleter{err: errors.New("connection refused")}
		local := &fakeDeleter{err: ErrNotFound}
		ok, err := DeleteFirst(ctx, "results/x.docx", Backend{"remote", remote}, Backend{"local", local})
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "remote: connection refused")
	})

	t.Run("nil backends are skipped", func(t *testing.T) {
		ok, err := DeleteFirst(ctx, "k", Backend{Name: "none"})
		assert.False(t, ok)
		assert.NoError(t, err)
	})
}

func TestLocalDir_Delete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	name := "bang_tinh_lai_7_20240315_103000.xlsx"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))

	l := NewLocalDir(dir)
	require.NoError(t, l.Delete(ctx, ResultKey(name)))
	_, err := os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, l.Delete(ctx, name), ErrNotFound)
	assert.Error(t, NewLocalDir("").Delete(ctx, name))

	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	t.Cleanup(func() { os.Remove(outside) })
	assert.ErrorIs(t, l.Delete(ctx, "../keep.txt"), ErrNotFound)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

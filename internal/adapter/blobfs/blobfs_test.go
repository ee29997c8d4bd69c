package blobfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "snapshots")
	s, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestPutGet(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()
	payload := []byte(`[{"id":"assessment_1","risk_score":80}]`)

	require.NoError(t, s.Put(ctx, "assessments", payload))

	got, found, err := s.Get(ctx, "assessments")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, got)

	raw, err := os.ReadFile(filepath.Join(dir, "assessments.json.zst"))
	require.NoError(t, err)
	assert.NotEqual(t, payload, raw)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "assessments", []byte(`[]`)))
		got, _, err := s.Get(ctx, "assessments")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("no temp files left", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)

	got, found, err := s.Get(context.Background(), "location_history")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestGetCorruptFile(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assessments.json.zst"), []byte("not zstd"), 0o600))

	_, _, err := s.Get(context.Background(), "assessments")
	assert.Error(t, err)
}

func TestInvalidKey(t *testing.T) {
	s, _ := newTestStore(t)

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, s.Put(context.Background(), key, []byte("x")), key)
	}
}

func TestCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "assessments", []byte("[]")), context.Canceled)
	_, _, err := s.Get(ctx, "assessments")
	assert.ErrorIs(t, err, context.Canceled)
}

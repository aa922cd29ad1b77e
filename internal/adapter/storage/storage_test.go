package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rates-service/internal/config"
	"rates-service/internal/domain/ports"
)

func exerciseStorage(t *testing.T, s ports.Storage) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "convertly_crypto_rates")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "convertly_crypto_rates", `{"rates":[1]}`))
	require.NoError(t, s.Set(ctx, "convertly_currency_rates", `{"rates":[2]}`))

	value, found, err := s.Get(ctx, "convertly_crypto_rates")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"rates":[1]}`, value)

	require.NoError(t, s.Set(ctx, "convertly_crypto_rates", `{"rates":[3]}`))
	value, _, err = s.Get(ctx, "convertly_crypto_rates")
	require.NoError(t, err)
	assert.Equal(t, `{"rates":[3]}`, value)

	value, _, err = s.Get(ctx, "convertly_currency_rates")
	require.NoError(t, err)
	assert.Equal(t, `{"rates":[2]}`, value, "feed keys are disjoint")
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	exerciseStorage(t, s)

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files are left behind")

	// A second instance over the same directory sees the persisted value.
	reopened, err := NewFile(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	value, found, err := reopened.Get(context.Background(), "convertly_crypto_rates")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"rates":[3]}`, value)
}

func TestFile_RejectsPathKeys(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Set(context.Background(), "../escape", "x"))
	_, _, err = s.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestBadger_InMemory(t *testing.T) {
	s, err := NewBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	exerciseStorage(t, s)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 15)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	s.client.Del(ctx, s.prefix+"convertly_crypto_rates", s.prefix+"convertly_currency_rates")
	exerciseStorage(t, s)
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	var s Disabled

	require.NoError(t, s.Set(ctx, "k", "v"))
	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "Memory", cfg: config.StorageConfig{Backend: "memory"}},
		{name: "None", cfg: config.StorageConfig{Backend: "none"}},
		{name: "File", cfg: config.StorageConfig{Backend: "file", Dir: t.TempDir()}},
		{name: "Badger", cfg: config.StorageConfig{Backend: "badger", BadgerPath: t.TempDir()}},
		{name: "Unknown", cfg: config.StorageConfig{Backend: "etcd"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, closeFn, err := New(tc.cfg)
			require.NotNil(t, closeFn)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
			assert.NoError(t, closeFn())
		})
	}
}

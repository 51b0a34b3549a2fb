package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMissingFile(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "nested", DataFileName))
	require.NoError(t, err)

	v, ok, err := s.Get(context.Background(), "packedHistory")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestSetOverwrites(t *testing.T) {
	p := filepath.Join(t.TempDir(), DataFileName)
	s, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "packedHistory", `[{"id":1}]`))
	require.NoError(t, s.Set(ctx, "other", "x"))
	require.NoError(t, s.Set(ctx, "packedHistory", `[]`))

	v, ok, err := s.Get(ctx, "packedHistory")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", v)

	// a second handle sees the same file
	s2, err := New(p)
	require.NoError(t, err)
	v, ok, err = s2.Get(ctx, "other")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", v)

	_, err = os.Stat(p + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestCorruptFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(p, []byte("{oops"), 0o644))
	s, err := New(p)
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), "packedHistory")
	require.ErrorContains(t, err, "json unmarshal")
	require.Error(t, s.Set(context.Background(), "packedHistory", "[]"))
}

func TestCanceledContext(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), DataFileName))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	s, err := New("")
	require.NoError(t, err)
	require.Equal(t, DataFileName, filepath.Base(s.Path()))
	require.NoError(t, s.Close())
}

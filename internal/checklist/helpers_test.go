package checklist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/packlist/internal/store"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory store.Store with failure and delay injection.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	block   chan struct{} // Get waits on it when non-nil
	sets    int
	history []string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.data[key] = value
	s.history = append(s.history, value)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

var _ store.Store = (*memStore)(nil)

func wait(t *testing.T, task *Task) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSeeded returns an initialized manager over the default five-item seed.
func newSeeded(t *testing.T, s store.Store, opts ...Option) *Manager {
	t.Helper()
	logger, _ := bufferLogger()
	opts = append([]Option{WithSeed(DefaultSeed()), WithLogger(logger)}, opts...)
	m := New(s, opts...)
	wait(t, m.Initialize(context.Background()))
	return m
}

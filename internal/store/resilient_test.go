package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("backend unavailable")

// flakyStore fails the selected operations.
type flakyStore struct {
	*Memory
	failSave  bool
	failLoad  bool
	failClear bool
	saves     int
}

func (f *flakyStore) Save(ctx context.Context, id string, answers []string) error {
	f.saves++
	if f.failSave {
		return errUnavailable
	}
	return f.Memory.Save(ctx, id, answers)
}

func (f *flakyStore) Load(ctx context.Context, id string) ([]string, error) {
	if f.failLoad {
		return nil, errUnavailable
	}
	return f.Memory.Load(ctx, id)
}

func (f *flakyStore) Clear(ctx context.Context, id string) error {
	if f.failClear {
		return errUnavailable
	}
	return f.Memory.Clear(ctx, id)
}

func mustOldTime(t *testing.T) time.Time {
	t.Helper()
	return time.Now().Add(-time.Hour)
}

func TestResilient_DegradesOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	durable := &flakyStore{Memory: NewMemory(), failSave: true}
	r := NewResilient(durable, zerolog.New(&logs))

	require.NoError(t, r.Save(ctx, "s", []string{"a"}))
	assert.True(t, r.Degraded())

	require.NoError(t, r.Save(ctx, "s", []string{"a", "b"}))
	assert.Equal(t, 1, durable.saves, "degraded store stops calling the durable backend")

	got, err := r.Load(ctx, "s")
	require.NoError(t, err, "read-after-write holds in memory")
	assert.Equal(t, []string{"a", "b"}, got)

	assert.Equal(t, 1, strings.Count(logs.String(), "continuing in memory only"), "degradation logged once")
	assert.Contains(t, logs.String(), `"component":"store"`)
}

func TestResilient_DegradesOnLoadFailure(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{Memory: NewMemory(), failLoad: true}
	r := NewResilient(durable, zerolog.Nop())

	_, err := r.Load(ctx, "s")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, r.Degraded())
}

func TestResilient_NotFoundDoesNotDegrade(t *testing.T) {
	r := NewResilient(NewMemory(), zerolog.Nop())
	_, err := r.Load(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, r.Degraded())
}

func TestResilient_ClearFailureKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{Memory: NewMemory()}
	r := NewResilient(durable, zerolog.Nop())
	require.NoError(t, r.Save(ctx, "s", []string{"a"}))

	durable.failClear = true
	require.ErrorIs(t, r.Clear(ctx, "s"), errUnavailable)
	assert.False(t, r.Degraded())

	got, err := r.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	durable.failClear = false
	require.NoError(t, r.Clear(ctx, "s"))
	_, err = r.Load(ctx, "s")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	assert.False(t, Degraded(s), "a memory backend was asked for")

	s, err = Open(ctx, Options{Backend: BackendFile, Path: t.TempDir() + "/answers.json"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Resilient{}, s)
	assert.False(t, Degraded(s))

	var logs bytes.Buffer
	s, err = Open(ctx, Options{Backend: BackendFirebase}, zerolog.New(&logs))
	require.NoError(t, err, "unusable durable backend degrades instead of failing")
	assert.True(t, Degraded(s))
	assert.Contains(t, logs.String(), "answer store unavailable")

	require.NoError(t, s.Save(ctx, "s", []string{"a"}))
	got, err := s.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	require.NoError(t, s.Clear(ctx, "s"))
	require.NoError(t, s.(*Resilient).Close())

	_, err = Open(ctx, Options{Backend: "etcd"}, zerolog.Nop())
	require.Error(t, err)
}

func TestResilient_Sessions(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{Memory: NewMemory()}
	r := NewResilient(durable, zerolog.Nop())
	require.NoError(t, r.Save(ctx, "kept", []string{"a"}))

	sessions, err := List(ctx, r)
	require.NoError(t, err)
	assert.Contains(t, sessions, "kept")

	durable.failSave = true
	require.NoError(t, r.Save(ctx, "late", []string{"b"}))
	require.True(t, r.Degraded())

	sessions, err = List(ctx, r)
	require.NoError(t, err)
	assert.Contains(t, sessions, "late", "degraded store lists what this process holds")
	assert.NotContains(t, sessions, "kept")

	fb := NewResilient(newFirebase(newFakeRealtimeDB(), ""), zerolog.Nop())
	_, err = List(ctx, fb)
	require.ErrorIs(t, err, ErrListUnsupported)
}

func TestMemory_Sessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	before := time.Now().UTC()
	require.NoError(t, m.Save(ctx, "a", []string{"1"}))
	require.NoError(t, m.Save(ctx, "b", []string{"2"}))
	require.NoError(t, m.Clear(ctx, "b"))

	sessions, err := List(ctx, m)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions["a"].Before(before))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.Sessions(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}

package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/cli"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/report"
	"github.com/rshade/sequestra/internal/session"
	"github.com/rshade/sequestra/internal/store"
)

var errDiskGone = errors.New("disk gone")

// downStore fails every durable write and clear.
type downStore struct {
	*store.Memory
	failClear bool
}

func (d *downStore) Save(context.Context, string, []string) error {
	return errDiskGone
}

func (d *downStore) Clear(ctx context.Context, id string) error {
	if d.failClear {
		return errDiskGone
	}
	return d.Memory.Clear(ctx, id)
}

func newPromptSession(t *testing.T, c *flow.Catalog, st store.Store) *session.Session {
	t.Helper()
	density := 100.0
	table, err := carbon.NewBiomassTable(map[string]*float64{"Testland": &density})
	require.NoError(t, err)
	f, err := flow.New(c)
	require.NoError(t, err)
	return session.Open(context.Background(), "prompt-test", f, st, carbon.NewEstimator(table), zerolog.Nop())
}

func TestRun_PlainDMRV(t *testing.T) {
	isolate(t)

	out, err := execute(t, lines("100", "10", "0.5"), "run", "--catalog", "dmrv", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "Question 1 of 3")
	assert.Contains(t, out, "Question 3 of 3")
	assert.Contains(t, out, "Estimated carbon stock: 1,077.08 t CO2")
}

func TestRun_ResumesSavedAnswers(t *testing.T) {
	isolate(t)

	_, err := execute(t, lines("100", "10"), "run", "--catalog", "dmrv", "--plain")
	require.NoError(t, err)

	out, err := execute(t, lines("", "", "0.5"), "run", "--catalog", "dmrv", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Current answer: 100")
	assert.Contains(t, out, "Current answer: 10")
	assert.Contains(t, out, "1,077.08 t CO2")
}

func TestRun_SessionLogsCarryTraceID(t *testing.T) {
	home := isolate(t)
	t.Setenv("SEQUESTRA_LOG_LEVEL", "info")
	t.Setenv("SEQUESTRA_TRACE_ID", "trace-run-1")

	_, err := execute(t, lines("100", "10", "0.5"), "run", "--catalog", "dmrv", "--plain")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "test.log"))
	require.NoError(t, err)
	var found bool
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "estimate calculated") {
			found = true
			assert.Contains(t, line, "trace-run-1")
			assert.Contains(t, line, "session")
		}
	}
	assert.True(t, found, "estimate logged:\n%s", data)
}

func TestRun_UnknownCatalog(t *testing.T) {
	isolate(t)
	_, err := execute(t, lines(), "run", "--catalog", "nope", "--plain")
	require.ErrorIs(t, err, flow.ErrUnknownCatalog)
}

func TestRunLinePrompt(t *testing.T) {
	ctx := context.Background()
	opts := report.Options{Precision: 2}

	t.Run("invalid answers are re-asked", func(t *testing.T) {
		sess := newPromptSession(t, flow.DMRVCatalog(), store.NewMemory())
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx, lines("lots", "100", "10", "0.5"), &out, sess, opts)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "✗ enter a number")
		assert.Contains(t, out.String(), "1,077.08 t CO2")
	})

	t.Run("back keeps the stored answer", func(t *testing.T) {
		sess := newPromptSession(t, flow.DMRVCatalog(), store.NewMemory())
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx, lines("100", ":back", "", "10", "0.5"), &out, sess, opts)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Current answer: 100")
		assert.Contains(t, out.String(), "1,077.08 t CO2")
	})

	t.Run("reset starts over", func(t *testing.T) {
		sess := newPromptSession(t, flow.DMRVCatalog(), store.NewMemory())
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx, lines("50", "10", ":reset", ":quit"), &out, sess, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, sess.Current().ID)
		assert.Empty(t, sess.CurrentAnswer())
	})

	t.Run("EOF stops with answers kept", func(t *testing.T) {
		st := store.NewMemory()
		sess := newPromptSession(t, flow.DMRVCatalog(), st)
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx, lines("100"), &out, sess, opts)
		require.NoError(t, err)
		assert.Nil(t, sess.Result())

		saved, err := st.Load(ctx, "prompt-test")
		require.NoError(t, err)
		assert.Equal(t, []string{"100", "", ""}, saved)
	})

	t.Run("defaults are kept with empty lines", func(t *testing.T) {
		sess := newPromptSession(t, flow.BaselineCatalog([]string{"Testland"}), store.NewMemory())
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx,
			lines("1", "100", "10", "0.5", "0.1", "2", "", "", ""), &out, sess, opts)
		require.NoError(t, err)
		require.NotNil(t, sess.Result())
		assert.InDelta(t, 1081.9086667, sess.Result().TonsCO2, 1e-6)
		assert.Contains(t, out.String(), "1. Yes")
	})

	t.Run("memory-only note once the store fails", func(t *testing.T) {
		st := store.NewResilient(&downStore{Memory: store.NewMemory()}, zerolog.Nop())
		sess := newPromptSession(t, flow.DMRVCatalog(), st)
		var out bytes.Buffer

		err := cli.RunLinePrompt(ctx, lines("100", "10", "0.5"), &out, sess, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(out.String(), session.MemoryOnlyNotice))
		assert.Less(t, strings.Index(out.String(), "Question 1 of 3"), strings.Index(out.String(), session.MemoryOnlyNotice))
		assert.Contains(t, out.String(), "1,077.08 t CO2")
	})

	t.Run("no note while the store works", func(t *testing.T) {
		st := store.NewResilient(store.NewMemory(), zerolog.Nop())
		sess := newPromptSession(t, flow.DMRVCatalog(), st)
		var out bytes.Buffer

		require.NoError(t, cli.RunLinePrompt(ctx, lines("100", ":quit"), &out, sess, opts))
		assert.NotContains(t, out.String(), session.MemoryOnlyNotice)
	})

	t.Run("failed reset names the store", func(t *testing.T) {
		st := &downStore{Memory: store.NewMemory(), failClear: true}
		sess := newPromptSession(t, flow.DMRVCatalog(), st)
		var out bytes.Buffer

		require.NoError(t, cli.RunLinePrompt(ctx, lines(":reset", ":quit"), &out, sess, opts))
		assert.Contains(t, out.String(), "Could not reset, the answer store is unavailable.")
		assert.Contains(t, out.String(), "disk gone")
		assert.NotContains(t, out.String(), session.MemoryOnlyNotice)
	})

	t.Run("cancelled context", func(t *testing.T) {
		sess := newPromptSession(t, flow.DMRVCatalog(), store.NewMemory())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := cli.RunLinePrompt(cctx, lines("100"), &bytes.Buffer{}, sess, opts)
		require.ErrorIs(t, err, context.Canceled)
	})
}

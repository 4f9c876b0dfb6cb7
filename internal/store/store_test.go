package store_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/store"
	"github.com/tatianab/integrity-trail/internal/testhelpers"
)

type factory struct {
	name string
	open func(t *testing.T) store.Store
}

func factories() []factory {
	return []factory{
		{"memory", func(t *testing.T) store.Store {
			return store.NewMemoryStore()
		}},
		{"file", func(t *testing.T) store.Store {
			return newFileStore(t, t.TempDir(), "current")
		}},
		{"sqlite", func(t *testing.T) store.Store {
			s, err := store.NewSQLiteStore(context.Background(), ":memory:", "current", testhelpers.NewLogger(io.Discard))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func newFileStore(t *testing.T, dir, slot string) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(dir, slot)
	require.NoError(t, err)
	return s
}

func playedState() *models.SessionState {
	state := models.NewSessionState()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state.Decisions.Append(models.Decision{ScenarioID: 1, ChoiceID: 3, Timestamp: at,
		Stats: models.Stats{Integrity: 85, Money: 75, Power: 40, Reputation: 60}})
	state.Decisions.Append(models.Decision{ScenarioID: 2, ChoiceID: 1, Timestamp: at.Add(time.Minute),
		Stats: models.Stats{Integrity: 95, Money: 65, Power: 35, Reputation: 70}})
	state.ConsequenceApplied["c1"] = true
	text := "X"
	state.ScenarioModifications[3] = []models.ScenarioModification{{ConsequenceID: "c1", ScenarioID: 3, ModifiedText: &text}}
	state.PendingNews = append(state.PendingNews, models.NewsEvent{ConsequenceID: "c1", Headline: "Tender under review"})
	return state
}

func encode(t *testing.T, state *models.SessionState) string {
	t.Helper()
	data, err := models.EncodeState(state)
	require.NoError(t, err)
	return string(data)
}

func TestStoreContract(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t)

			_, err := s.Load(ctx)
			require.ErrorIs(t, err, store.ErrNotFound)

			state := playedState()
			require.NoError(t, s.Save(ctx, state))
			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, encode(t, state), encode(t, loaded))

			state.Decisions.Append(models.Decision{ScenarioID: 3, ChoiceID: 2})
			require.NoError(t, s.Save(ctx, state))
			loaded, err = s.Load(ctx)
			require.NoError(t, err)
			require.Len(t, loaded.Decisions, 3)

			require.NoError(t, s.Clear(ctx))
			_, err = s.Load(ctx)
			require.ErrorIs(t, err, store.ErrNotFound)
			require.NoError(t, s.Clear(ctx), "clearing an empty store")
		})
	}
}

func TestMemoryStoreRejectsCorruptBlob(t *testing.T) {
	s := store.NewMemoryStore()
	s.SetRaw([]byte("decisions: [unterminated"))
	_, err := s.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrNotFound)

	s.SetRaw([]byte("schema_version: 9\n"))
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, models.ErrUnsupportedSchema)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "current"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current", "state.yaml"), []byte("{{{"), 0644))

	_, err := newFileStore(t, dir, "current").Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrNotFound)
}

func TestFileStoreRejectsSlotOutsideDir(t *testing.T) {
	dir := t.TempDir()
	for _, slot := range []string{"", ".", "..", "../elsewhere", "a/b", `a\b`, "/tmp"} {
		_, err := store.NewFileStore(dir, slot)
		require.ErrorIs(t, err, store.ErrInvalidSlot, "slot %q", slot)
	}
	require.NoError(t, store.ValidateSlot("second-run"))
}

func TestFileStoreClearLeavesOtherFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newFileStore(t, dir, "current")
	require.NoError(t, s.Save(ctx, playedState()))
	require.NoError(t, newFileStore(t, dir, "other").Save(ctx, playedState()))
	notes := filepath.Join(dir, "current", "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep"), 0644))

	require.NoError(t, s.Clear(ctx))
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.FileExists(t, notes)
	require.FileExists(t, filepath.Join(dir, "other", "state.yaml"))

	require.NoError(t, os.Remove(notes))
	require.NoError(t, s.Clear(ctx))
	require.NoDirExists(t, filepath.Join(dir, "current"))
	require.DirExists(t, dir)
}

func TestListSlots(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	slots, err := store.ListSlots(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Empty(t, slots)

	require.NoError(t, newFileStore(t, dir, "beta").Save(ctx, models.NewSessionState()))
	require.NoError(t, newFileStore(t, dir, "alpha").Save(ctx, models.NewSessionState()))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))

	slots, err = store.ListSlots(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, slots)
}

func TestSQLiteStoreMirrorsDecisions(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(ctx, ":memory:", "current", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	state := playedState()
	require.NoError(t, s.Save(ctx, state))

	decisions, err := s.Decisions(ctx)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	require.Equal(t, 1, decisions[0].Seq)
	require.Equal(t, 3, decisions[0].ChoiceID)
	require.True(t, state.Decisions[1].Timestamp.Equal(decisions[1].Timestamp))
	require.Equal(t, state.Decisions[1].Stats, decisions[1].Stats)

	require.NoError(t, s.Clear(ctx))
	decisions, err = s.Decisions(ctx)
	require.NoError(t, err)
	require.Empty(t, decisions)
}

package store

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

const stateFile = "state.yaml"

var ErrInvalidSlot = errors.NewSentinel("invalid save slot")

// ValidateSlot reports whether slot can name a directory directly under the save dir.
func ValidateSlot(slot string) error {
	if slot == "" || slot == "." || strings.ContainsAny(slot, `/\`) || !filepath.IsLocal(slot) {
		return errors.Wrap(ErrInvalidSlot, "check slot", slog.String("slot", slot))
	}
	return nil
}

// FileStore keeps a session as YAML in <dir>/<slot>/state.yaml.
type FileStore struct {
	dir  string
	slot string
}

func NewFileStore(dir, slot string) (*FileStore, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, slot: slot}, nil
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, s.slot, stateFile)
}

// Save writes the state to a temporary file and renames it over the old one so that a crash never leaves
// a half-written save behind.
func (s *FileStore) Save(_ context.Context, state *models.SessionState) error {
	data, err := models.EncodeState(state)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.dir, s.slot)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create save dir", slog.String("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, stateFile+".*")
	if err != nil {
		return errors.Wrap(err, "create temp save")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp save")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp save")
	}
	if err = os.Rename(tmp.Name(), s.path()); err != nil {
		return errors.Wrap(err, "replace save", slog.String("path", s.path()))
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (*models.SessionState, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read save", slog.String("path", s.path()))
	}
	state, err := models.DecodeState(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode save", slog.String("path", s.path()))
	}
	return state, nil
}

// Clear removes the state file and then the slot directory if nothing else is left in it.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "remove save", slog.String("slot", s.slot))
	}
	_ = os.Remove(filepath.Join(s.dir, s.slot))
	return nil
}

// ListSlots returns the names of the save slots under dir that hold a session.
func ListSlots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read save dir", slog.String("dir", dir))
	}

	slots := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), stateFile)); err == nil {
			slots = append(slots, entry.Name())
		}
	}
	sort.Strings(slots)
	return slots, nil
}

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when HistoryEntry format changes
const historySchemaVersion uint16 = 1

// HistoryEntry is one run's outcome in the compact archive. Unlike the
// JSON ledger this is informational only: nothing in batch sizing reads
// it back.
type HistoryEntry struct {
	Schema       uint16
	StartedAt    time.Time
	BatchSize    int
	Files        int
	Errors       int
	Corruptions  int
	Replacements int
	Success      bool
}

// History stores per-run entries under the user cache directory, keyed
// by a digest of the project root so unrelated projects never collide.
type History struct {
	path string
}

// OpenHistory resolves the archive location for a project root.
func OpenHistory(app, projectRoot string) (*History, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "history")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte(abs))
	return &History{
		path: filepath.Join(dir, hex.EncodeToString(key[:8])+".mp"),
	}, nil
}

// Append reads the existing entries, appends one, and rewrites the
// archive atomically.
func (h *History) Append(entry HistoryEntry) error {
	entry.Schema = historySchemaVersion

	entries, err := h.Read()
	if err != nil {
		// повреждённый архив перезаписываем с нуля
		entries = nil
	}
	entries = append(entries, entry)

	data, err := msgpack.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.path), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, h.path)
}

// Read loads all archived entries, skipping entries from an unknown
// schema version.
func (h *History) Read() ([]HistoryEntry, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []HistoryEntry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history: unmarshal: %w", err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Schema == historySchemaVersion {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// Package history remembers where generated projects were exported.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firecrawl/appgen/pkg/utils"
)

// MaxEntries bounds the log; the oldest entries fall off.
const MaxEntries = 50

// ErrCorrupt reports a history file that is not a JSON list of entries.
var ErrCorrupt = errors.New("corrupt history file")

type Entry struct {
	Template  string    `json:"template"`
	Prompt    string    `json:"prompt"`
	Path      string    `json:"path"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a JSON file of entries, newest first.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the entries. A missing file is an empty history; a corrupt
// one is reported.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrCorrupt, s.path, err)
	}
	return entries, nil
}

func (s *Store) Save(entries []Entry) error {
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add prepends e, stamping it when CreatedAt is zero. A corrupt file is
// renamed to the first free BackupPath and a new history is started; any
// other read failure is returned and the file is left alone.
func (s *Store) Add(e Entry) error {
	entries, err := s.Load()
	if errors.Is(err, ErrCorrupt) {
		backup, berr := s.BackupPath()
		if berr != nil {
			return berr
		}
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return fmt.Errorf("move aside %s: %w", s.path, rerr)
		}
		entries = nil
	} else if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return s.Save(entries)
}

// BackupPath returns where a corrupt file would be moved: path.bak, or
// path.N.bak when earlier backups exist.
func (s *Store) BackupPath() (string, error) {
	for n := 0; n < 100; n++ {
		candidate := s.path + ".bak"
		if n > 0 {
			candidate = fmt.Sprintf("%s.%d.bak", s.path, n)
		}
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("too many backups of %s", s.path)
}

// DeleteOld drops entries older than the given number of days and returns
// how many were removed.
func (s *Store) DeleteOld(days int) (int, error) {
	entries, err := s.Load()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []Entry
	for _, e := range entries {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return len(entries) - len(kept), s.Save(kept)
}

func (s *Store) DeleteOne(index int) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("no history entry %d", index)
	}
	entries = append(entries[:index], entries[index+1:]...)
	return s.Save(entries)
}

// Package storage implements the flat-file persistence of the bot: one
// ordered JSON collection of meal entries and one JSON mapping of user
// profiles. Every mutation rewrites the whole file. Writers in the same
// process are serialized by a per-store mutex; concurrent processes race
// with last-writer-wins, which is part of the original data contract and
// is kept as-is.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/reyarovenko/iMeal/pkg/models"
)

// Positioned pairs an entry with its absolute index in the full stored
// sequence. Deletion works on absolute positions, so date-filtered listings
// must carry them.
type Positioned struct {
	Entry    models.Entry
	Position int
}

// EntryStore is the append-only log of logged meals.
type EntryStore struct {
	path string
	mu   sync.Mutex
}

func NewEntryStore(path string) *EntryStore {
	return &EntryStore{path: path}
}

// Append adds an entry to the end of the persisted sequence.
func (s *EntryStore) Append(entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readAll()
	entries = append(entries, entry)
	return s.writeAll(entries)
}

// All returns the full stored sequence in insertion order.
func (s *EntryStore) All() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// ListForDate returns the entries whose date equals d, each with its
// absolute position in the full sequence.
func (s *EntryStore) ListForDate(d string) []Positioned {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Positioned
	for i, entry := range s.readAll() {
		if entry.Date == d {
			out = append(out, Positioned{Entry: entry, Position: i})
		}
	}
	return out
}

// DeleteAt removes and returns the entry at the given absolute position,
// shifting later positions down by one. An out-of-range position is a
// no-op returning (nil, nil); only a failed rewrite is an error.
func (s *EntryStore) DeleteAt(position int) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readAll()
	if position < 0 || position >= len(entries) {
		return nil, nil
	}
	deleted := entries[position]
	entries = append(entries[:position], entries[position+1:]...)
	if err := s.writeAll(entries); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// readAll treats a missing or corrupt file as an empty sequence.
func (s *EntryStore) readAll() []models.Entry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []models.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

func (s *EntryStore) writeAll(entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

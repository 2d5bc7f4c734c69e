package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/reyarovenko/iMeal/pkg/models"
)

// ProfileStore maps user identifiers to their latest calorie profile.
// Exactly one profile per user; every Put fully replaces the prior value.
type ProfileStore struct {
	path string
	mu   sync.Mutex
}

func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

// Get returns the stored profile for a user, if any.
func (s *ProfileStore) Get(userID int64) (*models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.readAll()
	p, ok := profiles[strconv.FormatInt(userID, 10)]
	if !ok {
		return nil, false
	}
	return &p, true
}

// Put overwrites the user's profile.
func (s *ProfileStore) Put(userID int64, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.readAll()
	profiles[strconv.FormatInt(userID, 10)] = profile
	return s.writeAll(profiles)
}

// readAll treats a missing or corrupt file as "no profiles yet".
func (s *ProfileStore) readAll() map[string]models.Profile {
	profiles := make(map[string]models.Profile)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return profiles
	}
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return make(map[string]models.Profile)
	}
	return profiles
}

func (s *ProfileStore) writeAll(profiles map[string]models.Profile) error {
	raw, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prefixlens/backend/internal/domain"
)

var _ domain.ScoreStore = (*ScoreStore)(nil)

// ScoreStore is a thread-safe code -> score map persisted as a JSON object.
// It is loaded once at the start of a scoring run and persisted at the end.
type ScoreStore struct {
	path  string
	data  map[string]int
	mutex sync.RWMutex
}

// NewScoreStore creates an empty store that persists to path
func NewScoreStore(path string) *ScoreStore {
	return &ScoreStore{
		path: path,
		data: make(map[string]int),
	}
}

// LoadScoreStore reads the store at path. A missing file yields an empty store.
func LoadScoreStore(path string) (*ScoreStore, error) {
	store := NewScoreStore(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read score cache: %w", err)
	}

	if len(raw) == 0 {
		return store, nil
	}

	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("decode score cache %s: %w", path, err)
	}
	if store.data == nil {
		store.data = make(map[string]int)
	}

	return store, nil
}

// Get retrieves the score cached for code
func (s *ScoreStore) Get(code string) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	score, exists := s.data[code]
	if !exists {
		return 0, domain.ErrScoreCacheMiss
	}
	return score, nil
}

// Set stores the score for code
func (s *ScoreStore) Set(code string, score int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[code] = score
}

// Has reports whether code has a cached score
func (s *ScoreStore) Has(code string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, exists := s.data[code]
	return exists
}

// Len returns the number of cached scores
func (s *ScoreStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Persist writes the store to its path through a temp file and rename
func (s *ScoreStore) Persist() error {
	s.mutex.RLock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("encode score cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".score-cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp score cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write score cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close score cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace score cache: %w", err)
	}
	return nil
}

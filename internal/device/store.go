// Package device keeps per-device bookkeeping: which list this device has
// open and which lists it has opened before.
package device

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// HistoryLimit caps how many recent lists History returns.
const HistoryLimit = 10

const (
	activeListKey  = "active_share_id"
	recentListsKey = "recent_lists"
	themeKey       = "theme"
)

// Recent remembers a list previously opened on this device.
type Recent struct {
	ShareID string `json:"shareId"`
	Name    string `json:"name"`
}

// Backend is a string key/value store. Get reports false for missing keys
// and for keys it cannot read.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Store layers the active list pointer and the recency list on a Backend.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewMemory returns a Store that lives only as long as the process.
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Close releases the backend when it holds resources.
func (s *Store) Close() error {
	if closer, ok := s.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ActiveListID returns the share id this device last had open.
func (s *Store) ActiveListID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.backend.Get(activeListKey)
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetActiveListID records id as the open list.
func (s *Store) SetActiveListID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(activeListKey, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("set active list: %w", err)
	}
	return nil
}

// ClearActiveListID forgets the open list.
func (s *Store) ClearActiveListID() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(activeListKey); err != nil {
		return fmt.Errorf("clear active list: %w", err)
	}
	return nil
}

// Theme returns the theme name picked on this device, if any.
func (s *Store) Theme() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.backend.Get(themeKey)
	name = strings.TrimSpace(name)
	return name, ok && name != ""
}

// SetTheme remembers the picked theme name.
func (s *Store) SetTheme(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(themeKey, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

// Recents returns every remembered list in insertion order.
func (s *Store) Recents() []Recent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRecents()
}

// History returns at most HistoryLimit recent lists, newest first.
func (s *Store) History() []Recent {
	return LatestFirst(s.Recents(), HistoryLimit)
}

// RecordRecent appends a list the first time it is seen. Existing entries
// keep both their position and their name.
func (s *Store) RecordRecent(shareID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recents := s.readRecents()
	if indexOf(recents, shareID) >= 0 {
		return nil
	}
	recents = append(recents, Recent{ShareID: shareID, Name: name})
	return s.writeRecents(recents)
}

// UpdateRecentName renames an entry in place, appending it when missing.
func (s *Store) UpdateRecentName(shareID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recents := s.readRecents()
	if idx := indexOf(recents, shareID); idx >= 0 {
		recents[idx].Name = name
	} else {
		recents = append(recents, Recent{ShareID: shareID, Name: name})
	}
	return s.writeRecents(recents)
}

// RemoveRecent drops an entry if present.
func (s *Store) RemoveRecent(shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recents := s.readRecents()
	idx := indexOf(recents, shareID)
	if idx < 0 {
		return nil
	}
	recents = append(recents[:idx], recents[idx+1:]...)
	return s.writeRecents(recents)
}

// LatestFirst returns the last limit entries in reverse order.
func LatestFirst(entries []Recent, limit int) []Recent {
	if limit <= 0 || len(entries) == 0 {
		return nil
	}
	start := 0
	if len(entries) > limit {
		start = len(entries) - limit
	}
	out := make([]Recent, 0, len(entries)-start)
	for i := len(entries) - 1; i >= start; i-- {
		out = append(out, entries[i])
	}
	return out
}

func (s *Store) readRecents() []Recent {
	raw, ok := s.backend.Get(recentListsKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var recents []Recent
	if err := json.Unmarshal([]byte(raw), &recents); err != nil {
		return nil
	}

	// Stored data may predate de-duplication or be hand edited.
	seen := make(map[string]bool, len(recents))
	out := recents[:0]
	for _, r := range recents {
		if r.ShareID == "" || seen[r.ShareID] {
			continue
		}
		seen[r.ShareID] = true
		out = append(out, r)
	}
	return out
}

func (s *Store) writeRecents(recents []Recent) error {
	if recents == nil {
		recents = []Recent{}
	}
	data, err := json.Marshal(recents)
	if err != nil {
		return fmt.Errorf("encode recent lists: %w", err)
	}
	if err := s.backend.Set(recentListsKey, string(data)); err != nil {
		return fmt.Errorf("save recent lists: %w", err)
	}
	return nil
}

func indexOf(recents []Recent, shareID string) int {
	for i, r := range recents {
		if r.ShareID == shareID {
			return i
		}
	}
	return -1
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// AdminStore holds the admin roster: lowercased handle mapped to the admin's
// numeric identity, nil until their first observed message resolves it. The
// seed owner entry survives a purge and a degraded load, otherwise nobody
// could talk to the bot at all.
type AdminStore struct {
	path       string
	seedHandle string
	seedID     int64

	mu     sync.Mutex
	admins map[string]*int64
}

// NewAdminStore loads the roster at path, creating it with just the seed
// owner entry if it does not exist. An unreadable or unparseable file
// degrades to the seed roster and the causal error is returned for the
// caller to log.
func NewAdminStore(path, ownerHandle string, ownerID int64) (*AdminStore, error) {
	s := &AdminStore{
		path:       path,
		seedHandle: normalizeHandle(ownerHandle),
		seedID:     ownerID,
	}
	s.admins = s.seed()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return s, fmt.Errorf("failed to create admin file: %w", err)
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read admin file: %w", err)
	}
	loaded := make(map[string]*int64)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s, fmt.Errorf("failed to parse admin file: %w", err)
	}
	if len(loaded) > 0 {
		s.admins = loaded
	}
	return s, nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

func (s *AdminStore) seed() map[string]*int64 {
	id := s.seedID
	return map[string]*int64{s.seedHandle: &id}
}

// caller must hold mu
func (s *AdminStore) save() error {
	return writeJSON(s.path, s.admins)
}

// Add inserts a handle with an unresolved identity. Adding a handle that is
// already on the roster is a no-op.
func (s *AdminStore) Add(handle string) error {
	handle = normalizeHandle(handle)
	if handle == "" {
		return fmt.Errorf("admin handle: %w", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[handle]; !ok {
		s.admins[handle] = nil
	}
	return s.save()
}

// Remove drops a roster entry matched by handle first, then by numeric
// identity. Removing an absent admin is a no-op.
func (s *AdminStore) Remove(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := normalizeHandle(token)
	if _, ok := s.admins[handle]; ok {
		delete(s.admins, handle)
		return s.save()
	}
	if id, err := cast.ToInt64E(token); err == nil {
		for h, v := range s.admins {
			if v != nil && *v == id {
				delete(s.admins, h)
				break
			}
		}
	}
	return s.save()
}

// Resolve caches the handle→identity pairing for an admin. Stale entries
// under their previous handle or identity are dropped first, which is how a
// display-handle change is tolerated. Runs on every observed admin message.
func (s *AdminStore) Resolve(handle string, id int64) error {
	handle = normalizeHandle(handle)
	if handle == "" {
		return fmt.Errorf("admin handle: %w", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for h, v := range s.admins {
		if v != nil && *v == id && h != handle {
			delete(s.admins, h)
		}
	}
	s.admins[handle] = &id
	return s.save()
}

// Purge resets the roster to exactly the seed owner entry.
func (s *AdminStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admins = s.seed()
	return s.save()
}

// IsAdmin reports whether the identity belongs to a resolved roster entry.
func (s *AdminStore) IsAdmin(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.admins {
		if v != nil && *v == id {
			return true
		}
	}
	return false
}

// HasHandle reports whether the handle is on the roster, resolved or not.
func (s *AdminStore) HasHandle(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.admins[normalizeHandle(handle)]
	return ok
}

// Handles returns all roster handles, sorted.
func (s *AdminStore) Handles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := make([]string, 0, len(s.admins))
	for h := range s.admins {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}

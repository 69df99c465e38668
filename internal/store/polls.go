package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/shortrest/tavernbot/internal/models"
)

// PollStore holds the poll collection in memory and mirrors it to a JSON
// file. The mutex serializes mutations against the scheduler's
// read-then-dispatch sweep (see ForEach).
type PollStore struct {
	path string

	mu    sync.Mutex
	polls map[string]models.Poll
}

// NewPollStore loads the poll file at path, creating it with an empty
// collection if it does not exist. The returned store is always usable: an
// unreadable or unparseable file leaves the collection empty and the causal
// error is returned for the caller to log.
func NewPollStore(path string) (*PollStore, error) {
	s := &PollStore{path: path, polls: make(map[string]models.Poll)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return s, fmt.Errorf("failed to create poll file: %w", err)
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read poll file: %w", err)
	}
	if err := json.Unmarshal(data, &s.polls); err != nil {
		s.polls = make(map[string]models.Poll)
		return s, fmt.Errorf("failed to parse poll file: %w", err)
	}
	return s, nil
}

// caller must hold mu
func (s *PollStore) save() error {
	return writeJSON(s.path, s.polls)
}

// Create inserts a fully populated poll. A poll without options or days is
// rejected with ErrInvalid and a name collision with ErrConflict.
func (s *PollStore) Create(p models.Poll) error {
	if p.Name == "" || len(p.Options) == 0 || len(p.Days) == 0 {
		return fmt.Errorf("poll %q: %w", p.Name, ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[p.Name]; ok {
		return fmt.Errorf("poll %q: %w", p.Name, ErrConflict)
	}
	s.polls[p.Name] = p
	return s.save()
}

// Delete removes a poll by name, failing with ErrNotFound if it is absent.
func (s *PollStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[name]; !ok {
		return fmt.Errorf("poll %q: %w", name, ErrNotFound)
	}
	delete(s.polls, name)
	return s.save()
}

// Get looks up a poll by name.
func (s *PollStore) Get(name string) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[name]
	if !ok {
		return models.Poll{}, fmt.Errorf("poll %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// Has reports whether a poll with the given name exists.
func (s *PollStore) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.polls[name]
	return ok
}

// Names returns all poll names, sorted.
func (s *PollStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.polls))
	for name := range s.polls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesForChat returns the sorted names of the polls that belong to the
// given group chat.
func (s *PollStore) NamesForChat(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for name, p := range s.polls {
		if p.ChatID == chatID {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored polls.
func (s *PollStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.polls)
}

// ForEach runs fn for every stored poll while holding the store mutex, so a
// concurrent Create or Delete cannot interleave with the sweep. The
// scheduler dispatches due polls from inside fn.
func (s *PollStore) ForEach(fn func(models.Poll)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.polls {
		fn(p)
	}
}

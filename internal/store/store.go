// Package store persists the admin roster and the poll collection as two
// flat JSON files. Every mutation rewrites the whole file; the collections
// stay small enough that batching would be pointless. A file that exists but
// cannot be parsed degrades to an empty collection instead of failing the
// process: the constructor returns both a usable store and the causal error
// so the caller can log it and carry on.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInvalid  = errors.New("invalid definition")
)

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

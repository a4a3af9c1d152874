package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gemaluna/storefront-client/domain"
)

// FileStore is a Carrier backed by a JSON file on disk, the kiosk-local
// analogue of browser session storage.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed carrier storing the pending cart in the
// given directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, Key+".json"),
	}
}

// Save writes the lines to the storage file, overwriting any prior value.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated slot.
func (s *FileStore) Save(_ context.Context, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal pending cart: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write pending cart: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit pending cart: %w", err)
	}

	return nil
}

// Take reads the stored lines and deletes the file. Returns nil when no
// pending cart exists.
func (s *FileStore) Take(_ context.Context) ([]domain.CartLine, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending cart: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("clear pending cart: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		// A corrupt slot is unrecoverable; it has already been cleared.
		return nil, fmt.Errorf("unmarshal pending cart: %w", err)
	}

	return lines, nil
}

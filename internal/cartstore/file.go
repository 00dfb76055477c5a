package cartstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the cart id in a small JSON file under the app's data
// directory, surviving restarts the way device-local preferences do.
type FileStore struct {
	path string
}

type fileState struct {
	CartID string `json:"cart_id"`
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart store dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "cart.json")}, nil
}

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cart file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("failed to decode cart file: %w", err)
	}
	return state.CartID, nil
}

func (f *FileStore) Save(cartID string) error {
	data, err := json.Marshal(fileState{CartID: cartID})
	if err != nil {
		return fmt.Errorf("failed to encode cart file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cart file: %w", err)
	}
	return nil
}

// MemoryStore is an IDStore for tests and ephemeral sessions.
type MemoryStore struct {
	cartID string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (string, error) { return m.cartID, nil }

func (m *MemoryStore) Save(cartID string) error {
	m.cartID = cartID
	return nil
}

func (m *MemoryStore) Clear() error {
	m.cartID = ""
	return nil
}

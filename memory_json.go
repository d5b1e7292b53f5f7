package fusion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore persists the memory document to a JSON file.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a JSON file store at the given path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the document from the file. A missing file is not an error.
func (s *JSONStore) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Save writes the document to the file, creating parent directories as
// needed.
func (s *JSONStore) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(s.path, data, 0644)
}

// Close is a no-op for file-backed storage.
func (s *JSONStore) Close() error {
	return nil
}

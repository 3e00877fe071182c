package deliverable

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hupe1980/agentcrew/core"
)

// unsafePathChars collapses anything outside a conservative filename
// alphabet so session ids and deliverable names cannot escape the root.
var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileStore writes deliverables to disk under root/<session>/<name>,
// creating directories as needed. Names keep their extension (.md, .json)
// so the output directory is directly browsable.
type FileStore struct {
	root string
}

// NewFileStore constructs a file-backed deliverable store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create deliverable root: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// Save writes (or overwrites) the deliverable file for the session.
func (s *FileStore) Save(sessionID, name string, data []byte) error {
	dir := filepath.Join(s.root, sanitize(sessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sanitize(name)), data, 0o644); err != nil {
		return fmt.Errorf("write deliverable: %w", err)
	}
	return nil
}

// Get reads the deliverable bytes or returns ErrNotFound.
func (s *FileStore) Get(sessionID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, sanitize(sessionID), sanitize(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read deliverable: %w", err)
	}
	return data, nil
}

// List returns the deliverable names stored for the session.
func (s *FileStore) List(sessionID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, sanitize(sessionID)))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list deliverables: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Delete removes the deliverable file if present or returns ErrNotFound.
func (s *FileStore) Delete(sessionID, name string) error {
	err := os.Remove(filepath.Join(s.root, sanitize(sessionID), sanitize(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func sanitize(part string) string {
	cleaned := unsafePathChars.ReplaceAllString(part, "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "_"
	}
	return cleaned
}

// compile-time interface check
var _ core.DeliverableStore = (*FileStore)(nil)

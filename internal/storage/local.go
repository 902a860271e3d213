package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore persists files on the local filesystem under a root directory.
// Public relative paths map 1:1 onto paths below the root.
type LocalStore struct {
	root string
}

// NewLocalStore returns a LocalStore rooted at the given directory.
// An empty root falls back to the current working directory.
func NewLocalStore(root string) *LocalStore {
	if root == "" {
		root, _ = os.Getwd()
	}
	return &LocalStore{root: root}
}

func (s *LocalStore) Save(upload FileUpload, folder string) (string, error) {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, upload.Content, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/" + folder + "/" + name, nil
}

func (s *LocalStore) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	path := filepath.Join(s.root, strings.TrimPrefix(relPath, "/"))
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", relPath, err)
	}
	return nil
}

func (s *LocalStore) Exists(relPath string) bool {
	if relPath == "" {
		return false
	}
	path := filepath.Join(s.root, strings.TrimPrefix(relPath, "/"))
	_, err := os.Stat(path)
	return err == nil
}

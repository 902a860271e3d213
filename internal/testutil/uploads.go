// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"foodconnect/internal/storage"
)

// PNGUpload builds a valid in-memory PNG upload of the given pixel size.
func PNGUpload(filename string, width, height int) storage.FileUpload {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return storage.FileUpload{
		Filename:    filename,
		ContentType: "image/png",
		Content:     buf.Bytes(),
	}
}

// OversizedUpload builds an upload whose content exceeds the given byte limit.
// The content is not a real image; size validation runs before format checks.
func OversizedUpload(filename string, limit int64) storage.FileUpload {
	return storage.FileUpload{
		Filename:    filename,
		ContentType: "image/png",
		Content:     make([]byte, limit+1),
	}
}

// MemoryStore is an in-memory FileStore for tests. It records every save and
// delete so assertions can inspect the physical-file side effects.
type MemoryStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	nextID  int
	Deleted []string
	SaveErr error
}

// NewMemoryStore creates an empty in-memory file store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Save stores the upload under a deterministic generated name.
func (m *MemoryStore) Save(upload storage.FileUpload, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	m.nextID++
	path := fmt.Sprintf("/%s/file-%d-%s", folder, m.nextID, upload.Filename)
	m.files[path] = upload.Content
	return path, nil
}

// Delete removes the stored file. Missing paths are not an error.
func (m *MemoryStore) Delete(relPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, relPath)
	m.Deleted = append(m.Deleted, relPath)
	return nil
}

// Exists reports whether the path is currently stored.
func (m *MemoryStore) Exists(relPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[relPath]
	return ok
}

// Count returns the number of stored files.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

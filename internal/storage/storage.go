// Package storage provides file persistence for uploaded media.
package storage

// FileUpload is an in-memory uploaded file as received at the boundary.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// FileStore abstracts the physical file store. It performs no validation;
// callers are responsible for rejecting invalid uploads before saving.
type FileStore interface {
	// Save persists the upload under folder and returns its public relative
	// path (e.g. "/uploads/3f2a....jpg").
	Save(upload FileUpload, folder string) (string, error)
	// Delete removes the file at the given relative path. Deleting a missing
	// path is not an error.
	Delete(relPath string) error
	// Exists reports whether a file exists at the given relative path.
	Exists(relPath string) bool
}

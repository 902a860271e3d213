package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"foodconnect/internal/models"
	"foodconnect/internal/observability"
	"foodconnect/internal/storage"
)

// allowedImageExtensions is the set of file extensions accepted for post
// images, keyed by lowercased extension including the dot.
var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// MediaReconciler validates image uploads, persists them through a FileStore,
// and diffs a post's stored image set against the set the caller wants to
// keep.
type MediaReconciler struct {
	store        storage.FileStore
	uploadFolder string
	maxBytes     int64
}

// NewMediaReconciler returns a MediaReconciler writing into uploadFolder and
// rejecting uploads larger than maxBytes.
func NewMediaReconciler(store storage.FileStore, uploadFolder string, maxBytes int64) *MediaReconciler {
	return &MediaReconciler{
		store:        store,
		uploadFolder: uploadFolder,
		maxBytes:     maxBytes,
	}
}

// NormalizeImageURLs trims entries, drops blanks, and removes duplicates
// while preserving first-seen order.
func NormalizeImageURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

// ReconcileResult describes the outcome of diffing a post's image set.
type ReconcileResult struct {
	// KeepURLs are existing URLs that survive the update.
	KeepURLs []string
	// RemoveURLs are existing URLs whose rows must be deleted.
	RemoveURLs []string
	// PendingDeletes are managed file paths to remove physically after the
	// surrounding transaction commits.
	PendingDeletes []string
}

// ValidateUpload checks a single upload against size and format constraints.
func (m *MediaReconciler) ValidateUpload(upload storage.FileUpload) error {
	if int64(len(upload.Content)) > m.maxBytes {
		return models.NewInvalidMediaError(fmt.Sprintf("File %q exceeds the maximum size of %d bytes", upload.Filename, m.maxBytes))
	}
	if len(upload.Content) == 0 {
		return models.NewInvalidMediaError(fmt.Sprintf("File %q is empty", upload.Filename))
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return models.NewUnsupportedMediaError(fmt.Sprintf("File %q has an unsupported extension", upload.Filename))
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return models.NewUnsupportedMediaError(fmt.Sprintf("File %q has an unsupported content type %q", upload.Filename, upload.ContentType))
	}
	return nil
}

// ValidateUploads checks the whole batch before anything is written, so a bad
// file in the batch fails the request without leaving partial state.
func (m *MediaReconciler) ValidateUploads(uploads []storage.FileUpload) error {
	for _, u := range uploads {
		if err := m.ValidateUpload(u); err != nil {
			observability.UploadsTotal.WithLabelValues("rejected").Inc()
			return err
		}
	}
	return nil
}

// SaveUploads writes every upload to the file store and returns the resulting
// URLs. Callers must validate the batch first.
func (m *MediaReconciler) SaveUploads(uploads []storage.FileUpload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := m.store.Save(u, m.uploadFolder)
		if err != nil {
			observability.UploadsTotal.WithLabelValues("failed").Inc()
			return urls, models.NewInternalError(err)
		}
		observability.UploadsTotal.WithLabelValues("saved").Inc()
		urls = append(urls, url)
	}
	return urls, nil
}

// Reconcile diffs the stored URL set against the URLs the caller wants to
// keep. URLs present in keep but not stored are ignored. Only URLs inside the
// managed upload namespace become pending physical deletes; external URLs are
// removed from the database only.
func (m *MediaReconciler) Reconcile(stored, keep []string) ReconcileResult {
	keepSet := make(map[string]struct{}, len(keep))
	for _, u := range keep {
		keepSet[u] = struct{}{}
	}

	var result ReconcileResult
	for _, u := range stored {
		if _, ok := keepSet[u]; ok {
			result.KeepURLs = append(result.KeepURLs, u)
			continue
		}
		result.RemoveURLs = append(result.RemoveURLs, u)
		if m.IsManagedURL(u) {
			result.PendingDeletes = append(result.PendingDeletes, u)
		}
	}
	return result
}

// IsManagedURL reports whether the URL points into the upload namespace this
// reconciler owns and may therefore be physically deleted.
func (m *MediaReconciler) IsManagedURL(url string) bool {
	prefix := "/" + strings.Trim(m.uploadFolder, "/") + "/"
	return strings.HasPrefix(url, prefix)
}

// DeleteFiles physically removes the given managed paths. Deletion failures
// are counted but not propagated; the store's Delete is idempotent and a
// leaked file is preferable to failing a committed operation.
func (m *MediaReconciler) DeleteFiles(paths []string) {
	for _, p := range paths {
		if err := m.store.Delete(p); err != nil {
			observability.FileDeletionsTotal.WithLabelValues("failed").Inc()
			continue
		}
		observability.FileDeletionsTotal.WithLabelValues("deleted").Inc()
	}
}

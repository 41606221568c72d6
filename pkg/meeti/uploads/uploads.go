// Package uploads is the file storage collaborator for group and profile
// images. Policy (destination dir, size cap, accepted types) is injected
// at construction; stored files get generated names so at most one file
// ever corresponds to a record's image reference.
package uploads

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Subdirectories under the uploads root, one per resource kind.
const (
	GroupsDir   = "groups"
	ProfilesDir = "profiles"
)

var (
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("only jpeg and png images are accepted")
)

// extensions maps accepted content types to stored extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Store places and removes uploaded image files on local disk.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates a store rooted at dir with the given per-file size cap.
func NewStore(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Save validates the upload against the injected policy, writes it under
// subdir with a freshly generated name, and returns that name.
func (s *Store) Save(fh *multipart.FileHeader, subdir string) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	ext, ok := extensions[fh.Header.Get("Content-Type")]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.New().String() + ext
	if err := os.MkdirAll(filepath.Join(s.dir, subdir), 0o755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, subdir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return name, err
	}
	return name, nil
}

// Exists reports whether the named file is present under subdir.
func (s *Store) Exists(subdir, name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, subdir, name))
	return err == nil
}

// Remove deletes the named file. Callers treat failure as non-fatal and
// only log the returned error; a stale file may remain orphaned.
func (s *Store) Remove(subdir, name string) error {
	return os.Remove(filepath.Join(s.dir, subdir, name))
}

// Package upload manages the upload area: the directory of user-submitted
// product images served back over HTTP under /uploads/.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Prefix is the URL path prefix stored on product records for local images.
const Prefix = "/uploads/"

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the multipart file into the upload area under a unique name
// and returns the stored /uploads/ path to record on the product.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%d-%s-%s",
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		sanitizeFilename(header.Filename),
	)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return Prefix + name, nil
}

// Remove deletes a locally stored image best-effort. Failures are logged
// and swallowed; the primary operation never fails on cleanup.
func (s *Store) Remove(storedPath string) {
	if !IsLocal(storedPath) {
		return
	}
	path := s.FilePath(storedPath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("failed to delete image file")
	}
}

// FilePath maps a stored /uploads/ path back to its location on disk.
func (s *Store) FilePath(storedPath string) string {
	return filepath.Join(s.dir, filepath.Base(storedPath))
}

// IsLocal reports whether the image path points into the upload area.
func IsLocal(storedPath string) bool {
	return strings.HasPrefix(storedPath, Prefix)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}

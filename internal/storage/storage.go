// Package storage keeps uploaded images on local disk under a public prefix.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	PublicPrefix  = "/uploads"
	MaxFilesCount = 10
)

var (
	ErrTooManyFiles     = errors.New("too many files")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("file type not allowed")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

type Store struct {
	root        string
	maxFileSize int64
}

// NewStore stores files under root, rejecting any larger than maxFileSize bytes.
func NewStore(root string, maxFileSize int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{root: root, maxFileSize: maxFileSize}, nil
}

// Root is the directory served under PublicPrefix.
func (s *Store) Root() string {
	return s.root
}

// Save writes the files into dir and returns their public paths. Nothing is
// written unless every file passes the checks.
func (s *Store) Save(dir string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFilesCount {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyFiles, MaxFilesCount)
	}
	for _, fh := range files {
		if fh.Size > s.maxFileSize {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, fh.Filename, s.maxFileSize)
		}
		if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, fh.Filename)
		}
	}

	target := filepath.Join(s.root, filepath.Clean("/"+dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, err
	}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
		if err := s.copy(fh, filepath.Join(target, name)); err != nil {
			return nil, err
		}
		saved = append(saved, path.Join(PublicPrefix, filepath.ToSlash(filepath.Clean("/"+dir)), name))
	}
	return saved, nil
}

func (s *Store) copy(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// Delete removes previously saved files given their public paths. Paths
// outside the store are ignored.
func (s *Store) Delete(publicPaths ...string) {
	for _, p := range publicPaths {
		rel, ok := strings.CutPrefix(p, PublicPrefix+"/")
		if !ok {
			continue
		}
		os.Remove(filepath.Join(s.root, filepath.Clean("/"+rel)))
	}
}

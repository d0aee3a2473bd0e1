package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxFileSize caps a single image at 5 MB.
	MaxFileSize = 5 << 20

	// MaxBatch limits the multiple-upload endpoint.
	MaxBatch = 5

	// DefaultType is the subdirectory used when the caller names none.
	DefaultType = "misc"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file exceeds the 5MB limit")
	ErrUnsupportedType = errors.New("only jpg, jpeg, png and gif files are allowed")
	ErrInvalidName     = errors.New("invalid file or type name")
	ErrFileNotFound    = errors.New("file not found")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// typePattern keeps subdirectory names flat; anything fancier is a traversal
// attempt.
var typePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

type FileInfo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

// Store writes uploads to disk under baseDir/<type>/, one subdirectory per
// content type, matching the public /uploads static path.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) BaseDir() string {
	return s.baseDir
}

func validKind(kind string) bool {
	return typePattern.MatchString(kind)
}

// Save streams the upload to disk under a fresh uuid filename, preserving
// only the extension of the original name.
func (s *Store) Save(kind, originalName string, r io.Reader, size int64) (*FileInfo, error) {
	if !validKind(kind) {
		return nil, ErrInvalidName
	}
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExts[ext] {
		return nil, ErrUnsupportedType
	}

	dir := filepath.Join(s.baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	filename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return nil, err
	}
	if written > MaxFileSize {
		os.Remove(dst.Name())
		return nil, ErrFileTooLarge
	}

	return &FileInfo{
		Filename: filename,
		URL:      "/uploads/" + kind + "/" + filename,
		Size:     written,
	}, nil
}

func (s *Store) List(kind string) ([]FileInfo, error) {
	if !validKind(kind) {
		return nil, ErrInvalidName
	}

	entries, err := os.ReadDir(filepath.Join(s.baseDir, kind))
	if errors.Is(err, os.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Filename: entry.Name(),
			URL:      "/uploads/" + kind + "/" + entry.Name(),
		})
	}
	return files, nil
}

func (s *Store) Delete(kind, filename string) error {
	if !validKind(kind) || filename != filepath.Base(filename) || filename == "." {
		return ErrInvalidName
	}

	err := os.Remove(filepath.Join(s.baseDir, kind, filename))
	if errors.Is(err, os.ErrNotExist) {
		return ErrFileNotFound
	}
	return err
}

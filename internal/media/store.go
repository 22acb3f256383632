package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storefront/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PublicPrefix is the URL prefix images are served under.
	PublicPrefix = "/assets"
	productDir   = "productImages"

	// MaxFiles is the upload limit per request.
	MaxFiles = 5
)

var (
	ErrTooManyFiles   = errors.New("too many image files")
	ErrNotAnImage     = errors.New("only image files are allowed")
	allowedExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

// Store keeps product images on local disk under root/productImages.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, productDir), 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root is the directory served under PublicPrefix.
func (s *Store) Root() string {
	return s.root
}

// Save writes the uploaded files and returns their public paths. On error
// any file already written by this call is removed again.
func (s *Store) Save(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := s.saveOne(fh)
		if err != nil {
			s.Remove(ctx, paths)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *Store) saveOne(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.root, productDir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path.Join(PublicPrefix, productDir, name), nil
}

// Remove deletes files by public path. Failures are logged, not returned.
func (s *Store) Remove(ctx context.Context, paths []string) {
	log := logger.FromCtx(ctx)
	for _, p := range paths {
		local, ok := s.localPath(p)
		if !ok {
			log.Warn("refusing to remove image outside store", zap.String("path", p))
			continue
		}
		if err := os.Remove(local); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Error("failed to remove image", zap.String("path", local), zap.Error(err))
		}
	}
}

func (s *Store) localPath(public string) (string, bool) {
	clean := path.Clean("/" + public)
	rel, ok := strings.CutPrefix(clean, PublicPrefix+"/"+productDir+"/")
	if !ok || rel == "" || strings.Contains(rel, "/") {
		return "", false
	}
	return filepath.Join(s.root, productDir, rel), true
}

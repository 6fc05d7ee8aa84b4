// Package storage keeps uploaded product images on local disk under the
// public directory and hands back their public URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxImageSize = 5 << 20
	productsDir  = "products"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image file too large (max 5MB)")
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// LocalStore writes files below Root and serves them from BaseURL + "/uploads".
type LocalStore struct {
	Root    string
	BaseURL string
	logger  *zap.Logger
}

func NewLocalStore(root, baseURL string, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{
		Root:    filepath.Clean(root),
		BaseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("upload"),
	}
}

// SaveImage stores an image and returns its public URL.
func (s *LocalStore) SaveImage(filename string, size int64, src io.Reader) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		return "", fmt.Errorf("%w: extension is required", ErrUnsupportedImage)
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, extension)
	}
	if size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	dir := filepath.Join(s.Root, productsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("create upload dir failed", zap.String("dir", dir), zap.Error(err))
		return "", err
	}

	name := uuid.NewString() + extension
	fullPath := filepath.Join(dir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		s.logger.Error("create file failed", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		s.logger.Error("write file failed", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}
	if written > MaxImageSize {
		_ = os.Remove(fullPath)
		return "", ErrImageTooLarge
	}

	s.logger.Info("image saved", zap.String("path", fullPath), zap.Int64("bytes", written))
	return s.BaseURL + "/uploads/" + productsDir + "/" + name, nil
}

// Delete removes a file previously returned by SaveImage. URLs outside the
// upload root are refused; missing files are not an error.
func (s *LocalStore) Delete(url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}
	trimmed = strings.TrimPrefix(trimmed, s.BaseURL)

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")
	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}
	cleanRel = strings.TrimPrefix(cleanRel, "uploads/")

	target := filepath.Clean(filepath.Join(s.Root, filepath.FromSlash(cleanRel)))
	if target == s.Root || !strings.HasPrefix(target, s.Root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", url)
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

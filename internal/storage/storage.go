// Package storage keeps uploaded product images on local disk.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore saves product images and resolves them to URLs.
type ImageStore interface {
	Save(productID string, img model.ImageUpload) (string, error)
	Remove(url string) error
}

// LocalImageStore writes images below Dir and serves them under URLPrefix.
type LocalImageStore struct {
	Dir       string
	URLPrefix string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save validates and writes the image, returning its public URL.
// Every save gets a fresh file name so a replaced image never serves stale content from caches.
func (s *LocalImageStore) Save(productID string, img model.ImageUpload) (string, error) {
	if err := validation.ValidateImage(img); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s%s", productID, uuid.New().String()[:8], extensions[validation.DetectImageType(img.Data)])
	if err := os.WriteFile(filepath.Join(s.Dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path.Join(s.URLPrefix, name), nil
}

// Remove deletes an image previously returned by Save. URLs that do not belong to this
// store, such as the placeholder, are ignored.
func (s *LocalImageStore) Remove(url string) error {
	prefix := s.URLPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avilaj/tablero-api/internal/oauth"
	"github.com/google/uuid"
)

var (
	ErrUploadTokenInvalid   = errors.New("upload token is invalid or expired")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadGrant struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// StorageService keeps profile images on local disk. Uploads go through
// short-lived single-use tokens so the PUT endpoint itself needs no
// auth header.
type StorageService struct {
	dir         string
	baseURL     string
	tokenExpiry time.Duration
	grants      sync.Map
}

func NewStorageService(dir, baseURL string, tokenExpiry time.Duration) (*StorageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	s := &StorageService{
		dir:         dir,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenExpiry: tokenExpiry,
	}
	go s.cleanupGrants()
	return s, nil
}

func (s *StorageService) GenerateUploadToken(userID uuid.UUID) (string, error) {
	token, err := oauth.GenerateState()
	if err != nil {
		return "", err
	}
	s.grants.Store(token, uploadGrant{
		userID:    userID,
		expiresAt: time.Now().Add(s.tokenExpiry),
	})
	return token, nil
}

func (s *StorageService) ConsumeUploadToken(token string) (uuid.UUID, error) {
	value, ok := s.grants.LoadAndDelete(token)
	if !ok {
		return uuid.Nil, ErrUploadTokenInvalid
	}
	grant := value.(uploadGrant)
	if time.Now().After(grant.expiresAt) {
		return uuid.Nil, ErrUploadTokenInvalid
	}
	return grant.userID, nil
}

// Save writes the image and returns its public URL. The filename is
// random so a re-upload never serves a stale cached image.
func (s *StorageService) Save(contentType string, body io.Reader) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	name := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/uploads/" + name, nil
}

func (s *StorageService) Dir() string {
	return s.dir
}

func (s *StorageService) cleanupGrants() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.grants.Range(func(key, value any) bool {
			if now.After(value.(uploadGrant).expiresAt) {
				s.grants.Delete(key)
			}
			return true
		})
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gallerygate/api/internal/models"
)

// GalleryRepository is the slice of the table layer the service needs.
// Kept as an interface so tests can stand in for the hosted backend.
type GalleryRepository interface {
	Insert(ctx context.Context, image models.GalleryImage) error
	GetByID(ctx context.Context, id string) (models.GalleryImage, error)
	ListByCategory(ctx context.Context, category string) ([]models.GalleryImage, error)
	DeleteByID(ctx context.Context, id string) error
}

// BlobStore is the slice of the object store the service needs.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

type GalleryService struct {
	repo  GalleryRepository
	store BlobStore
	log   zerolog.Logger
}

func NewGalleryService(repo GalleryRepository, store BlobStore, log zerolog.Logger) *GalleryService {
	return &GalleryService{
		repo:  repo,
		store: store,
		log:   log,
	}
}

type AddImageInput struct {
	Category    string
	Description string
	File        multipart.File
	Header      *multipart.FileHeader
}

// AddImage uploads the file under a fresh UUID key and inserts the row
// referencing its public URL. The two steps are not transactional: when
// the insert fails the blob is removed best-effort, and anything that
// slips through is picked up by the orphan sweep.
func (s *GalleryService) AddImage(ctx context.Context, input AddImageInput) (models.GalleryImage, error) {
	if input.File == nil || input.Header == nil {
		return models.GalleryImage{}, errors.New("invalid file payload")
	}

	key := uuid.NewString() + path.Ext(input.Header.Filename)
	contentType := input.Header.Header.Get("Content-Type")

	if err := s.store.Upload(ctx, key, input.File, input.Header.Size, contentType); err != nil {
		return models.GalleryImage{}, fmt.Errorf("upload blob: %w", err)
	}

	image := models.GalleryImage{
		ID:          uuid.NewString(),
		Category:    models.NormalizeCategory(input.Category),
		Description: input.Description,
		ImageURL:    s.store.PublicURL(key),
	}

	if err := s.repo.Insert(ctx, image); err != nil {
		if removeErr := s.store.Remove(ctx, key); removeErr != nil {
			s.log.Error().Err(removeErr).Str("key", key).Msg("orphaned blob left after failed insert")
		} else {
			s.log.Warn().Str("key", key).Msg("rolled back blob after failed insert")
		}
		return models.GalleryImage{}, fmt.Errorf("insert row: %w", err)
	}

	return image, nil
}

type AddExternalImageInput struct {
	Category    string
	Description string
	ImageURL    string
}

// AddExternalImage registers an already-hosted URL without uploading.
func (s *GalleryService) AddExternalImage(ctx context.Context, input AddExternalImageInput) (models.GalleryImage, error) {
	if input.ImageURL == "" {
		return models.GalleryImage{}, errors.New("image_url required")
	}

	image := models.GalleryImage{
		ID:          uuid.NewString(),
		Category:    models.NormalizeCategory(input.Category),
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}

	if err := s.repo.Insert(ctx, image); err != nil {
		return models.GalleryImage{}, fmt.Errorf("insert row: %w", err)
	}
	return image, nil
}

// DeleteImage removes the blob and the row for an image. A missing row
// aborts before any mutation. A failure between the two removals can
// leave a dangling row, which is logged.
func (s *GalleryService) DeleteImage(ctx context.Context, id string) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	key := objectKeyFromURL(image.ImageURL)
	if key != "" {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove blob: %w", err)
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.log.Error().Err(err).Str("image_id", id).Str("key", key).Msg("row left dangling after blob removal")
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}

func (s *GalleryService) ListByCategory(ctx context.Context, category string) ([]models.GalleryImage, error) {
	return s.repo.ListByCategory(ctx, category)
}

// objectKeyFromURL recovers the stored filename from a public URL.
// Rows registered with off-site URLs resolve to an empty key.
func objectKeyFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	if !pathHasPublicPrefix(parsed.Path) {
		return ""
	}
	return path.Base(parsed.Path)
}

func pathHasPublicPrefix(p string) bool {
	const prefix = "/storage/v1/object/public/"
	return len(p) > len(prefix) && p[:len(prefix)] == prefix
}

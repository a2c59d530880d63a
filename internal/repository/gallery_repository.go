package repository

import (
	"context"
	"errors"

	"gallerygate/api/internal/models"
	"gallerygate/api/internal/supabase"
)

var ErrImageNotFound = errors.New("gallery image not found")

const galleryTable = "gallery_images"

// GalleryImageRepository reads and writes gallery rows through the
// hosted table API. The durable record lives with the backend.
type GalleryImageRepository struct {
	rest *supabase.RestClient
}

func NewGalleryImageRepository(rest *supabase.RestClient) *GalleryImageRepository {
	return &GalleryImageRepository{rest: rest}
}

func (r *GalleryImageRepository) Insert(ctx context.Context, image models.GalleryImage) error {
	return r.rest.Insert(ctx, galleryTable, image)
}

func (r *GalleryImageRepository) GetByID(ctx context.Context, id string) (models.GalleryImage, error) {
	var rows []models.GalleryImage
	if err := r.rest.Select(ctx, galleryTable, map[string]string{"id": id}, &rows); err != nil {
		return models.GalleryImage{}, err
	}
	if len(rows) == 0 {
		return models.GalleryImage{}, ErrImageNotFound
	}
	return rows[0], nil
}

func (r *GalleryImageRepository) ListByCategory(ctx context.Context, category string) ([]models.GalleryImage, error) {
	var rows []models.GalleryImage
	filters := map[string]string{"category": models.NormalizeCategory(category)}
	if err := r.rest.Select(ctx, galleryTable, filters, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GalleryImageRepository) ListAll(ctx context.Context) ([]models.GalleryImage, error) {
	var rows []models.GalleryImage
	if err := r.rest.Select(ctx, galleryTable, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAllURLs returns the set of image URLs referenced by any row.
func (r *GalleryImageRepository) ListAllURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	urls := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		urls[row.ImageURL] = struct{}{}
	}
	return urls, nil
}

func (r *GalleryImageRepository) DeleteByID(ctx context.Context, id string) error {
	return r.rest.Delete(ctx, galleryTable, map[string]string{"id": id})
}

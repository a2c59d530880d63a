package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallerygate/api/internal/models"
	"gallerygate/api/internal/repository"
)

type stubRepo struct {
	rows      map[string]models.GalleryImage
	insertErr error
	inserted  []models.GalleryImage
	deleted   []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[string]models.GalleryImage{}}
}

func (r *stubRepo) Insert(_ context.Context, image models.GalleryImage) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows[image.ID] = image
	r.inserted = append(r.inserted, image)
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (models.GalleryImage, error) {
	image, ok := r.rows[id]
	if !ok {
		return models.GalleryImage{}, repository.ErrImageNotFound
	}
	return image, nil
}

func (r *stubRepo) ListByCategory(_ context.Context, category string) ([]models.GalleryImage, error) {
	var rows []models.GalleryImage
	for _, image := range r.rows {
		if image.Category == models.NormalizeCategory(category) {
			rows = append(rows, image)
		}
	}
	return rows, nil
}

func (r *stubRepo) DeleteByID(_ context.Context, id string) error {
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubStore struct {
	uploads   []string
	removals  []string
	uploadErr error
	removeErr error
}

func (s *stubStore) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removals = append(s.removals, key)
	return nil
}

func (s *stubStore) PublicURL(key string) string {
	return "https://backend.example.com/storage/v1/object/public/gallery-images/" + key
}

func fileUpload(t *testing.T, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)

	headers := form.File["file"]
	require.Len(t, headers, 1)
	file, err := headers[0].Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, headers[0]
}

func TestAddImage(t *testing.T) {
	t.Run("normalizes category and builds public url", func(t *testing.T) {
		repo := newStubRepo()
		store := &stubStore{}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		file, header := fileUpload(t, "a.png", "png-bytes")
		image, err := svc.AddImage(context.Background(), AddImageInput{
			Category:    " Travel ",
			Description: "x",
			File:        file,
			Header:      header,
		})
		require.NoError(t, err)

		assert.Equal(t, "travel", image.Category)
		assert.True(t, strings.HasSuffix(image.ImageURL, ".png"), "url %q should keep extension", image.ImageURL)
		assert.Contains(t, image.ImageURL, "/storage/v1/object/public/gallery-images/")
		assert.NotEmpty(t, image.ID)

		require.Len(t, repo.inserted, 1)
		assert.Equal(t, image.ImageURL, repo.inserted[0].ImageURL)

		listed, err := svc.ListByCategory(context.Background(), "TRAVEL")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, image.ImageURL, listed[0].ImageURL)
	})

	t.Run("failed insert removes the uploaded blob", func(t *testing.T) {
		repo := newStubRepo()
		repo.insertErr = errors.New("row rejected")
		store := &stubStore{}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		file, header := fileUpload(t, "b.jpg", "jpg-bytes")
		_, err := svc.AddImage(context.Background(), AddImageInput{
			Category: "travel",
			File:     file,
			Header:   header,
		})
		require.Error(t, err)

		require.Len(t, store.uploads, 1)
		require.Len(t, store.removals, 1)
		assert.Equal(t, store.uploads[0], store.removals[0])
	})

	t.Run("failed upload inserts nothing", func(t *testing.T) {
		repo := newStubRepo()
		store := &stubStore{uploadErr: errors.New("storage down")}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		file, header := fileUpload(t, "c.png", "png-bytes")
		_, err := svc.AddImage(context.Background(), AddImageInput{
			Category: "travel",
			File:     file,
			Header:   header,
		})
		require.Error(t, err)
		assert.Empty(t, repo.inserted)
	})
}

func TestAddExternalImage(t *testing.T) {
	repo := newStubRepo()
	svc := NewGalleryService(repo, &stubStore{}, zerolog.Nop())

	image, err := svc.AddExternalImage(context.Background(), AddExternalImageInput{
		Category: " Portraits ",
		ImageURL: "https://cdn.example.com/p.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "portraits", image.Category)
	assert.Equal(t, "https://cdn.example.com/p.jpg", image.ImageURL)
}

func TestDeleteImage(t *testing.T) {
	t.Run("missing row mutates nothing", func(t *testing.T) {
		repo := newStubRepo()
		store := &stubStore{}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		err := svc.DeleteImage(context.Background(), "nope")
		assert.ErrorIs(t, err, repository.ErrImageNotFound)
		assert.Empty(t, store.removals)
		assert.Empty(t, repo.deleted)
	})

	t.Run("removes blob by filename then deletes row", func(t *testing.T) {
		repo := newStubRepo()
		repo.rows["img-1"] = models.GalleryImage{
			ID:       "img-1",
			Category: "travel",
			ImageURL: "https://backend.example.com/storage/v1/object/public/gallery-images/abc.png",
		}
		store := &stubStore{}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		require.NoError(t, svc.DeleteImage(context.Background(), "img-1"))
		assert.Equal(t, []string{"abc.png"}, store.removals)
		assert.Equal(t, []string{"img-1"}, repo.deleted)
	})

	t.Run("off-site url skips blob removal", func(t *testing.T) {
		repo := newStubRepo()
		repo.rows["img-2"] = models.GalleryImage{
			ID:       "img-2",
			ImageURL: "https://cdn.example.com/p.jpg",
		}
		store := &stubStore{}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		require.NoError(t, svc.DeleteImage(context.Background(), "img-2"))
		assert.Empty(t, store.removals)
		assert.Equal(t, []string{"img-2"}, repo.deleted)
	})

	t.Run("blob removal failure keeps the row", func(t *testing.T) {
		repo := newStubRepo()
		repo.rows["img-3"] = models.GalleryImage{
			ID:       "img-3",
			ImageURL: "https://backend.example.com/storage/v1/object/public/gallery-images/x.png",
		}
		store := &stubStore{removeErr: errors.New("storage down")}
		svc := NewGalleryService(repo, store, zerolog.Nop())

		require.Error(t, svc.DeleteImage(context.Background(), "img-3"))
		assert.Empty(t, repo.deleted)
	})
}

func TestObjectKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "public convention",
			url:  "https://backend.example.com/storage/v1/object/public/gallery-images/abc.png",
			want: "abc.png",
		},
		{
			name: "off-site url",
			url:  "https://cdn.example.com/p.jpg",
			want: "",
		},
		{
			name: "unparseable",
			url:  "://not-a-url",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectKeyFromURL(tt.url))
		})
	}
}

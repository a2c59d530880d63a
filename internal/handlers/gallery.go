package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gallerygate/api/internal/models"
	"gallerygate/api/internal/repository"
	"gallerygate/api/internal/service"
)

func (h HandlerSet) AddGalleryImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	image, err := h.gallery.AddImage(c.Request.Context(), service.AddImageInput{
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		File:        file,
		Header:      header,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("add gallery image failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add_image_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image added successfully.",
		"image_url": image.ImageURL,
	})
}

type addExternalImageRequest struct {
	Category    string `json:"category" binding:"required"`
	ImageURL    string `json:"image_url" binding:"required,url"`
	Description string `json:"description"`
}

// AddExternalGalleryImage registers an image already hosted elsewhere,
// skipping the upload step.
func (h HandlerSet) AddExternalGalleryImage(c *gin.Context) {
	var req addExternalImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.gallery.AddExternalImage(c.Request.Context(), service.AddExternalImageInput{
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}); err != nil {
		h.log.Error().Err(err).Msg("register gallery image failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add_image_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image added successfully."})
}

func (h HandlerSet) DeleteGalleryImage(c *gin.Context) {
	id := c.Param("imageID")

	if err := h.gallery.DeleteImage(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
			return
		}
		h.log.Error().Err(err).Str("image_id", id).Msg("delete gallery image failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_image_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully."})
}

func (h HandlerSet) ListGalleryImages(c *gin.Context) {
	images, err := h.gallery.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.log.Error().Err(err).Msg("list gallery images failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_images_failed"})
		return
	}

	if images == nil {
		images = []models.GalleryImage{}
	}
	c.JSON(http.StatusOK, images)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gallerygate/api/internal/config"
	"gallerygate/api/internal/middleware"
	"gallerygate/api/internal/models"
	"gallerygate/api/internal/service"
	"gallerygate/api/internal/supabase"
)

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	auth    *supabase.AuthClient
	gallery *service.GalleryService
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, auth *supabase.AuthClient, gallery *service.GalleryService) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		auth:    auth,
		gallery: gallery,
	}
}

func (h HandlerSet) Register(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)
	router.GET("/auth/google", h.OAuthRedirect)
	router.GET("/auth/callback", h.OAuthCallback)
	router.POST("/password-reset", h.PasswordReset)
	router.POST("/update-password", h.UpdatePassword)

	admin := router.Group("/admin")
	admin.Use(
		middleware.Auth(h.auth),
		middleware.RequireRole(models.UserRoleAdmin),
	)
	admin.GET("", h.AdminHome)
	admin.POST("/gallery/add-image", h.AddGalleryImage)
	admin.POST("/gallery/add", h.AddExternalGalleryImage)
	admin.DELETE("/gallery/delete/:imageID", h.DeleteGalleryImage)

	// Category listing serves the public site and carries no guard.
	router.GET("/admin/gallery/:category", h.ListGalleryImages)
}

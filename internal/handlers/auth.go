package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gallerygate/api/internal/supabase"
)

type signupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), supabase.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup_failed"})
		return
	}

	var registered *string
	if user.Email != "" {
		registered = &user.Email
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully. Please verify your email.",
		"user":    registered,
	})
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

// Login runs the password grant, then a second round trip to fetch the
// profile for the fresh token. Both auth failures surface as 401, but
// an unconfirmed account keeps its own distinguishable message.
func (h HandlerSet) Login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	session, err := h.auth.TokenByPassword(c.Request.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, supabase.ErrEmailNotConfirmed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please verify your email first."})
		case errors.Is(err, supabase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		default:
			h.log.Error().Err(err).Msg("password grant failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		}
		return
	}

	user, err := h.auth.UserByToken(c.Request.Context(), session.AccessToken)
	if err != nil {
		h.log.Warn().Err(err).Msg("user lookup after grant failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Error fetching user details"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		User: userResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role(),
		},
	})
}

// OAuthRedirect hands out the static federated-login URL. No state is
// minted here; the hosted backend drives the provider handshake.
func (h HandlerSet) OAuthRedirect(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"login_url": h.auth.AuthorizeURL(h.cfg.Auth.OAuthProvider),
	})
}

// OAuthCallback accepts a token the client obtained out-of-band and
// resolves the profile exactly like Login's second step.
func (h HandlerSet) OAuthCallback(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.auth.UserByToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: userResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role(),
		},
	})
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordReset answers with the same confirmation whether or not the
// address exists. Only a transport-level failure becomes an error, so
// the endpoint cannot be used to enumerate accounts.
func (h HandlerSet) PasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.Recover(c.Request.Context(), req.Email, h.cfg.Auth.ResetRedirectURL); err != nil {
		h.log.Error().Err(err).Msg("recovery mail request failed")
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to send reset email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent. Please check your inbox."})
}

type passwordUpdateRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h HandlerSet) UpdatePassword(c *gin.Context) {
	var req passwordUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.UpdatePassword(c.Request.Context(), req.AccessToken, req.NewPassword); err != nil {
		h.log.Warn().Err(err).Msg("password update failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h HandlerSet) AdminHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome, admin."})
}

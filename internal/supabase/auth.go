package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gallerygate/api/internal/config"
)

// AuthClient talks to the hosted identity API. The gateway never issues
// or verifies tokens itself; every check is a fresh round trip here.
type AuthClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewAuthClient(cfg config.BackendConfig) *AuthClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AuthClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// AuthUser is the identity record shape returned by the user endpoint.
type AuthUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Role reads the role claim from user metadata, defaulting to "user"
// when the claim is absent or not a string.
func (u AuthUser) Role() string {
	if role, ok := u.Metadata["role"].(string); ok && role != "" {
		return role
	}
	return "user"
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

func (c *AuthClient) SignUp(ctx context.Context, input SignUpInput) (AuthUser, error) {
	body := map[string]any{
		"email":    input.Email,
		"password": input.Password,
		"data": map[string]any{
			"full_name": input.FullName,
		},
	}

	var user AuthUser
	status, raw, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body)
	if err != nil {
		return AuthUser{}, err
	}
	if status < 200 || status >= 300 {
		return AuthUser{}, &APIError{Status: status, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return AuthUser{}, fmt.Errorf("decode signup response: %w", err)
	}
	return user, nil
}

type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenByPassword exchanges email+password for a bearer token. The
// identity API reports an unverified account only as free text in the
// error body, so that substring is the discriminator.
func (c *AuthClient) TokenByPassword(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body)
	if err != nil {
		return Session{}, err
	}
	if status < 200 || status >= 300 {
		if strings.Contains(strings.ToLower(string(raw)), "email not confirmed") {
			return Session{}, ErrEmailNotConfirmed
		}
		return Session{}, ErrInvalidCredentials
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("decode token response: %w", err)
	}
	return session, nil
}

// UserByToken resolves the user a bearer token belongs to.
func (c *AuthClient) UserByToken(ctx context.Context, token string) (AuthUser, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return AuthUser{}, err
	}
	if status < 200 || status >= 300 {
		return AuthUser{}, ErrInvalidToken
	}

	var user AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return AuthUser{}, fmt.Errorf("decode user response: %w", err)
	}
	if user.ID == "" {
		return AuthUser{}, ErrInvalidToken
	}
	return user, nil
}

// Recover asks the backend to send a password recovery mail. The reply
// is identical whether or not the address exists; only a transport
// level failure is surfaced, so callers cannot enumerate accounts.
func (c *AuthClient) Recover(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	status, raw, err := c.do(ctx, http.MethodPost, path, "", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	return nil
}

// UpdatePassword changes the password of the account the token resolves to.
func (c *AuthClient) UpdatePassword(ctx context.Context, token, newPassword string) error {
	status, raw, err := c.do(ctx, http.MethodPut, "/auth/v1/user", token, map[string]string{"password": newPassword})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	return nil
}

// AuthorizeURL is the static federated-login entry point for a provider.
func (c *AuthClient) AuthorizeURL(provider string) string {
	return fmt.Sprintf("%s/auth/v1/authorize?provider=%s", c.baseURL, url.QueryEscape(provider))
}

func (c *AuthClient) Health(ctx context.Context) error {
	status, raw, err := c.do(ctx, http.MethodGet, "/auth/v1/health", "", nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	return nil
}

// do sends one JSON request. The api key always rides along; the bearer
// token is the caller's when given, otherwise requests are key-only.
func (c *AuthClient) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("identity request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read identity response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

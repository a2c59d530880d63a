package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"gallerygate/api/internal/config"
)

// RestClient talks to the hosted table API. Filters use the backend's
// column=eq.value syntax; only equality is needed here.
type RestClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewRestClient(cfg config.BackendConfig) *RestClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RestClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *RestClient) Insert(ctx context.Context, table string, row any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, table, nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	status, raw, err := c.send(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	return nil
}

// Select fetches every row matching the equality filters into dest,
// which must be a pointer to a slice.
func (c *RestClient) Select(ctx context.Context, table string, filters map[string]string, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, filters, nil)
	if err != nil {
		return err
	}

	status, raw, err := c.send(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

func (c *RestClient) Delete(ctx context.Context, table string, filters map[string]string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, table, filters, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	status, raw, err := c.send(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(raw)}
	}
	return nil
}

func (c *RestClient) newRequest(ctx context.Context, method, table string, filters map[string]string, body io.Reader) (*http.Request, error) {
	query := url.Values{}
	if method == http.MethodGet {
		query.Set("select", "*")
	}

	// Stable ordering keeps request URLs deterministic for tests and logs.
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query.Set(k, "eq."+filters[k])
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

func (c *RestClient) send(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("table request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read table response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

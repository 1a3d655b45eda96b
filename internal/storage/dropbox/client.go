// Package dropbox implements port.FileStorage against the Dropbox content
// API. Download failures carrying the API's path/not_found or conflict
// summaries unwrap to the typed domain errors the classifier understands.
package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"casedesk/internal/config"
	"casedesk/internal/domain"
	"casedesk/internal/port"
)

const contentURL = "https://content.dropboxapi.com"

// Client talks to the Dropbox content API.
type Client struct {
	baseURL string
	tokens  *tokenSource
	client  *http.Client
}

// NewClient creates a Dropbox-backed FileStorage implementation.
func NewClient(cfg *config.DropboxConfig) *Client {
	return NewClientWithBaseURL(cfg, contentURL)
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(cfg *config.DropboxConfig, baseURL string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	return &Client{
		baseURL: baseURL,
		tokens:  newTokenSource(cfg, hc),
		client:  hc,
	}
}

// apiArg is the Dropbox-API-Arg payload for content endpoints.
type apiArg struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// fileMetadata is the subset of Dropbox file metadata we read back.
type fileMetadata struct {
	PathDisplay string `json:"path_display"`
	Size        int64  `json:"size"`
}

func (c *Client) Download(ctx context.Context, path string) (*port.DownloadResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	arg, _ := json.Marshal(apiArg{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/files/download", nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dropbox download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("download", path, resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dropbox download read: %w", err)
	}

	resolved := path
	if raw := resp.Header.Get("Dropbox-API-Result"); raw != "" {
		var meta fileMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err == nil && meta.PathDisplay != "" {
			resolved = meta.PathDisplay
		}
	}

	return &port.DownloadResult{Content: content, ResolvedPath: resolved}, nil
}

func (c *Client) Upload(ctx context.Context, path string, content io.Reader, contentType string) (*port.UploadResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	arg, _ := json.Marshal(apiArg{Path: path, Mode: "add"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/files/upload", content)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dropbox upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("upload", path, resp)
	}

	var meta fileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	uploaded := meta.PathDisplay
	if uploaded == "" {
		uploaded = path
	}
	return &port.UploadResult{Path: uploaded, Size: meta.Size}, nil
}

// apiError maps a non-200 Dropbox response to a typed error where the
// error_summary identifies a permanent path condition.
func (c *Client) apiError(op, path string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		ErrorSummary string `json:"error_summary"`
	}
	_ = json.Unmarshal(body, &apiErr)
	summary := apiErr.ErrorSummary
	if summary == "" {
		summary = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusConflict {
		switch {
		case strings.Contains(summary, "not_found"):
			return fmt.Errorf("dropbox %s %s: %s: %w", op, path, summary, domain.ErrPathNotFound)
		case strings.Contains(summary, "malformed_path"):
			return fmt.Errorf("dropbox %s %s: %s: %w", op, path, summary, domain.ErrPathNotFound)
		default:
			return fmt.Errorf("dropbox %s %s: %s: %w", op, path, summary, domain.ErrPathConflict)
		}
	}

	return fmt.Errorf("dropbox %s %s (status %d): %s", op, path, resp.StatusCode, summary)
}

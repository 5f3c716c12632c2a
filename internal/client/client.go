// Package client implements the HTTP side of the snapshot transport used
// by the gbit CLI.
package client

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

	"gbit-go/internal/gbit"
	"gbit-go/internal/model"
)

// Client talks to a gbitd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given API base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// commitResponse is the wire shape of a POST /commit response.
type commitResponse struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// fileJSON is one manifest entry on the wire.
type fileJSON struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// PushResult reports a successful push.
type PushResult struct {
	Hash string
	URL  string
}

// Push sends a full-tree snapshot to the server. Validation failures are
// resolved locally, before any network transmission.
func (c *Client) Push(ctx context.Context, ownerID, repoName, message string, m gbit.Manifest) (*PushResult, error) {
	if ownerID == "" {
		return nil, &gbit.ValidationError{Field: "ownerId", Reason: "must not be empty"}
	}
	if repoName == "" {
		return nil, &gbit.ValidationError{Field: "repoName", Reason: "must not be empty"}
	}
	if len(m) == 0 {
		return nil, &gbit.ValidationError{Field: "files", Reason: "manifest must not be empty"}
	}

	files := make([]fileJSON, len(m))
	for i, e := range m {
		files[i] = fileJSON{Name: e.Path, Content: e.Content}
	}

	body, err := json.Marshal(map[string]any{
		"ownerId":  ownerID,
		"repoName": repoName,
		"message":  message,
		"files":    files,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding commit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/commit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building commit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &gbit.TransportError{Op: "push", Err: err}
	}
	defer resp.Body.Close()

	var cr commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &gbit.TransportError{Op: "push", Err: fmt.Errorf("decoding response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK || !cr.Success {
		if resp.StatusCode == http.StatusBadRequest {
			return nil, &gbit.ValidationError{Field: "request", Reason: cr.Error}
		}
		return nil, &gbit.TransportError{Op: "push",
			Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, cr.Error)}
	}

	return &PushResult{Hash: cr.Hash, URL: cr.URL}, nil
}

// Pull retrieves a repository's complete current snapshot. A missing
// repository yields *NotFoundError; an existing but empty repository
// yields an empty manifest.
func (c *Client) Pull(ctx context.Context, ownerID, repoName string) (gbit.Manifest, error) {
	var files []fileJSON
	err := c.getJSON(ctx, "pull",
		fmt.Sprintf("/repos/%s/%s/clone", url.PathEscape(ownerID), url.PathEscape(repoName)),
		ownerID+"/"+repoName, &files)
	if err != nil {
		return nil, err
	}

	manifest := make(gbit.Manifest, len(files))
	for i, f := range files {
		manifest[i] = gbit.FileEntry{Path: f.Name, Content: f.Content}
	}
	return manifest, nil
}

// ListFiles returns the relative paths of a repository's current snapshot.
func (c *Client) ListFiles(ctx context.Context, ownerID, repoName string) ([]string, error) {
	var paths []string
	err := c.getJSON(ctx, "list files",
		fmt.Sprintf("/repos/%s/%s/files", url.PathEscape(ownerID), url.PathEscape(repoName)),
		ownerID+"/"+repoName, &paths)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ReadFile returns one file's raw content.
func (c *Client) ReadFile(ctx context.Context, ownerID, repoName, relativePath string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/file/%s",
		url.PathEscape(ownerID), url.PathEscape(repoName), relativePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &gbit.TransportError{Op: "read file", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &gbit.NotFoundError{Resource: "file", Key: relativePath}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &gbit.TransportError{Op: "read file",
			Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &gbit.TransportError{Op: "read file", Err: err}
	}
	return string(content), nil
}

// ListRepositories returns the repository summaries owned by ownerID.
func (c *Client) ListRepositories(ctx context.Context, ownerID string) ([]*model.Repository, error) {
	return c.getRepositories(ctx, "list repositories",
		"/repos/"+url.PathEscape(ownerID), ownerID)
}

// Search returns public repositories whose name contains the pattern.
func (c *Client) Search(ctx context.Context, pattern string) ([]*model.Repository, error) {
	return c.getRepositories(ctx, "search",
		"/search?q="+url.QueryEscape(pattern), pattern)
}

// Delete removes a repository. Succeeds even when the repository does not
// exist (tolerant delete).
func (c *Client) Delete(ctx context.Context, ownerID, repoName string) error {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(ownerID), url.PathEscape(repoName))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &gbit.TransportError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &gbit.TransportError{Op: "delete",
			Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	}
	return nil
}

// repoSummaryJSON mirrors the server's repository summary wire shape.
type repoSummaryJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"ownerId"`
	Public      bool      `json:"public"`
	LastMessage string    `json:"lastMessage"`
	LastHash    string    `json:"lastHash"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Client) getRepositories(ctx context.Context, op, path, key string) ([]*model.Repository, error) {
	var summaries []repoSummaryJSON
	if err := c.getJSON(ctx, op, path, key, &summaries); err != nil {
		return nil, err
	}

	repos := make([]*model.Repository, len(summaries))
	for i, s := range summaries {
		repos[i] = &model.Repository{
			ID:          s.ID,
			Name:        s.Name,
			OwnerID:     s.OwnerID,
			Public:      s.Public,
			LastMessage: s.LastMessage,
			LastHash:    s.LastHash,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		}
	}
	return repos, nil
}

// getJSON issues a GET and decodes the JSON response, mapping 404 to
// *NotFoundError and other failures to *TransportError.
func (c *Client) getJSON(ctx context.Context, op, path, key string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &gbit.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &gbit.NotFoundError{Resource: "repository", Key: key}
	}
	if resp.StatusCode != http.StatusOK {
		return &gbit.TransportError{Op: op,
			Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &gbit.TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// Package server exposes the snapshot engine over HTTP+JSON to the CLI and
// the dashboard.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gbit-go/internal/gbit"
	"gbit-go/internal/model"
)

// Handler holds the HTTP handlers for the snapshot API.
type Handler struct {
	service    *gbit.SnapshotService
	maxPayload int64
	publicURL  string // dashboard base used in commit responses
	logger     gbit.Logger
}

// NewHandler creates a Handler backed by the given service.
func NewHandler(service *gbit.SnapshotService, maxPayload int64, publicURL string, logger gbit.Logger) *Handler {
	return &Handler{
		service:    service,
		maxPayload: maxPayload,
		publicURL:  publicURL,
		logger:     logger,
	}
}

// commitRequest is the wire shape of POST /commit.
type commitRequest struct {
	OwnerID  string             `json:"ownerId"`
	RepoName string             `json:"repoName"`
	Message  string             `json:"message"`
	Files    []manifestFileJSON `json:"files"`
}

// manifestFileJSON is one manifest entry on the wire.
type manifestFileJSON struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// repoSummaryJSON is the wire shape of a repository summary.
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

func toRepoSummary(r *model.Repository) repoSummaryJSON {
	return repoSummaryJSON{
		ID:          r.ID,
		Name:        r.Name,
		OwnerID:     r.OwnerID,
		Public:      r.Public,
		LastMessage: r.LastMessage,
		LastHash:    r.LastHash,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Commit handles POST /commit. The payload ceiling is enforced before any
// store work begins.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPayload)

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("payload exceeds %d bytes", h.maxPayload))
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	manifest := make(gbit.Manifest, len(req.Files))
	for i, f := range req.Files {
		manifest[i] = gbit.FileEntry{Path: f.Name, Content: f.Content}
	}

	hash, err := h.service.Commit(r.Context(), req.OwnerID, req.RepoName, req.Message, manifest)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"hash":    hash,
		"url":     fmt.Sprintf("%s/repository/%s", h.publicURL, req.RepoName),
	})
}

// ListRepositories handles GET /repos/{owner}.
func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.service.ListRepositories(r.Context(), r.PathValue("owner"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	summaries := make([]repoSummaryJSON, len(repos))
	for i, repo := range repos {
		summaries[i] = toRepoSummary(repo)
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// ListFiles handles GET /repos/{owner}/{repo}/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	paths, err := h.service.ListFiles(r.Context(), r.PathValue("owner"), r.PathValue("repo"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	h.writeJSON(w, http.StatusOK, paths)
}

// ReadFile handles GET /repos/{owner}/{repo}/file/{path...}.
// The response is the raw file content as text.
func (h *Handler) ReadFile(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.ReadFile(r.Context(),
		r.PathValue("owner"), r.PathValue("repo"), r.PathValue("path"))
	if err != nil {
		var nf *gbit.NotFoundError
		if errors.As(err, &nf) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		var ve *gbit.ValidationError
		if errors.As(err, &ve) {
			http.Error(w, ve.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("read file failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

// Clone handles GET /repos/{owner}/{repo}/clone. The response covers the
// full current snapshot; an existing repository with no files yields an
// empty array, a missing repository a 404.
func (h *Handler) Clone(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.service.Clone(r.Context(), r.PathValue("owner"), r.PathValue("repo"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	files := make([]manifestFileJSON, len(manifest))
	for i, e := range manifest {
		files[i] = manifestFileJSON{Name: e.Path, Content: e.Content}
	}
	h.writeJSON(w, http.StatusOK, files)
}

// Delete handles DELETE /repos/{owner}/{repo}. Tolerant: deleting a
// repository that does not exist is still a success.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("owner"), r.PathValue("repo")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Search handles GET /search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	repos, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	summaries := make([]repoSummaryJSON, len(repos))
	for i, repo := range repos {
		summaries[i] = toRepoSummary(repo)
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "gbitd"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var ve *gbit.ValidationError
	if errors.As(err, &ve) {
		h.writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	var nf *gbit.NotFoundError
	if errors.As(err, &nf) {
		h.writeError(w, http.StatusNotFound, nf.Error())
		return
	}

	h.logger.Error("request failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

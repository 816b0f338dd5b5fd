package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onetapdev/plughub/internal/fetch"
	"github.com/onetapdev/plughub/internal/installer"
	"github.com/onetapdev/plughub/internal/manifest"
	"github.com/onetapdev/plughub/internal/registry"
	slogctx "github.com/veqryn/slog-context"
)

type installRequest struct {
	GitURL string `json:"git_url"`
	Ref    string `json:"ref,omitempty"`
	Subdir string `json:"subdir,omitempty"`
}

type installResponse struct {
	PluginID string `json:"plugin_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Path     string `json:"path"`
	Status   string `json:"status"`
}

type listResponse struct {
	Items []registry.InstalledPlugin `json:"items"`
	Total int                        `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListInstalled(w http.ResponseWriter, r *http.Request) {
	items := s.registry.List()
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (s *Server) handleInstallFromGit(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.GitURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "git_url is required"})
		return
	}

	p, err := s.installer.InstallFromGit(r.Context(), installer.Request{
		GitURL: req.GitURL,
		Ref:    req.Ref,
		Subdir: req.Subdir,
	})
	if err != nil {
		status := statusFor(err)
		slogctx.FromCtx(r.Context()).Warn("install failed",
			"git_url", req.GitURL, "status", status, "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, installResponse{
		PluginID: p.PluginID,
		Name:     p.Name,
		Version:  p.Version,
		Path:     p.Path,
		Status:   "installed",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// statusFor maps install failures onto the HTTP surface: problems with
// the request or the fetched source are the caller's (400), deployment
// configuration and internal inconsistencies are ours (500).
func statusFor(err error) int {
	switch {
	case errors.Is(err, manifest.ErrYAMLUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, installer.ErrInconsistent):
		return http.StatusInternalServerError
	case errors.Is(err, installer.ErrInvalidIdentity):
		return http.StatusBadRequest
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return http.StatusBadRequest
	}
	var notFound *manifest.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusBadRequest
	}
	var parseErr *manifest.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

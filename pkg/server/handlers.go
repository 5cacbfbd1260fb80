// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"encoding/json"
	"net/http"

	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

type fileResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Size    int64  `json:"size"`
}

func toFileResponse(f *remote.File) fileResponse {
	return fileResponse{Path: f.Path, Content: string(f.Content), SHA: f.VersionTag, Size: f.Size}
}

type listResponse struct {
	Dir     string         `json:"dir"`
	Entries remote.Listing `json:"entries"`
}

type saveRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type deleteRequest struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type newDocumentRequest struct {
	Name string `json:"name"`
}

type providersResponse struct {
	Providers  []string `json:"providers"`
	StyleHints []string `json:"style_hints"`
}

type rewriteFileRequest struct {
	Path     string `json:"path"`
	Provider string `json:"provider"`
	Style    string `json:"style"`
}

type rewriteResponse struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Style     string `json:"style"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Path      string `json:"path,omitempty"`
	SHA       string `json:"sha,omitempty"`
}

func toRewriteResponse(r *rewrite.Result) rewriteResponse {
	return rewriteResponse{Text: r.Text, Provider: r.Provider, Style: r.Style, ElapsedMs: r.Elapsed.Milliseconds()}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return errors.Errorf("invalid JSON body: %w", errBadRequest)
	}
	return nil
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	listing, err := s.content.ListFiles(r.Context(), dir)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Dir: dir, Entries: listing})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.content.GetFile(r.Context(), r.PathValue("path"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(file))
}

func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	file, err := s.content.SaveFile(r.Context(), req.Path, req.Content, req.SHA)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(file))
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.content.DeleteFile(r.Context(), req.Path, req.SHA); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNewDocument(w http.ResponseWriter, r *http.Request) {
	var req newDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	file, err := s.content.NewDocument(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFileResponse(file))
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providersResponse{
		Providers:  s.content.ListProviders(),
		StyleHints: s.content.StyleHints(),
	})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewrite.Request
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.content.Rewrite(r.Context(), req.ProviderName, req.StyleHint, req.SourceText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRewriteResponse(result))
}

func (s *Server) handleRewriteFile(w http.ResponseWriter, r *http.Request) {
	var req rewriteFileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fr, err := s.content.RewriteFile(r.Context(), req.Path, req.Provider, req.Style)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := toRewriteResponse(fr.Result)
	resp.Path = fr.Path
	resp.SHA = fr.VersionTag
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": len(s.content.ListProviders()),
	})
}

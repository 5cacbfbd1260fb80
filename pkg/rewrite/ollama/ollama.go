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

// Package ollama rewrites text with a self-hosted Ollama server. The base URL
// plays the role of the credential: without one the provider is absent.
package ollama

import (
	"context"
	"net/http"
	"strings"

	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

const (
	Kind         = "ollama"
	DefaultModel = "llama3.2"
)

var (
	_ rewrite.Provider    = (*Provider)(nil)
	_ rewrite.ModelLister = (*Provider)(nil)
	_ rewrite.Pinger      = (*Provider)(nil)
)

func init() {
	rewrite.Register(Kind, func(ctx context.Context, cfg config.ProviderConfig) (rewrite.Provider, error) {
		return New(cfg)
	})
}

// 🦙 Provider posts to {base}/api/chat with streaming off.
type Provider struct {
	name    string
	model   string
	baseURL string
	client  *http.Client
}

// 🏭 New creates an ollama provider.
func New(cfg config.ProviderConfig) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Errorf("%s: %w", cfg.Name, rewrite.ErrNotConfigured)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	p := &Provider{
		name:    cfg.Name,
		model:   cfg.Model,
		baseURL: base,
		client:  rewrite.NewHTTPClient(cfg.Timeout.Duration),
	}
	if p.name == "" {
		p.name = Kind
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	return p, nil
}

func (p *Provider) Name() string {
	return p.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// ✍️ Rewrite sends one non-streaming chat request.
func (p *Provider) Rewrite(ctx context.Context, sourceText, styleHint string) (string, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: rewrite.Instructions(styleHint, sourceText)},
			{Role: "user", Content: sourceText},
		},
		Stream: false,
	}

	var resp chatResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		URL:      p.baseURL + "/api/chat",
		Body:     body,
	}, &resp)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK, errors.New("empty message content"))
	}
	return text, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// 📋 ListModels returns the locally pulled models.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var resp tagsResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		Method:   http.MethodGet,
		URL:      p.baseURL + "/api/tags",
	}, &resp)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Ping checks that the server answers and has the configured model pulled.
func (p *Provider) Ping(ctx context.Context) error {
	models, err := p.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		if m == p.model || strings.TrimSuffix(m, ":latest") == p.model {
			return nil
		}
	}
	return rewrite.NewFailure(p.name, rewrite.ReasonProviderUnavailable, http.StatusOK,
		errors.Errorf("model %q is not pulled", p.model))
}

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

// Package openai rewrites text through an OpenAI compatible chat completions
// endpoint. Local servers such as llama.cpp speak the same protocol.
package openai

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

const (
	Kind           = "openai"
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
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

// 🤖 Provider posts to {base}/chat/completions.
type Provider struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// 🏭 New creates an openai provider. Either an API key or a custom base URL
// counts as configured, so keyless local servers work.
func New(cfg config.ProviderConfig) (*Provider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.Errorf("%s: %w", cfg.Name, rewrite.ErrNotConfigured)
	}
	p := &Provider{
		name:    cfg.Name,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  rewrite.NewHTTPClient(cfg.Timeout.Duration),
	}
	if p.name == "" {
		p.name = Kind
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	return p, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) header() http.Header {
	h := http.Header{}
	if p.apiKey != "" {
		h.Set("Authorization", "Bearer "+p.apiKey)
	}
	return h
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// ✍️ Rewrite sends one chat completion with a system and a user message.
func (p *Provider) Rewrite(ctx context.Context, sourceText, styleHint string) (string, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: rewrite.Instructions(styleHint, sourceText)},
			{Role: "user", Content: sourceText},
		},
	}

	var resp chatResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		URL:      p.baseURL + "/chat/completions",
		Header:   p.header(),
		Body:     body,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK, errors.New("no choices in response"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK,
			errors.Errorf("empty message (finish reason %q)", resp.Choices[0].FinishReason))
	}
	return text, nil
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// 📋 ListModels returns the model ids served by the endpoint.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var resp modelsResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		Method:   http.MethodGet,
		URL:      p.baseURL + "/models",
		Header:   p.header(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping lists models.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	return err
}

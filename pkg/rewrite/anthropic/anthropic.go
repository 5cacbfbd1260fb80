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

// Package anthropic rewrites text with the Anthropic Messages API.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

const (
	Kind           = "anthropic"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultBaseURL = "https://api.anthropic.com"

	apiVersion = "2023-06-01"
	maxTokens  = 8192
)

var _ rewrite.Provider = (*Provider)(nil)

func init() {
	factory := func(ctx context.Context, cfg config.ProviderConfig) (rewrite.Provider, error) {
		return New(cfg)
	}
	rewrite.Register(Kind, factory)
	rewrite.Register("claude", factory)
}

// 🧠 Provider connects to /v1/messages.
type Provider struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// 🏭 New creates an anthropic provider. A missing key is ErrNotConfigured.
func New(cfg config.ProviderConfig) (*Provider, error) {
	if cfg.APIKey == "" {
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

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// ✍️ Rewrite sends one messages request and joins the text blocks.
func (p *Provider) Rewrite(ctx context.Context, sourceText, styleHint string) (string, error) {
	body := messagesRequest{
		Model:     p.model,
		System:    rewrite.Instructions(styleHint, sourceText),
		Messages:  []message{{Role: "user", Content: sourceText}},
		MaxTokens: maxTokens,
	}

	var resp messagesResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		URL:      p.baseURL + "/v1/messages",
		Header: http.Header{
			"X-Api-Key":         {p.apiKey},
			"Anthropic-Version": {apiVersion},
		},
		Body: body,
	}, &resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK,
			errors.Errorf("no text content (stop reason %q)", resp.StopReason))
	}
	return text, nil
}

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

// Package gemini rewrites text with Google's Generative Language API.
package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

const (
	Kind           = "gemini"
	DefaultModel   = "gemini-1.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	maxModelPages = 10
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

// 💎 Provider talks to the v1beta generateContent endpoint.
type Provider struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// 🏭 New creates a gemini provider. A missing key is ErrNotConfigured.
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

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (p *Provider) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", p.apiKey)
	return p.baseURL + "/v1beta/" + path + "?" + query.Encode()
}

// ✍️ Rewrite sends one generateContent request.
func (p *Provider) Rewrite(ctx context.Context, sourceText, styleHint string) (string, error) {
	body := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: rewrite.Instructions(styleHint, sourceText)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: sourceText}}}},
	}

	var resp generateResponse
	err := rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		URL:      p.endpoint("models/"+url.PathEscape(p.model)+":generateContent", nil),
		Body:     body,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp.PromptFeedback.BlockReason != "" {
			reason += ", blocked: " + resp.PromptFeedback.BlockReason
		}
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK, errors.New(reason))
	}

	var sb strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", rewrite.NewFailure(p.name, rewrite.ReasonInvalidResponse, http.StatusOK,
			errors.Errorf("empty candidate (finish reason %q)", resp.Candidates[0].FinishReason))
	}
	return text, nil
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

// 📋 ListModels returns the models that support generateContent, without the
// "models/" prefix.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	token := ""
	for page := 0; page < maxModelPages; page++ {
		q := url.Values{}
		if token != "" {
			q.Set("pageToken", token)
		}

		var resp listModelsResponse
		err := rewrite.Do(ctx, p.client, rewrite.Call{
			Provider: p.name,
			Method:   http.MethodGet,
			URL:      p.endpoint("models", q),
		}, &resp)
		if err != nil {
			return nil, err
		}

		for _, m := range resp.Models {
			for _, method := range m.SupportedGenerationMethods {
				if method == "generateContent" {
					names = append(names, strings.TrimPrefix(m.Name, "models/"))
					break
				}
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}
	return names, nil
}

// Ping fetches the configured model's metadata.
func (p *Provider) Ping(ctx context.Context) error {
	return rewrite.Do(ctx, p.client, rewrite.Call{
		Provider: p.name,
		Method:   http.MethodGet,
		URL:      p.endpoint("models/"+url.PathEscape(p.model), nil),
	}, nil)
}

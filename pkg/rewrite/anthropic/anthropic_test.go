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

package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

func TestRewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-haiku-latest", req.Model)
		assert.Contains(t, req.System, "concise")
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Short."},{"type":"tool_use"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{
		Name:    "claude",
		APIKey:  "sk-ant",
		Model:   "claude-3-5-haiku-latest",
		BaseURL: srv.URL,
		Timeout: config.Duration{Duration: 5 * time.Second},
	})
	require.NoError(t, err)
	assert.Equal(t, "claude", p.Name())

	got, err := p.Rewrite(context.Background(), "A long sentence.", "concise")
	require.NoError(t, err)
	assert.Equal(t, "Short.", got)
}

func TestRewriteFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason rewrite.Reason
	}{
		{name: "no_text_blocks", status: http.StatusOK, body: `{"content":[],"stop_reason":"max_tokens"}`, reason: rewrite.ReasonInvalidResponse},
		{name: "bad_key", status: http.StatusUnauthorized, body: `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, reason: rewrite.ReasonProviderUnavailable},
		{name: "rate_limited", status: http.StatusTooManyRequests, body: `{"type":"error","error":{"type":"rate_limit_error"}}`, reason: rewrite.ReasonQuotaExceeded},
		{name: "overloaded", status: 529, body: `{"type":"error","error":{"type":"overloaded_error"}}`, reason: rewrite.ReasonProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := New(config.ProviderConfig{Name: "anthropic", APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = p.Rewrite(context.Background(), "x", "formal")
			reason, ok := rewrite.ReasonOf(err)
			require.True(t, ok, "error should be a failure: %v", err)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestMissingKeyIsNotConfigured(t *testing.T) {
	_, err := New(config.ProviderConfig{Name: "anthropic"})
	assert.True(t, errors.Is(err, rewrite.ErrNotConfigured))
}

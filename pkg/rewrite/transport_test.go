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

package rewrite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoClassifiesResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason Reason
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid x-api-key"}}`, reason: ReasonProviderUnavailable},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"denied"}`, reason: ReasonProviderUnavailable},
		{name: "too_many_requests", status: http.StatusTooManyRequests, body: `{}`, reason: ReasonQuotaExceeded},
		{name: "google_quota", status: http.StatusBadRequest, body: `{"error":{"status":"RESOURCE_EXHAUSTED","message":"quota"}}`, reason: ReasonQuotaExceeded},
		{name: "openai_quota", status: http.StatusForbidden, body: `{"error":{"code":"insufficient_quota"}}`, reason: ReasonQuotaExceeded},
		{name: "server_error", status: http.StatusInternalServerError, body: "internal error", reason: ReasonProviderUnavailable},
		{name: "overloaded", status: 529, body: `{"type":"error","error":{"type":"overloaded_error"}}`, reason: ReasonProviderUnavailable},
		{name: "gateway_timeout", status: http.StatusGatewayTimeout, body: "", reason: ReasonTimeout},
		{name: "empty_body", status: http.StatusOK, body: "", reason: ReasonInvalidResponse},
		{name: "garbage_body", status: http.StatusOK, body: "<html>", reason: ReasonInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out map[string]any
			err := Do(context.Background(), NewHTTPClient(5*time.Second), Call{Provider: "p", URL: srv.URL, Body: map[string]string{"a": "b"}}, &out)
			require.Error(t, err)

			reason, ok := ReasonOf(err)
			require.True(t, ok, "error should be a failure: %v", err)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestDoSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hi"}`))
	}))
	defer srv.Close()

	var out struct {
		Text string `json:"text"`
	}
	err := Do(context.Background(), NewHTTPClient(time.Second), Call{
		Provider: "p",
		URL:      srv.URL,
		Header:   http.Header{"X-Api-Key": {"secret"}},
		Body:     map[string]string{"q": "x"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Text)
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := Do(context.Background(), NewHTTPClient(50*time.Millisecond), Call{Provider: "slow", URL: srv.URL}, nil)
	reason, ok := ReasonOf(err)
	require.True(t, ok, "error should be a failure: %v", err)
	assert.Equal(t, ReasonTimeout, reason)
}

func TestDoUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := Do(context.Background(), NewHTTPClient(time.Second), Call{Provider: "gone", URL: url}, nil)
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonProviderUnavailable, reason)
}

func TestInstructions(t *testing.T) {
	src := "---\ntitle: x\n---\n# Title\n\n```sh\nls\n```\n\nSee [docs](https://go.dev).\n"

	got := Instructions("formal", src)
	assert.Contains(t, got, "in a formal style")
	assert.Contains(t, got, "front matter")
	assert.Contains(t, got, "heading (level 1): Title")
	assert.Contains(t, got, "1 fenced code block(s) (sh)")
	assert.Contains(t, got, "link target: https://go.dev")

	plain := Instructions("casual", "hello there")
	assert.False(t, strings.Contains(plain, "Preserve"), "plain text has nothing to preserve")
}

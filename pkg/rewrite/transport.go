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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultTimeout bounds a provider exchange when the config sets none.
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 8 << 20
)

// quota markers used by Google (RESOURCE_EXHAUSTED) and OpenAI (insufficient_quota)
var quotaMarkers = []string{"resource_exhausted", "insufficient_quota", "quota exceeded", "rate_limit_exceeded"}

// NewHTTPClient returns a client whose Timeout bounds the whole exchange.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// 📮 Call is one JSON request to a provider.
type Call struct {
	Provider string
	Method   string
	URL      string
	Header   http.Header
	Body     any
}

// 📡 Do sends call and decodes a 2xx JSON response into out. Every failure
// comes back as a *Failure.
func Do(ctx context.Context, client *http.Client, call Call, out any) error {
	logger := zerolog.Ctx(ctx)

	method := call.Method
	if method == "" {
		method = http.MethodPost
	}

	var reqBody io.Reader
	if call.Body != nil {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return NewFailure(call.Provider, ReasonProviderUnavailable, 0, errors.Errorf("marshal request: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, call.URL, reqBody)
	if err != nil {
		return NewFailure(call.Provider, ReasonProviderUnavailable, 0, errors.Errorf("create request: %w", err))
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("provider", call.Provider).Dur("elapsed", time.Since(start)).Msg("provider request failed")
		return Normalize(call.Provider, errors.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if IsTimeout(err) {
			return NewFailure(call.Provider, ReasonTimeout, resp.StatusCode, errors.Errorf("reading response: %w", err))
		}
		return NewFailure(call.Provider, ReasonInvalidResponse, resp.StatusCode, errors.Errorf("reading response: %w", err))
	}

	logger.Debug().
		Str("provider", call.Provider).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("provider responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FailureFromStatus(call.Provider, resp.StatusCode, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return NewFailure(call.Provider, ReasonInvalidResponse, resp.StatusCode, errors.New("empty response body"))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return NewFailure(call.Provider, ReasonInvalidResponse, resp.StatusCode, errors.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// FailureFromStatus classifies a non-2xx provider response.
func FailureFromStatus(provider string, status int, body []byte) *Failure {
	detail := errors.New(errorMessage(body, status))

	lower := strings.ToLower(string(body))
	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return NewFailure(provider, ReasonQuotaExceeded, status, detail)
		}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return NewFailure(provider, ReasonQuotaExceeded, status, detail)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewFailure(provider, ReasonTimeout, status, detail)
	default:
		// 401/403 bad credential, other 4xx rejected request, 5xx and 529 overloaded
		return NewFailure(provider, ReasonProviderUnavailable, status, detail)
	}
}

// errorMessage pulls a human readable message out of the common error
// envelopes ({"error":{"message":..}} and {"error":".."}), falling back to a
// short prefix of the body.
func errorMessage(body []byte, status int) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return http.StatusText(status)
	}
	return text
}

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

	"github.com/rs/zerolog/hlog"
	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeStoreUnauthorized = "store_unauthorized"
	CodeStoreRateLimited  = "store_rate_limited"
	CodeStoreUnreachable  = "store_unreachable"
	CodeStoreError        = "store_error"
	CodeTooLarge          = "request_too_large"
	CodeInternal          = "internal"
)

const conflictMessage = "the file changed since you loaded it; reload it to get the current version and reapply your edit"

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Provider string `json:"provider,omitempty"`
}

// 🚥 classify maps a domain error onto an HTTP status and error code.
func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, CodeTooLarge
	case errors.Is(err, remote.ErrInvalidPath),
		errors.Is(err, remote.ErrMissingVersion),
		errors.Is(err, rewrite.ErrInvalidRequest),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, remote.ErrConflict):
		return http.StatusConflict, CodeConflict
	}

	if kind, ok := remote.KindOf(err); ok {
		switch kind {
		case remote.KindUnauthorized:
			return http.StatusBadGateway, CodeStoreUnauthorized
		case remote.KindRateLimited:
			return http.StatusTooManyRequests, CodeStoreRateLimited
		case remote.KindUnreachable:
			return http.StatusGatewayTimeout, CodeStoreUnreachable
		default:
			return http.StatusBadGateway, CodeStoreError
		}
	}

	if reason, ok := rewrite.ReasonOf(err); ok {
		switch reason {
		case rewrite.ReasonQuotaExceeded:
			return http.StatusTooManyRequests, string(reason)
		case rewrite.ReasonInvalidResponse:
			return http.StatusBadGateway, string(reason)
		case rewrite.ReasonTimeout:
			return http.StatusGatewayTimeout, string(reason)
		default:
			return http.StatusServiceUnavailable, string(reason)
		}
	}

	return http.StatusInternalServerError, CodeInternal
}

var errBadRequest = errors.Base("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	resp := errorResponse{Error: err.Error(), Code: code}
	switch code {
	case CodeConflict:
		resp.Error = conflictMessage
	case CodeInternal:
		resp.Error = "internal error"
	}

	var failure *rewrite.Failure
	if errors.As(err, &failure) {
		resp.Provider = failure.Provider
	}

	event := hlog.FromRequest(r).Debug()
	if status >= http.StatusInternalServerError || code == CodeStoreUnauthorized {
		event = hlog.FromRequest(r).Warn()
	}
	event.Err(err).Int("status", status).Str("code", code).Msg("request failed")

	writeJSON(w, status, resp)
}

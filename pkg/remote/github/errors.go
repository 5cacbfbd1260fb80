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

package github

import (
	"net/http"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// classify maps a go-github error onto the remote error taxonomy.
func classify(op, path string, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &remote.TransportError{Kind: remote.KindRateLimited, StatusCode: statusOf(resp, err), Op: op, Path: path, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &remote.TransportError{Kind: remote.KindRateLimited, StatusCode: statusOf(resp, err), Op: op, Path: path, Err: err}
	}

	status := statusOf(resp, err)
	switch {
	case status == http.StatusNotFound:
		return &remote.NotFoundError{Path: path}
	case status == http.StatusUnauthorized:
		return &remote.TransportError{Kind: remote.KindUnauthorized, StatusCode: status, Op: op, Path: path, Err: err}
	case status == http.StatusForbidden && isRateLimitMessage(messageOf(err)):
		return &remote.TransportError{Kind: remote.KindRateLimited, StatusCode: status, Op: op, Path: path, Err: err}
	case status == http.StatusForbidden:
		return &remote.TransportError{Kind: remote.KindUnauthorized, StatusCode: status, Op: op, Path: path, Err: err}
	case status == http.StatusTooManyRequests:
		return &remote.TransportError{Kind: remote.KindRateLimited, StatusCode: status, Op: op, Path: path, Err: err}
	case status == 0 || status >= 500:
		return &remote.TransportError{Kind: remote.KindUnreachable, StatusCode: status, Op: op, Path: path, Err: err}
	default:
		return &remote.TransportError{Kind: remote.KindOther, StatusCode: status, Op: op, Path: path, Err: err}
	}
}

// classifyWrite is classify plus the conditional-write outcomes. GitHub answers
// a stale sha with 409 and a missing sha for an existing file with 422.
func classifyWrite(op, path, expected string, resp *github.Response, err error) error {
	status := statusOf(resp, err)
	switch {
	case status == http.StatusConflict:
		return &remote.ConflictError{Path: path, Expected: expected}
	case status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(messageOf(err)), "sha"):
		return &remote.ConflictError{Path: path, Expected: expected}
	}
	return classify(op, path, resp, err)
}

func statusOf(resp *github.Response, err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return 0
}

func messageOf(err error) string {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Message
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Message
	}
	return err.Error()
}

func isRateLimitMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "abuse detection")
}

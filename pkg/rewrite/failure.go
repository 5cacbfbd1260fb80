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
	"fmt"
	"net"

	"gitlab.com/tozd/go/errors"
)

// Reason is why a rewrite failed.
type Reason string

const (
	ReasonProviderUnavailable Reason = "provider_unavailable"
	ReasonQuotaExceeded       Reason = "quota_exceeded"
	ReasonInvalidResponse     Reason = "invalid_response"
	ReasonTimeout             Reason = "timeout"
)

var (
	ErrProviderUnavailable = errors.Base("provider unavailable")
	ErrQuotaExceeded       = errors.Base("provider quota exceeded")
	ErrInvalidResponse     = errors.Base("invalid provider response")
	ErrTimeout             = errors.Base("provider timed out")

	// ErrInvalidRequest is a local validation failure; no provider was called.
	ErrInvalidRequest = errors.Base("invalid rewrite request")

	// ErrNotConfigured is returned by a Factory when the provider has no
	// credential. The registry leaves such providers out.
	ErrNotConfigured = errors.Base("provider not configured")
)

// Sentinel returns the base error matching the reason.
func (r Reason) Sentinel() error {
	switch r {
	case ReasonQuotaExceeded:
		return ErrQuotaExceeded
	case ReasonInvalidResponse:
		return ErrInvalidResponse
	case ReasonTimeout:
		return ErrTimeout
	default:
		return ErrProviderUnavailable
	}
}

// ❌ Failure is the uniform error returned for any failed rewrite.
// StatusCode is zero when no HTTP response was received.
type Failure struct {
	Reason     Reason
	Provider   string
	StatusCode int
	Err        error
}

// NewFailure builds a Failure, wrapping err when given.
func NewFailure(provider string, reason Reason, status int, err error) *Failure {
	return &Failure{Reason: reason, Provider: provider, StatusCode: status, Err: err}
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("rewrite with %s: %s", f.Provider, f.Reason)
	if f.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", f.StatusCode)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Is(target error) bool {
	return target == f.Reason.Sentinel()
}

// ReasonOf extracts the failure reason from err.
func ReasonOf(err error) (Reason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}

// 🧭 Normalize converts any provider error into a *Failure. Failures pass
// through unchanged, deadlines become timeouts, anything else means the
// provider could not serve the request.
func Normalize(provider string, err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		if f.Provider == "" {
			f.Provider = provider
		}
		return f
	}
	if IsTimeout(err) {
		return NewFailure(provider, ReasonTimeout, 0, err)
	}
	return NewFailure(provider, ReasonProviderUnavailable, 0, err)
}

// IsTimeout reports whether err is a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

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

package remote

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound is returned when a path does not exist on the remote.
	ErrNotFound = errors.Base("not found")

	// ErrConflict is returned when a conditional write or delete was rejected
	// because the remote version no longer matches the caller's base version.
	// It is always recoverable: re-read the file to obtain the current
	// version tag and resubmit.
	ErrConflict = errors.Base("version conflict")

	// ErrInvalidPath is a local validation failure; no remote call was made.
	ErrInvalidPath = errors.Base("invalid path")

	// ErrMissingVersion is returned when an operation requires a version tag
	// and none was supplied.
	ErrMissingVersion = errors.Base("version tag is required")
)

// ⚔️ ConflictError carries the details of a rejected conditional write.
type ConflictError struct {
	Path     string
	Expected string
}

func (e *ConflictError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("version conflict for %s: file already exists", e.Path)
	}
	return fmt.Sprintf("version conflict for %s: base version %s is stale", e.Path, e.Expected)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFoundError names the path that was missing.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportKind classifies remote failures that are neither NotFound nor Conflict.
type TransportKind int

const (
	KindOther TransportKind = iota
	KindUnauthorized
	KindRateLimited
	KindUnreachable
)

func (k TransportKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// 🌐 TransportError is any network or API failure talking to the remote store.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Kind       TransportKind
	StatusCode int
	Op         string
	Path       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("remote %s %s: %s", e.Op, e.Path, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf returns the transport kind of err, and false if err is not a TransportError.
func KindOf(err error) (TransportKind, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return KindOther, false
}

// IsUnauthorized reports whether err means the store credential was rejected.
// Callers should prompt for reconfiguration rather than report a generic failure.
func IsUnauthorized(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindUnauthorized
}

// IsRateLimited reports whether err is a remote rate limit.
func IsRateLimited(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindRateLimited
}

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

// Package store turns file-edit intents into conditional remote writes.
//
// The store holds no locks and no cache. The remote compare-and-swap is the
// only concurrency control: of two writers that start from the same version
// tag exactly one succeeds and the other gets remote.ErrConflict.
package store

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/metrics"
	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// 🗄️ Store is the versioned file store.
type Store struct {
	client remote.Client
}

// 🏭 New wraps a remote client.
func New(client remote.Client) *Store {
	return &Store{client: client}
}

// 📄 ReadFile returns the file with its current version tag.
func (s *Store) ReadFile(ctx context.Context, p string) (*remote.File, error) {
	p, err := NormalizePath(p)
	if err != nil {
		record("read", err)
		return nil, err
	}

	file, err := s.client.Get(ctx, p)
	record("read", err)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", p).Msg("read failed")
		return nil, err
	}
	return file, nil
}

// 📂 ListFiles lists a directory. Empty, "/" and "." mean the repository root.
func (s *Store) ListFiles(ctx context.Context, dir string) (remote.Listing, error) {
	dir, err := NormalizeDir(dir)
	if err != nil {
		record("list", err)
		return nil, err
	}

	listing, err := s.client.List(ctx, dir)
	record("list", err)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("list failed")
		return nil, err
	}
	return listing, nil
}

// 📝 WriteFile writes content conditionally.
//
// With a known version tag the write only succeeds if the remote still holds
// that version. Without one the current tag is resolved first: an existing
// file is overwritten from the version just read, a missing file is created.
// Either way the tag goes to the remote unchanged.
func (s *Store) WriteFile(ctx context.Context, p string, content []byte, knownVersionTag string) (*remote.File, error) {
	logger := zerolog.Ctx(ctx)

	p, err := NormalizePath(p)
	if err != nil {
		record("write", err)
		return nil, err
	}

	expected := knownVersionTag
	if expected == "" {
		current, err := s.client.Get(ctx, p)
		switch {
		case err == nil:
			expected = current.VersionTag
			logger.Debug().Str("path", p).Str("sha", expected).Msg("resolved current version")
		case errors.Is(err, remote.ErrNotFound):
			logger.Debug().Str("path", p).Msg("no prior version, creating")
		default:
			record("write", err)
			return nil, errors.Errorf("resolving version of %s: %w", p, err)
		}
	}

	file, err := s.client.Put(ctx, p, content, expected)
	record("write", err)
	if err != nil {
		logger.Debug().Err(err).Str("path", p).Str("expected_sha", expected).Msg("write failed")
		return nil, err
	}

	logger.Info().Str("path", p).Str("sha", file.VersionTag).Msg("file written")
	return file, nil
}

// CreateFile writes content only if nothing exists at p yet. An existing
// file is remote.ErrConflict.
func (s *Store) CreateFile(ctx context.Context, p string, content []byte) (*remote.File, error) {
	p, err := NormalizePath(p)
	if err != nil {
		record("create", err)
		return nil, err
	}

	file, err := s.client.Put(ctx, p, content, "")
	record("create", err)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", p).Msg("create failed")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("path", p).Str("sha", file.VersionTag).Msg("file created")
	return file, nil
}

// 🗑️ DeleteFile removes a file if it is still at knownVersionTag.
func (s *Store) DeleteFile(ctx context.Context, p string, knownVersionTag string) error {
	p, err := NormalizePath(p)
	if err != nil {
		record("delete", err)
		return err
	}
	if knownVersionTag == "" {
		err := errors.Errorf("deleting %s: %w", p, remote.ErrMissingVersion)
		record("delete", err)
		return err
	}

	err = s.client.Delete(ctx, p, knownVersionTag)
	record("delete", err)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", p).Msg("delete failed")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("path", p).Msg("file deleted")
	return nil
}

func record(op string, err error) {
	metrics.StoreOperations.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, remote.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, remote.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, remote.ErrInvalidPath), errors.Is(err, remote.ErrMissingVersion):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

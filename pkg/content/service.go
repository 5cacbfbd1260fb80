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

package content

import (
	"context"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"github.com/walteh/blogcreator/pkg/store"
	"gitlab.com/tozd/go/errors"
)

const documentExt = ".md"

// 📚 Service is the inbound API over documents and rewrites. It holds no
// state of its own beyond the store, the dispatcher and the listing filter.
type Service struct {
	store      *store.Store
	dispatcher *rewrite.Dispatcher
	include    []string
}

// Option customizes a Service.
type Option func(*Service)

// WithInclude sets the glob patterns that decide which files ListFiles shows.
func WithInclude(patterns ...string) Option {
	return func(s *Service) {
		s.include = patterns
	}
}

// 🏭 New creates a content service.
func New(st *store.Store, dispatcher *rewrite.Dispatcher, opts ...Option) (*Service, error) {
	s := &Service{
		store:      st,
		dispatcher: dispatcher,
		include:    config.DefaultInclude,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = rewrite.NewDispatcher(nil, config.DefaultStyleHints)
	}
	for _, pattern := range s.include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid include pattern %q", pattern)
		}
	}
	return s, nil
}

// 📂 ListFiles returns the directories and matching documents under dir,
// directories first, each group sorted by name.
func (s *Service) ListFiles(ctx context.Context, dir string) (remote.Listing, error) {
	listing, err := s.store.ListFiles(ctx, dir)
	if err != nil {
		return nil, err
	}

	out := make(remote.Listing, 0, len(listing))
	for _, entry := range listing {
		if entry.IsDir() || s.included(ctx, entry.Path) {
			out = append(out, entry)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir() != out[j].IsDir() {
			return out[i].IsDir()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Service) included(ctx context.Context, p string) bool {
	for _, pattern := range s.include {
		matched, err := doublestar.Match(pattern, p)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", p).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// GetFile returns a document and its version tag.
func (s *Service) GetFile(ctx context.Context, p string) (*remote.File, error) {
	return s.store.ReadFile(ctx, p)
}

// SaveFile writes a document. An empty knownVersionTag overwrites whatever is
// current (or creates the file); a non-empty one must still match.
func (s *Service) SaveFile(ctx context.Context, p string, content string, knownVersionTag string) (*remote.File, error) {
	return s.store.WriteFile(ctx, p, []byte(content), knownVersionTag)
}

// DeleteFile removes a document that is still at knownVersionTag.
func (s *Service) DeleteFile(ctx context.Context, p string, knownVersionTag string) error {
	return s.store.DeleteFile(ctx, p, knownVersionTag)
}

// ListProviders returns the configured provider names, sorted.
func (s *Service) ListProviders() []string {
	return s.dispatcher.Providers()
}

// StyleHints returns the configured style hints in order.
func (s *Service) StyleHints() []string {
	return s.dispatcher.StyleHints()
}

// ✍️ Rewrite sends text to a provider. Failures are *rewrite.Failure values.
func (s *Service) Rewrite(ctx context.Context, providerName, styleHint, text string) (*rewrite.Result, error) {
	return s.dispatcher.Dispatch(ctx, rewrite.Request{
		SourceText:   text,
		StyleHint:    styleHint,
		ProviderName: providerName,
	})
}

// 🆕 NewDocument creates a seeded markdown file. The name gets a .md suffix
// when it has none. Creating over an existing file is a conflict.
func (s *Service) NewDocument(ctx context.Context, name string) (*remote.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Errorf("document name is empty: %w", remote.ErrInvalidPath)
	}
	if !strings.HasSuffix(name, documentExt) {
		name += documentExt
	}

	p, err := store.NormalizePath(name)
	if err != nil {
		return nil, err
	}

	base := p[strings.LastIndex(p, "/")+1:]
	if strings.TrimSuffix(base, documentExt) == "" {
		return nil, errors.Errorf("document name %q has no file name: %w", name, remote.ErrInvalidPath)
	}

	seed := "# " + base + "\n\nStart writing here."

	file, err := s.store.CreateFile(ctx, p, []byte(seed))
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("path", file.Path).Msg("document created")
	return file, nil
}

// 🔁 FileRewrite is a rewritten document that has not been saved yet.
type FileRewrite struct {
	Path string `json:"path"`
	// VersionTag is the version the rewrite was based on. Pass it to
	// SaveFile so a concurrent edit surfaces as a conflict.
	VersionTag string          `json:"sha"`
	Result     *rewrite.Result `json:"result"`
}

// RewriteFile reads a document and rewrites its content. Nothing is written.
func (s *Service) RewriteFile(ctx context.Context, p, providerName, styleHint string) (*FileRewrite, error) {
	file, err := s.store.ReadFile(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err := s.Rewrite(ctx, providerName, styleHint, string(file.Content))
	if err != nil {
		return nil, err
	}

	return &FileRewrite{
		Path:       file.Path,
		VersionTag: file.VersionTag,
		Result:     result,
	}, nil
}

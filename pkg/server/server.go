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

// Package server exposes the content service as a JSON API.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/content"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultMaxBodyBytes bounds request bodies; GitHub's contents API
	// rejects files above 1MB anyway.
	DefaultMaxBodyBytes = 2 << 20

	shutdownTimeout = 10 * time.Second
)

// 🌐 Server routes HTTP requests to a content service.
type Server struct {
	content      *content.Service
	maxBodyBytes int64
	handler      http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithMaxBodyBytes overrides the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// 🏭 New builds the handler. Request logs go to the logger in ctx.
func New(ctx context.Context, svc *content.Service, opts ...Option) *Server {
	s := &Server{
		content:      svc,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("GET /api/file/{path...}", s.handleGetFile)
	mux.HandleFunc("POST /api/file", s.handleSaveFile)
	mux.HandleFunc("DELETE /api/file", s.handleDeleteFile)
	mux.HandleFunc("POST /api/documents", s.handleNewDocument)
	mux.HandleFunc("GET /api/providers", s.handleProviders)
	mux.HandleFunc("POST /api/rewrite", s.handleRewrite)
	mux.HandleFunc("POST /api/rewrite/file", s.handleRewriteFile)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = chain(mux, *zerolog.Ctx(ctx), s.maxBodyBytes)
	return s
}

// Handler returns the wrapped mux.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// 🚀 ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := zerolog.Ctx(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Errorf("shutting down: %w", err)
	}
	return nil
}

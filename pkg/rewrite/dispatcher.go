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
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/metrics"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🚦 Dispatcher routes rewrite requests to providers by name and turns every
// outcome into a Result or a *Failure.
type Dispatcher struct {
	registry   *Registry
	styleHints []string
}

// 🏭 NewDispatcher creates a dispatcher over a registry and the ordered style hints.
func NewDispatcher(registry *Registry, styleHints []string) *Dispatcher {
	if registry == nil {
		registry, _ = NewRegistry()
	}
	return &Dispatcher{
		registry:   registry,
		styleHints: append([]string(nil), styleHints...),
	}
}

// Providers returns the available provider names, sorted.
func (d *Dispatcher) Providers() []string {
	return d.registry.Names()
}

// StyleHints returns the configured style hints in order.
func (d *Dispatcher) StyleHints() []string {
	return append([]string(nil), d.styleHints...)
}

// Registry exposes the underlying registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ✍️ Dispatch performs one rewrite. There are no retries. An unknown provider
// fails with ReasonProviderUnavailable before the request is validated or
// any network call is made. The call is
// detached from caller cancellation; the provider's own timeout bounds it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	provider, ok := d.registry.Get(req.ProviderName)
	if !ok {
		metrics.RewriteResults.WithLabelValues(req.ProviderName, string(ReasonProviderUnavailable)).Inc()
		return nil, NewFailure(req.ProviderName, ReasonProviderUnavailable, 0, errors.Errorf("provider %q is not configured", req.ProviderName))
	}

	if strings.TrimSpace(req.SourceText) == "" {
		return nil, errors.Errorf("source text is empty: %w", ErrInvalidRequest)
	}

	style := strings.TrimSpace(req.StyleHint)
	if style == "" && len(d.styleHints) > 0 {
		style = d.styleHints[0]
	}

	metrics.RewriteInputChars.Observe(float64(len(req.SourceText)))

	logger.Debug().
		Str("provider", req.ProviderName).
		Str("style", style).
		Int("chars", len(req.SourceText)).
		Msg("dispatching rewrite")

	start := time.Now()
	text, err := provider.Rewrite(context.WithoutCancel(ctx), req.SourceText, style)
	elapsed := time.Since(start)
	metrics.RewriteDuration.WithLabelValues(req.ProviderName).Observe(elapsed.Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = NewFailure(req.ProviderName, ReasonInvalidResponse, 0, errors.New("provider returned empty text"))
	}
	if err != nil {
		failure := Normalize(req.ProviderName, err)
		metrics.RewriteResults.WithLabelValues(req.ProviderName, string(failure.Reason)).Inc()
		logger.Warn().Err(failure).Str("provider", req.ProviderName).Dur("elapsed", elapsed).Msg("rewrite failed")
		return nil, failure
	}

	metrics.RewriteResults.WithLabelValues(req.ProviderName, metrics.ResultOK).Inc()
	logger.Info().Str("provider", req.ProviderName).Dur("elapsed", elapsed).Int("chars", len(text)).Msg("rewrite complete")

	return &Result{
		Text:     text,
		Provider: req.ProviderName,
		Style:    style,
		Elapsed:  elapsed,
	}, nil
}

// 🩺 Probe pings every provider that supports it, concurrently. Providers
// without a Pinger are reported as nil (assumed reachable).
func (d *Dispatcher) Probe(ctx context.Context) map[string]error {
	var (
		mu      sync.Mutex
		results = make(map[string]error, d.registry.Len())
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range d.registry.Names() {
		provider, _ := d.registry.Get(name)
		g.Go(func() error {
			var err error
			if pinger, ok := provider.(Pinger); ok {
				err = pinger.Ping(gctx)
				if err != nil {
					err = Normalize(name, err)
				}
			}

			available := 1.0
			if err != nil {
				available = 0
			}
			metrics.ProviderAvailable.WithLabelValues(name).Set(available)

			mu.Lock()
			results[name] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

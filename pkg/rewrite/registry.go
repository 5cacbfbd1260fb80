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
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🏭 Factory builds a provider from its config. It returns ErrNotConfigured
// when the credential is missing.
type Factory func(ctx context.Context, cfg config.ProviderConfig) (Provider, error)

var (
	factoriesMu sync.RWMutex
	// 🗺️ factories maps provider kinds to factories
	factories = make(map[string]Factory)
)

// 📝 Register registers a provider factory under a kind
func Register(kind string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[kind] = factory
}

// 🎯 GetFactory returns the factory for a kind, or nil
func GetFactory(kind string) Factory {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return factories[kind]
}

// Kinds lists the registered provider kinds.
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// 📚 Registry maps provider names to providers. It is built once and never
// modified; a config reload builds a new one.
type Registry struct {
	providers map[string]Provider
	names     []string
}

// NewRegistry builds a registry from ready providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		name := p.Name()
		if _, dup := r.providers[name]; dup {
			return nil, errors.Errorf("provider %q registered twice", name)
		}
		r.providers[name] = p
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// 🔨 BuildRegistry creates every configured provider. Providers whose
// factory reports ErrNotConfigured are left out. An unknown kind is a
// configuration error.
func BuildRegistry(ctx context.Context, cfg *config.Config) (*Registry, error) {
	logger := zerolog.Ctx(ctx)

	var providers []Provider
	for _, pc := range cfg.Providers {
		factory := GetFactory(pc.Kind)
		if factory == nil {
			return nil, errors.Errorf("provider %q: unknown kind %q (known: %v)", pc.Name, pc.Kind, Kinds())
		}

		p, err := factory(ctx, pc)
		if errors.Is(err, ErrNotConfigured) {
			logger.Info().Str("provider", pc.Name).Str("kind", pc.Kind).Msg("provider has no credential, skipping")
			continue
		}
		if err != nil {
			return nil, errors.Errorf("creating provider %q: %w", pc.Name, err)
		}

		logger.Debug().Str("provider", pc.Name).Str("kind", pc.Kind).Str("model", pc.Model).Msg("provider ready")
		providers = append(providers, p)
	}

	return NewRegistry(providers...)
}

// Get returns the named provider.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the provider names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len is the number of available providers.
func (r *Registry) Len() int {
	return len(r.names)
}

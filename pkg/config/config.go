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

package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultBranch          = "main"
	DefaultCommitPrefix    = "docs"
	DefaultStoreTimeout    = 30 * time.Second
	DefaultProviderTimeout = 60 * time.Second
	DefaultAddr            = ":8080"
)

var (
	// DefaultInclude keeps markdown documents in listings.
	DefaultInclude = []string{"**/*.md"}

	// DefaultStyleHints is used when the config names none.
	DefaultStyleHints = []string{"clear", "concise", "formal", "friendly", "technical"}
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⏱️ Duration is a time.Duration written as "30s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Errorf("parsing duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// 🐙 StoreConfig locates the GitHub repository that holds the documents.
type StoreConfig struct {
	Token        string   `json:"token" yaml:"token"`
	Account      string   `json:"account" yaml:"account"`
	Repository   string   `json:"repository" yaml:"repository"`
	Branch       string   `json:"branch,omitempty" yaml:"branch,omitempty"`
	BaseURL      string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout      Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Include      []string `json:"include,omitempty" yaml:"include,omitempty"`
	CommitPrefix string   `json:"commit_prefix,omitempty" yaml:"commit_prefix,omitempty"`
}

// 🤖 ProviderConfig configures one rewrite backend. Kind selects the
// implementation and defaults to Name.
type ProviderConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model   string   `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// 📚 Config represents the complete configuration. It is built once and
// treated as read-only; a reload produces a new value.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	Providers  []ProviderConfig `json:"providers,omitempty" yaml:"providers,omitempty"`
	StyleHints []string         `json:"style_hints,omitempty" yaml:"style_hints,omitempty"`
	Server     ServerConfig     `json:"server,omitempty" yaml:"server,omitempty"`
}

// Default returns a validated config with no store and no providers.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file, applies environment
// overrides and validates it.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Str("store", cfg.String()).
		Int("providers", len(cfg.Providers)).
		Msg("configuration loaded")

	return cfg, nil
}

// 🌱 ApplyEnv fills empty values from the environment: GITHUB_TOKEN,
// GITHUB_USERNAME, GITHUB_REPO and GITHUB_BRANCH for the store,
// <NAME>_API_KEY for each provider, GOOGLE_API_KEY for gemini and
// OLLAMA_HOST for ollama.
func (cfg *Config) ApplyEnv(getenv func(string) string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = getenv(key)
		}
	}
	fill(&cfg.Store.Token, "GITHUB_TOKEN")
	fill(&cfg.Store.Account, "GITHUB_USERNAME")
	fill(&cfg.Store.Repository, "GITHUB_REPO")
	fill(&cfg.Store.Branch, "GITHUB_BRANCH")

	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.APIKey == "" {
			p.APIKey = getenv(EnvKeyName(p.Name))
		}
		kind := p.Kind
		if kind == "" {
			kind = p.Name
		}
		switch kind {
		case "gemini":
			if p.APIKey == "" {
				p.APIKey = getenv("GOOGLE_API_KEY")
			}
		case "ollama":
			if p.BaseURL == "" {
				p.BaseURL = getenv("OLLAMA_HOST")
			}
		}
	}
}

// EnvKeyName returns the environment variable consulted for a provider's key.
func EnvKeyName(provider string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(provider))
	return name + "_API_KEY"
}

// 🔍 Validate checks the configuration and fills defaults
func (cfg *Config) Validate() error {
	if cfg.Store.Account == "" && strings.Contains(cfg.Store.Repository, "/") {
		owner, repo, _ := strings.Cut(cfg.Store.Repository, "/")
		cfg.Store.Account, cfg.Store.Repository = owner, repo
	}
	if strings.Contains(cfg.Store.Repository, "/") {
		return errors.Errorf("store.repository must be a bare name when store.account is set: %q", cfg.Store.Repository)
	}

	if cfg.Store.Branch == "" {
		cfg.Store.Branch = DefaultBranch
	}
	if cfg.Store.Timeout.Duration <= 0 {
		cfg.Store.Timeout.Duration = DefaultStoreTimeout
	}
	if len(cfg.Store.Include) == 0 {
		cfg.Store.Include = append([]string(nil), DefaultInclude...)
	}
	if cfg.Store.CommitPrefix == "" {
		cfg.Store.CommitPrefix = DefaultCommitPrefix
	}

	seen := map[string]bool{}
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return errors.Errorf("providers[%d].name is required", i)
		}
		if seen[p.Name] {
			return errors.Errorf("provider %q is configured twice", p.Name)
		}
		seen[p.Name] = true
		if p.Kind == "" {
			p.Kind = p.Name
		}
		if p.Timeout.Duration <= 0 {
			p.Timeout.Duration = DefaultProviderTimeout
		}
	}

	hints := cfg.StyleHints[:0:0]
	for _, h := range cfg.StyleHints {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	if len(hints) == 0 {
		hints = append(hints, DefaultStyleHints...)
	}
	cfg.StyleHints = hints

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}

	return nil
}

// 📝 String returns owner/repo@branch
func (cfg *Config) String() string {
	if cfg.Store.Account == "" && cfg.Store.Repository == "" {
		return "(no store)"
	}
	return fmt.Sprintf("%s/%s@%s", cfg.Store.Account, cfg.Store.Repository, cfg.Store.Branch)
}

// Provider returns the named provider config.
func (cfg *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range cfg.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

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
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		env         map[string]string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml_full",
			filename: "blogcreator.yaml",
			config: `
store:
  token: ghp_x
  account: walteh
  repository: blog
  branch: drafts
  timeout: 10s
  include: ["posts/**/*.md"]
providers:
  - name: gemini
    api_key: g-key
    model: gemini-1.5-pro
  - name: local
    kind: ollama
    base_url: http://localhost:11434
    timeout: 2m
style_hints: [formal, casual]
server:
  addr: 127.0.0.1:9000
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ghp_x", cfg.Store.Token, "token should match")
				assert.Equal(t, "drafts", cfg.Store.Branch, "branch should match")
				assert.Equal(t, 10*time.Second, cfg.Store.Timeout.Duration, "timeout should be parsed")
				assert.Equal(t, []string{"posts/**/*.md"}, cfg.Store.Include)
				assert.Equal(t, "docs", cfg.Store.CommitPrefix, "commit prefix should default")
				require.Len(t, cfg.Providers, 2, "should have 2 providers")
				assert.Equal(t, "gemini", cfg.Providers[0].Kind, "kind should default to name")
				assert.Equal(t, DefaultProviderTimeout, cfg.Providers[0].Timeout.Duration)
				assert.Equal(t, "ollama", cfg.Providers[1].Kind)
				assert.Equal(t, 2*time.Minute, cfg.Providers[1].Timeout.Duration)
				assert.Equal(t, []string{"formal", "casual"}, cfg.StyleHints)
				assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
			},
		},
		{
			name:     "yaml_minimal_defaults",
			filename: "blogcreator.yml",
			config: `
store:
  repository: walteh/blog
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "walteh", cfg.Store.Account, "owner/repo shorthand should split")
				assert.Equal(t, "blog", cfg.Store.Repository)
				assert.Equal(t, "main", cfg.Store.Branch, "branch should have default value")
				assert.Equal(t, DefaultStoreTimeout, cfg.Store.Timeout.Duration)
				assert.Equal(t, DefaultInclude, cfg.Store.Include)
				assert.Equal(t, DefaultStyleHints, cfg.StyleHints)
				assert.Equal(t, DefaultAddr, cfg.Server.Addr)
				assert.Empty(t, cfg.Providers)
			},
		},
		{
			name:     "yaml_unknown_field",
			filename: "blogcreator.yaml",
			config: `
store:
  repo: walteh/blog
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:     "json_with_comments",
			filename: "blogcreator.json",
			config: `{
  // the docs repository
  "store": {"account": "walteh", "repository": "blog", "timeout": "45s",},
  "providers": [{"name": "anthropic"}],
}`,
			env: map[string]string{"ANTHROPIC_API_KEY": "sk-ant", "GITHUB_TOKEN": "ghp_env"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 45*time.Second, cfg.Store.Timeout.Duration)
				assert.Equal(t, "ghp_env", cfg.Store.Token, "token should come from env")
				assert.Equal(t, "sk-ant", cfg.Providers[0].APIKey, "api key should come from env")
			},
		},
		{
			name:        "json_unknown_field",
			filename:    "blogcreator.json",
			config:      `{"store": {"account": "walteh", "repository": "blog"}, "nope": true}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:     "hcl_with_env",
			filename: "blogcreator.hcl",
			config: `
store {
  token      = env.BLOGCREATOR_TEST_TOKEN
  account    = "walteh"
  repository = "blog"
  timeout    = "5s"
}

provider "gemini" {
  model = "gemini-1.5-flash"
}

provider "llama" {
  kind     = "openai"
  base_url = "http://localhost:8080/v1"
  api_key  = "none"
}

style_hints = ["punchy"]
`,
			env: map[string]string{"BLOGCREATOR_TEST_TOKEN": "ghp_hcl", "GOOGLE_API_KEY": "g-env"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ghp_hcl", cfg.Store.Token, "env variable should be resolved")
				assert.Equal(t, 5*time.Second, cfg.Store.Timeout.Duration)
				require.Len(t, cfg.Providers, 2)
				assert.Equal(t, "g-env", cfg.Providers[0].APIKey, "gemini should fall back to GOOGLE_API_KEY")
				assert.Equal(t, "openai", cfg.Providers[1].Kind)
				assert.Equal(t, []string{"punchy"}, cfg.StyleHints)
			},
		},
		{
			name:     "duplicate_provider",
			filename: "blogcreator.yaml",
			config: `
providers:
  - name: gemini
  - name: gemini
`,
			wantErr:     true,
			errContains: "configured twice",
		},
		{
			name:        "bad_duration",
			filename:    "blogcreator.yaml",
			config:      "store:\n  timeout: soon\n",
			wantErr:     true,
			errContains: "parsing duration",
		},
		{
			name:        "unknown_extension",
			filename:    "blogcreator.toml",
			config:      "",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(os.Stderr).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"GITHUB_TOKEN", "GITHUB_USERNAME", "GITHUB_REPO", "GITHUB_BRANCH", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OLLAMA_HOST"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestApplyEnvKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{Token: "explicit", Branch: "drafts"},
		Providers: []ProviderConfig{
			{Name: "open-ai", Kind: "openai"},
			{Name: "gemini", APIKey: "set"},
			{Name: "ollama"},
		},
	}
	env := map[string]string{
		"GITHUB_TOKEN":    "from-env",
		"GITHUB_USERNAME": "walteh",
		"GITHUB_REPO":     "blog",
		"GITHUB_BRANCH":   "main",
		"OPEN_AI_API_KEY": "oa",
		"GOOGLE_API_KEY":  "ignored",
		"OLLAMA_HOST":     "http://ollama:11434",
	}

	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "explicit", cfg.Store.Token, "explicit token should win")
	assert.Equal(t, "walteh/blog@drafts", cfg.String(), "location fills from env, explicit branch wins")
	assert.Equal(t, "oa", cfg.Providers[0].APIKey, "dashes should map to underscores")
	assert.Equal(t, "set", cfg.Providers[1].APIKey)
	assert.Equal(t, "http://ollama:11434", cfg.Providers[2].BaseURL)
}

func TestConfigString(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "full_config",
			cfg:  &Config{Store: StoreConfig{Account: "walteh", Repository: "blog", Branch: "drafts"}},
			want: "walteh/blog@drafts",
		},
		{
			name: "no_store",
			cfg:  Default(),
			want: "(no store)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.String(), "String() should match")
		})
	}
}

func TestPackageSourcesParse(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	fset := token.NewFileSet()
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		require.NoError(t, err, "%s should parse", name)
		assert.Equal(t, "config", f.Name.Name, "%s package clause", name)
		if name == "doc.go" {
			require.NotNil(t, f.Doc, "doc.go should carry the package comment")
			assert.Contains(t, f.Doc.Text(), `include: ["posts/**/*.md"]`, "glob examples must survive in the package comment")
		}
	}
}

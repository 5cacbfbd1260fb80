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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// The evaluation context exposes the process environment as `env`, so
// secrets can stay out of the file:
//
//	store {
//	  token      = env.GITHUB_TOKEN
//	  account    = "walteh"
//	  repository = "blog"
//	}
//
//	provider "gemini" {
//	  api_key = env.GOOGLE_API_KEY
//	}
type HCLParser struct {
	// Environ defaults to os.Environ.
	Environ func() []string
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	environ := p.Environ
	if environ == nil {
		environ = os.Environ
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(environ()),
		},
	}

	// Define HCL schema
	type hclStore struct {
		Token        string   `hcl:"token,optional"`
		Account      string   `hcl:"account,optional"`
		Repository   string   `hcl:"repository"`
		Branch       string   `hcl:"branch,optional"`
		BaseURL      string   `hcl:"base_url,optional"`
		Timeout      string   `hcl:"timeout,optional"`
		Include      []string `hcl:"include,optional"`
		CommitPrefix string   `hcl:"commit_prefix,optional"`
	}
	type hclProvider struct {
		Name    string `hcl:"name,label"`
		Kind    string `hcl:"kind,optional"`
		APIKey  string `hcl:"api_key,optional"`
		Model   string `hcl:"model,optional"`
		BaseURL string `hcl:"base_url,optional"`
		Timeout string `hcl:"timeout,optional"`
	}
	type hclServer struct {
		Addr string `hcl:"addr,optional"`
	}
	type hclConfig struct {
		Store      *hclStore     `hcl:"store,block"`
		Providers  []hclProvider `hcl:"provider,block"`
		StyleHints []string      `hcl:"style_hints,optional"`
		Server     *hclServer    `hcl:"server,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{StyleHints: hclCfg.StyleHints}

	if s := hclCfg.Store; s != nil {
		cfg.Store = StoreConfig{
			Token:        s.Token,
			Account:      s.Account,
			Repository:   s.Repository,
			Branch:       s.Branch,
			BaseURL:      s.BaseURL,
			Include:      s.Include,
			CommitPrefix: s.CommitPrefix,
		}
		if err := cfg.Store.Timeout.UnmarshalText([]byte(s.Timeout)); err != nil {
			return nil, errors.Errorf("store.timeout: %w", err)
		}
	}

	for _, hp := range hclCfg.Providers {
		pc := ProviderConfig{
			Name:    hp.Name,
			Kind:    hp.Kind,
			APIKey:  hp.APIKey,
			Model:   hp.Model,
			BaseURL: hp.BaseURL,
		}
		if err := pc.Timeout.UnmarshalText([]byte(hp.Timeout)); err != nil {
			return nil, errors.Errorf("provider %q timeout: %w", hp.Name, err)
		}
		cfg.Providers = append(cfg.Providers, pc)
	}

	if hclCfg.Server != nil {
		cfg.Server.Addr = hclCfg.Server.Addr
	}

	return cfg, nil
}

func envObject(environ []string) cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

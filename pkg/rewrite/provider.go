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
	"time"
)

// 🔌 Provider is one AI backend that can rewrite text.
//
// Implementations must bound their own wait, return a *Failure for every
// error, and never report success with empty text.
type Provider interface {
	// 🏷️ Name is the configured provider name.
	Name() string

	// ✍️ Rewrite returns sourceText rewritten in the given style.
	Rewrite(ctx context.Context, sourceText, styleHint string) (string, error)
}

// 📋 ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// 🏓 Pinger is implemented by providers with a cheap reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// 📨 Request is one rewrite intent.
type Request struct {
	SourceText   string `json:"text"`
	StyleHint    string `json:"style"`
	ProviderName string `json:"provider"`
}

// ✅ Result is a successful rewrite. Text is never empty.
type Result struct {
	Text     string        `json:"text"`
	Provider string        `json:"provider"`
	Style    string        `json:"style"`
	Elapsed  time.Duration `json:"elapsed"`
}

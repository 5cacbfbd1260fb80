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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line builds the expected uncolored document line
func line(symbol, path, kind, status, sha string) string {
	return fmt.Sprintf("    %s %-35s %-6s %-10s %s", symbol, path, kind, status, sha)
}

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_document_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogDocumentOperation(context.Background(), DocumentOperation{
					Path:       "posts/hello.md",
					Kind:       "file",
					Status:     "created",
					VersionTag: "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0",
					IsNew:      true,
				})
			},
			wantLogs: []string{
				strings.TrimSpace(line("✓", "posts/hello.md", "file", "created", "b6fc4c6")),
			},
		},
		{
			name: "log_session",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSession(context.Background(), StoreSession{
					Repository: "walteh/blog",
					Branch:     "main",
					Dir:        "posts",
				})
			},
			wantLogs: []string{
				"[posts]",
				"◆ walteh/blog • main",
			},
		},
		{
			name: "log_session_root",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSession(context.Background(), StoreSession{Repository: "walteh/blog", Branch: "drafts"})
				logger.EndSession(context.Background())
			},
			wantLogs: []string{
				"[/]",
				"◆ walteh/blog • drafts",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("listing documents")
			},
			wantLogs: []string{
				"blogcreator • listing documents",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestDocumentOperationFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   DocumentOperation
		want string
	}{
		{
			name: "created",
			op:   DocumentOperation{Path: "a.md", Kind: "file", Status: "created", VersionTag: "1234567890", IsNew: true},
			want: line("✓", "a.md", "file", "created", "1234567"),
		},
		{
			name: "updated",
			op:   DocumentOperation{Path: "a.md", Kind: "file", Status: "updated", VersionTag: "abc", IsModified: true},
			want: line("⟳", "a.md", "file", "updated", "abc"),
		},
		{
			name: "removed",
			op:   DocumentOperation{Path: "a.md", Kind: "file", Status: "deleted", IsRemoved: true},
			want: line("✗", "a.md", "file", "deleted", ""),
		},
		{
			name: "conflict_wins_over_modified",
			op:   DocumentOperation{Path: "a.md", Kind: "file", Status: "conflict", IsModified: true, IsConflict: true},
			want: line("!", "a.md", "file", "conflict", ""),
		},
		{
			name: "directory",
			op:   DocumentOperation{Path: "posts", Kind: "dir"},
			want: line("▸", "posts", "dir", "", ""),
		},
		{
			name: "listed_file",
			op:   DocumentOperation{Path: "posts/b.md", Kind: "file", VersionTag: "deadbeefcafe"},
			want: line("•", "posts/b.md", "file", "", "deadbee"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			logger.LogDocumentOperation(context.Background(), tt.op)

			assert.Equal(t, tt.want+"\n", buf.String(), "formatted output should match")
		})
	}
}

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
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent document entries
	nameWidth   = 35 // Base width for path
	kindWidth   = 6  // Width for entry kind
	statusWidth = 10 // Width for status text
	shaWidth    = 7  // Shortened version tag
)

// 🎯 DocumentOperation is one document change or listing entry
type DocumentOperation struct {
	Path       string // Repository-relative path
	Kind       string // file or dir
	Status     string // Operation status
	VersionTag string // Version tag after the operation
	IsNew      bool   // Whether the document was created
	IsModified bool   // Whether the document was rewritten
	IsRemoved  bool   // Whether the document was deleted
	IsConflict bool   // Whether the remote rejected a stale version
}

// 📦 StoreSession is the repository a batch of operations runs against
type StoreSession struct {
	Repository string // owner/repo
	Branch     string // Branch
	Dir        string // Directory being worked on
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	session    *StoreSession
	operations []DocumentOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func shortSHA(sha string) string {
	if len(sha) > shaWidth {
		return sha[:shaWidth]
	}
	return sha
}

// 📝 formatDocumentOperation formats a document operation for display
func (l *Logger) formatDocumentOperation(op DocumentOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsConflict:
		symbol = '!'
		symbolColor = color.FgMagenta
	case op.IsRemoved:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		if op.Kind == "dir" {
			symbol = '▸'
			symbolColor = color.FgYellow
		} else {
			symbol = '•'
			symbolColor = color.FgCyan
		}
	}

	kindColor := color.FgCyan
	if op.Kind == "dir" {
		kindColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, op.Status),
		color.New(color.Faint).Sprint(shortSHA(op.VersionTag)))
}

// 📝 LogDocumentOperation logs a document operation
func (l *Logger) LogDocumentOperation(ctx context.Context, op DocumentOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatDocumentOperation(op))

	l.zlog.Info().
		Str("path", op.Path).
		Str("kind", op.Kind).
		Str("status", op.Status).
		Str("sha", op.VersionTag).
		Bool("is_new", op.IsNew).
		Bool("is_modified", op.IsModified).
		Bool("is_removed", op.IsRemoved).
		Bool("is_conflict", op.IsConflict).
		Msg("document operation")
}

// 📝 StartSession prints the repository header for a batch of operations
func (l *Logger) StartSession(ctx context.Context, s StoreSession) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.session = &s
	l.operations = nil

	dir := s.Dir
	if dir == "" {
		dir = "/"
	}
	fmt.Fprintf(l.console, "[%s]\n", color.New(color.FgCyan).Sprint(dir))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(s.Repository),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(s.Branch))

	l.zlog.Info().
		Str("repo", s.Repository).
		Str("branch", s.Branch).
		Str("dir", s.Dir).
		Msg("starting store session")
}

// 📝 EndSession closes the current session
func (l *Logger) EndSession(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		return
	}

	l.zlog.Info().
		Str("repo", l.session.Repository).
		Int("documents", len(l.operations)).
		Msg("store session complete")

	l.session = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("blogcreator")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

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

// Package markdown extracts the structural markers of a document that a
// rewrite should carry over unchanged.
package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func parser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parserInstance
}

// 📑 Heading is a section title and its level (1-6).
type Heading struct {
	Level int
	Text  string
}

// 🧱 CodeBlock is a fenced code block. Only the info string is kept.
type CodeBlock struct {
	Language string
	Lines    int
}

// 🗺️ Outline is the set of markers found in a document.
type Outline struct {
	FrontMatter bool
	Headings    []Heading
	CodeBlocks  []CodeBlock
	Links       []string
}

// Empty reports whether the document has no structure worth preserving.
func (o *Outline) Empty() bool {
	return !o.FrontMatter && len(o.Headings) == 0 && len(o.CodeBlocks) == 0 && len(o.Links) == 0
}

// 🔍 Parse builds the outline of src.
func Parse(src []byte) *Outline {
	out := &Outline{}

	body := src
	if fm, rest, ok := SplitFrontMatter(src); ok && len(fm) > 0 {
		out.FrontMatter = true
		body = rest
	}

	doc := parser().Parser().Parse(text.NewReader(body))

	seen := map[string]bool{}
	addLink := func(dest string) {
		if dest == "" || seen[dest] {
			return
		}
		seen[dest] = true
		out.Links = append(out.Links, dest)
	}

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			out.Headings = append(out.Headings, Heading{Level: n.Level, Text: inlineText(n, body)})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			out.CodeBlocks = append(out.CodeBlocks, CodeBlock{Language: string(n.Language(body)), Lines: n.Lines().Len()})
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			addLink(string(n.Destination))
		case *ast.Image:
			addLink(string(n.Destination))
		case *ast.AutoLink:
			addLink(string(n.URL(body)))
		}
		return ast.WalkContinue, nil
	})

	return out
}

// SplitFrontMatter separates a leading "---" delimited block from the body.
// ok is false when the document does not open with front matter.
func SplitFrontMatter(src []byte) (frontMatter, body []byte, ok bool) {
	normalized := bytes.TrimPrefix(src, []byte("\ufeff"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) && !bytes.HasPrefix(normalized, []byte("---\r\n")) {
		return nil, src, false
	}

	firstLineEnd := bytes.IndexByte(normalized, '\n') + 1
	rest := normalized[firstLineEnd:]
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
		}
		if strings.TrimRight(string(line), "\r") == "---" {
			fm := rest[:offset]
			if lineEnd < 0 {
				return fm, nil, true
			}
			return fm, rest[offset+lineEnd+1:], true
		}
		if lineEnd < 0 {
			break
		}
		offset += lineEnd + 1
	}
	return nil, src, false
}

func inlineText(node ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.CodeSpan:
			for c := t.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					sb.Write(txt.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

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

// Package memory is an in-process remote.Client used for tests and local
// development. Each path is updated with an atomic compare-and-swap, the same
// guarantee GitHub's contents API gives, and version tags are git blob SHAs.
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/remote"
)

var _ remote.Client = (*Client)(nil)

type blob struct {
	content []byte
	sha     string
}

// 🧠 Client keeps files in a map guarded by a mutex.
type Client struct {
	mu    sync.Mutex
	files map[string]blob
	calls atomic.Int64
}

// 🏭 New creates an empty store, optionally seeded with path -> content.
func New(seed map[string]string) *Client {
	c := &Client{files: make(map[string]blob)}
	for p, content := range seed {
		c.files[p] = newBlob([]byte(content))
	}
	return c
}

// BlobSHA returns the git blob hash for content, which is what GitHub reports as a file's sha.
func BlobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func newBlob(content []byte) blob {
	cp := append([]byte(nil), content...)
	return blob{content: cp, sha: BlobSHA(cp)}
}

// Calls returns the number of remote operations served so far.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

func (c *Client) Get(ctx context.Context, p string) (*remote.File, error) {
	c.calls.Add(1)
	zerolog.Ctx(ctx).Trace().Str("path", p).Msg("memory get")

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.files[p]
	if !ok {
		return nil, &remote.NotFoundError{Path: p}
	}
	return toFile(p, b), nil
}

func (c *Client) List(ctx context.Context, dir string) (remote.Listing, error) {
	c.calls.Add(1)
	zerolog.Ctx(ctx).Trace().Str("dir", dir).Msg("memory list")

	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seenDirs := map[string]bool{}
	listing := remote.Listing{}
	for p, b := range c.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			sub := prefix + rest[:i]
			if !seenDirs[sub] {
				seenDirs[sub] = true
				listing = append(listing, remote.Entry{Path: sub, Name: rest[:i], Kind: remote.KindDirectory})
			}
			continue
		}
		listing = append(listing, remote.Entry{
			Path:       p,
			Name:       rest,
			Kind:       remote.KindFile,
			VersionTag: b.sha,
			Size:       int64(len(b.content)),
		})
	}

	if dir != "" && len(listing) == 0 {
		return nil, &remote.NotFoundError{Path: dir}
	}

	sort.Slice(listing, func(i, j int) bool { return listing[i].Path < listing[j].Path })
	return listing, nil
}

func (c *Client) Put(ctx context.Context, p string, content []byte, expectedVersionTag string) (*remote.File, error) {
	c.calls.Add(1)
	zerolog.Ctx(ctx).Trace().Str("path", p).Str("expected", expectedVersionTag).Msg("memory put")

	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.files[p]
	switch {
	case !exists && expectedVersionTag != "":
		return nil, &remote.NotFoundError{Path: p}
	case exists && current.sha != expectedVersionTag:
		return nil, &remote.ConflictError{Path: p, Expected: expectedVersionTag}
	}

	b := newBlob(content)
	c.files[p] = b
	return toFile(p, b), nil
}

func (c *Client) Delete(ctx context.Context, p string, expectedVersionTag string) error {
	c.calls.Add(1)
	zerolog.Ctx(ctx).Trace().Str("path", p).Str("expected", expectedVersionTag).Msg("memory delete")

	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.files[p]
	if !exists {
		return &remote.NotFoundError{Path: p}
	}
	if current.sha != expectedVersionTag {
		return &remote.ConflictError{Path: p, Expected: expectedVersionTag}
	}
	delete(c.files, p)
	return nil
}

func toFile(p string, b blob) *remote.File {
	return &remote.File{
		Path:       path.Clean(p),
		Content:    append([]byte(nil), b.content...),
		Encoding:   remote.EncodingRaw,
		VersionTag: b.sha,
		Size:       int64(len(b.content)),
	}
}

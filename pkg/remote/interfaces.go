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

package remote

import (
	"context"
	"path"
)

// 🔌 Client is the low-level contract for a remote content store (e.g. GitHub).
// Implementations carry no business logic: they translate each call into one
// request against the remote API and classify the outcome.
type Client interface {
	// 📄 Get returns the file at path together with its current version tag
	Get(ctx context.Context, path string) (*File, error)
	// 📂 List returns the entries directly under dir ("" is the root)
	List(ctx context.Context, dir string) (Listing, error)
	// 📝 Put writes content to path if the remote version still equals
	// expectedVersionTag. An empty tag means "no prior version".
	Put(ctx context.Context, path string, content []byte, expectedVersionTag string) (*File, error)
	// 🗑️ Delete removes path if the remote version still equals expectedVersionTag
	Delete(ctx context.Context, path string, expectedVersionTag string) error
}

// Encoding describes how File.Content was transported by the remote.
type Encoding string

const (
	EncodingRaw    Encoding = "raw"
	EncodingBase64 Encoding = "base64"
)

// 📄 File is a materialized remote file. Content is always decoded bytes.
type File struct {
	Path       string   `json:"path"`
	Content    []byte   `json:"-"`
	Encoding   Encoding `json:"encoding"`
	VersionTag string   `json:"sha"`
	Size       int64    `json:"size"`
}

// Name returns the last path element.
func (f *File) Name() string {
	return path.Base(f.Path)
}

// EntryKind is the kind of a directory entry.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "dir"
)

// 📁 Entry is one item of a directory listing.
type Entry struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Kind       EntryKind `json:"type"`
	VersionTag string    `json:"sha,omitempty"`
	Size       int64     `json:"size,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// 📂 Listing is an ordered directory listing.
type Listing []Entry

// Files returns only the file entries, preserving order.
func (l Listing) Files() Listing {
	out := make(Listing, 0, len(l))
	for _, e := range l {
		if e.Kind == KindFile {
			out = append(out, e)
		}
	}
	return out
}

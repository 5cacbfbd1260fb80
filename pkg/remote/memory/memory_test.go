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

package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

func TestBlobSHAMatchesGit(t *testing.T) {
	// git hash-object of an empty file and of "hello\n"
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", BlobSHA(nil), "empty blob sha should match git")
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", BlobSHA([]byte("hello\n")), "hello blob sha should match git")
}

func TestPutCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	created, err := c.Put(ctx, "a.md", []byte("one"), "")
	require.NoError(t, err, "create should succeed")

	_, err = c.Put(ctx, "a.md", []byte("again"), "")
	assert.True(t, errors.Is(err, remote.ErrConflict), "blind create over existing file should conflict")

	updated, err := c.Put(ctx, "a.md", []byte("two"), created.VersionTag)
	require.NoError(t, err, "update with current tag should succeed")
	assert.NotEqual(t, created.VersionTag, updated.VersionTag, "tag should change on write")

	_, err = c.Put(ctx, "a.md", []byte("three"), created.VersionTag)
	assert.True(t, errors.Is(err, remote.ErrConflict), "stale tag should conflict")

	_, err = c.Put(ctx, "missing.md", []byte("x"), "deadbeef")
	assert.True(t, errors.Is(err, remote.ErrNotFound), "update of a missing file should be not found")
}

func TestConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	c := New(map[string]string{"a.md": "base"})
	base, err := c.Get(ctx, "a.md")
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = c.Put(ctx, "a.md", []byte{byte('a' + i)}, base.VersionTag)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, remote.ErrConflict), "losers should see conflict")
	}
	assert.Equal(t, 1, wins, "exactly one writer should succeed")
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	c := New(map[string]string{
		"README.md":         "readme",
		"posts/a.md":        "a",
		"posts/b.md":        "b",
		"posts/drafts/c.md": "c",
	})

	root, err := c.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, root, 2, "root should contain one file and one directory")
	assert.Equal(t, "README.md", root[0].Path)
	assert.Equal(t, remote.KindDirectory, root[1].Kind, "posts should be a directory")

	posts, err := c.List(ctx, "posts")
	require.NoError(t, err)
	assert.Len(t, posts, 3, "posts should contain two files and one directory")

	_, err = c.List(ctx, "nope")
	assert.True(t, errors.Is(err, remote.ErrNotFound), "missing directory should be not found")

	a, err := c.Get(ctx, "posts/a.md")
	require.NoError(t, err)

	err = c.Delete(ctx, "posts/a.md", "stale")
	assert.True(t, errors.Is(err, remote.ErrConflict), "stale delete should conflict")

	require.NoError(t, c.Delete(ctx, "posts/a.md", a.VersionTag), "delete with current tag should succeed")

	_, err = c.Get(ctx, "posts/a.md")
	assert.True(t, errors.Is(err, remote.ErrNotFound), "deleted file should be gone")

	err = c.Delete(ctx, "posts/a.md", a.VersionTag)
	assert.True(t, errors.Is(err, remote.ErrNotFound), "second delete should be not found")
}

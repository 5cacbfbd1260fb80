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

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultCommitPrefix = "docs"
)

var _ remote.Client = (*Client)(nil)

// ContentsAPI is the subset of the GitHub repositories service the store needs.
// *github.RepositoriesService satisfies it.
type ContentsAPI interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	DeleteFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
}

// ⚙️ Options configures a Client. Token and location are opaque to the rest of the system.
type Options struct {
	Token        string
	Account      string
	Repository   string
	Branch       string
	BaseURL      string
	Timeout      time.Duration
	CommitPrefix string
	HTTPClient   *http.Client
}

// 🐙 Client implements remote.Client against the GitHub contents API.
type Client struct {
	api          ContentsAPI
	owner        string
	repo         string
	branch       string
	timeout      time.Duration
	commitPrefix string
}

// 🏭 New creates a GitHub backed remote store client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("github token is required")
	}
	if opts.Account == "" || opts.Repository == "" {
		return nil, errors.Errorf("invalid repository: %q/%q", opts.Account, opts.Repository)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	gh := github.NewClient(httpClient).WithAuthToken(opts.Token)
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, errors.Errorf("parsing base url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		gh.BaseURL = u
	}

	zerolog.Ctx(ctx).Debug().
		Str("repo", opts.Account+"/"+opts.Repository).
		Str("branch", opts.Branch).
		Dur("timeout", timeout).
		Msg("created github store client")

	return NewWithAPI(gh.Repositories, opts), nil
}

// NewWithAPI builds a Client around an existing ContentsAPI.
func NewWithAPI(api ContentsAPI, opts Options) *Client {
	c := &Client{
		api:          api,
		owner:        opts.Account,
		repo:         opts.Repository,
		branch:       opts.Branch,
		timeout:      opts.Timeout,
		commitPrefix: opts.CommitPrefix,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.commitPrefix == "" {
		c.commitPrefix = defaultCommitPrefix
	}
	return c
}

// Name returns owner/repo@branch.
func (c *Client) Name() string {
	if c.branch == "" {
		return c.owner + "/" + c.repo
	}
	return fmt.Sprintf("%s/%s@%s", c.owner, c.repo, c.branch)
}

// bound detaches the call from caller cancellation and gives it its own deadline.
// An aborted request lets the in-flight remote call finish on its own.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
}

func (c *Client) getOptions() *github.RepositoryContentGetOptions {
	if c.branch == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: c.branch}
}

func (c *Client) fileOptions(message string, content []byte, sha string) *github.RepositoryContentFileOptions {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if c.branch != "" {
		opts.Branch = github.String(c.branch)
	}
	if sha != "" {
		opts.SHA = github.String(sha)
	}
	return opts
}

// 📄 Get fetches a single file and decodes its content.
func (c *Client) Get(ctx context.Context, path string) (*remote.File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("getting file from github")

	callCtx, cancel := c.bound(ctx)
	defer cancel()

	fc, dir, resp, err := c.api.GetContents(callCtx, c.owner, c.repo, path, c.getOptions())
	if err != nil {
		return nil, classify("get", path, resp, err)
	}
	if fc == nil {
		logger.Debug().Str("path", path).Int("entries", len(dir)).Msg("path is a directory")
		return nil, &remote.NotFoundError{Path: path}
	}

	if fc.GetEncoding() == "none" {
		return nil, &remote.TransportError{
			Kind: remote.KindOther,
			Op:   "get",
			Path: path,
			Err:  errors.Errorf("file of %d bytes is too large for the contents api", fc.GetSize()),
		}
	}

	data, err := fc.GetContent()
	if err != nil {
		return nil, &remote.TransportError{Kind: remote.KindOther, Op: "get", Path: path, Err: errors.Errorf("decoding content: %w", err)}
	}

	encoding := remote.EncodingRaw
	if fc.GetEncoding() == "base64" {
		encoding = remote.EncodingBase64
	}

	return &remote.File{
		Path:       fc.GetPath(),
		Content:    []byte(data),
		Encoding:   encoding,
		VersionTag: fc.GetSHA(),
		Size:       int64(fc.GetSize()),
	}, nil
}

// 📂 List returns the direct children of dir.
func (c *Client) List(ctx context.Context, dir string) (remote.Listing, error) {
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("listing directory on github")

	callCtx, cancel := c.bound(ctx)
	defer cancel()

	fc, entries, resp, err := c.api.GetContents(callCtx, c.owner, c.repo, dir, c.getOptions())
	if err != nil {
		return nil, classify("list", dir, resp, err)
	}
	if fc != nil {
		return nil, &remote.NotFoundError{Path: dir}
	}

	listing := make(remote.Listing, 0, len(entries))
	for _, e := range entries {
		kind := remote.KindFile
		switch e.GetType() {
		case "dir":
			kind = remote.KindDirectory
		case "file":
		default:
			// symlinks and submodules are not editable documents
			continue
		}
		listing = append(listing, remote.Entry{
			Path:       e.GetPath(),
			Name:       e.GetName(),
			Kind:       kind,
			VersionTag: e.GetSHA(),
			Size:       int64(e.GetSize()),
		})
	}
	return listing, nil
}

// 📝 Put creates or updates a file. The expected tag is sent as the sha field so
// GitHub performs the comparison atomically.
func (c *Client) Put(ctx context.Context, path string, content []byte, expectedVersionTag string) (*remote.File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Str("expected_sha", expectedVersionTag).Int("bytes", len(content)).Msg("putting file to github")

	callCtx, cancel := c.bound(ctx)
	defer cancel()

	opts := c.fileOptions(fmt.Sprintf("%s: update %s", c.commitPrefix, path), content, expectedVersionTag)

	var (
		res  *github.RepositoryContentResponse
		resp *github.Response
		err  error
	)
	if expectedVersionTag == "" {
		res, resp, err = c.api.CreateFile(callCtx, c.owner, c.repo, path, opts)
	} else {
		res, resp, err = c.api.UpdateFile(callCtx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		return nil, classifyWrite("put", path, expectedVersionTag, resp, err)
	}

	if res == nil || res.Content == nil || res.Content.GetSHA() == "" {
		return nil, &remote.TransportError{Kind: remote.KindOther, Op: "put", Path: path, Err: errors.New("response did not include the new blob sha")}
	}

	logger.Debug().Str("path", path).Str("sha", res.Content.GetSHA()).Msg("file written")

	return &remote.File{
		Path:       path,
		Content:    append([]byte(nil), content...),
		Encoding:   remote.EncodingRaw,
		VersionTag: res.Content.GetSHA(),
		Size:       int64(len(content)),
	}, nil
}

// 🗑️ Delete removes a file when its current sha equals expectedVersionTag.
func (c *Client) Delete(ctx context.Context, path string, expectedVersionTag string) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Str("expected_sha", expectedVersionTag).Msg("deleting file on github")

	if expectedVersionTag == "" {
		return errors.Errorf("deleting %s: %w", path, remote.ErrMissingVersion)
	}

	callCtx, cancel := c.bound(ctx)
	defer cancel()

	opts := c.fileOptions(fmt.Sprintf("%s: delete %s", c.commitPrefix, path), nil, expectedVersionTag)
	if _, resp, err := c.api.DeleteFile(callCtx, c.owner, c.repo, path, opts); err != nil {
		return classifyWrite("delete", path, expectedVersionTag, resp, err)
	}
	return nil
}

// 🩺 Diagnostics describes repository access and remaining API budget.
type Diagnostics struct {
	Repository    string
	DefaultBranch string
	Private       bool
	RateLimit     int
	RateRemaining int
	RateReset     time.Time
}

// Diagnose checks that the configured repository is reachable with the
// configured credential and reports the current rate limit.
func (c *Client) Diagnose(ctx context.Context) (*Diagnostics, error) {
	callCtx, cancel := c.bound(ctx)
	defer cancel()

	repo, resp, err := c.api.Get(callCtx, c.owner, c.repo)
	if err != nil {
		return nil, classify("diagnose", c.owner+"/"+c.repo, resp, err)
	}

	d := &Diagnostics{
		Repository:    repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Private:       repo.GetPrivate(),
	}
	if resp != nil {
		d.RateLimit = resp.Rate.Limit
		d.RateRemaining = resp.Rate.Remaining
		d.RateReset = resp.Rate.Reset.Time
	}
	return d, nil
}

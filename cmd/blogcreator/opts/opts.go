package opts

import (
	"context"

	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/content"
	"github.com/walteh/blogcreator/pkg/log"
	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/remote/github"
	"github.com/walteh/blogcreator/pkg/remote/memory"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"github.com/walteh/blogcreator/pkg/store"
	"gitlab.com/tozd/go/errors"
)

// MemorySeed is what an in-memory store starts with.
var MemorySeed = map[string]string{
	"welcome.md": "# welcome.md\n\nThis store lives in memory and is gone when the process exits.\n",
}

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	Dispatcher *rewrite.Dispatcher
	Console    *log.Logger
	Memory     bool

	remote  remote.Client
	github  *github.Client
	content *content.Service
}

// Remote returns the store client, creating it on first use. Commands that
// never touch the store do not need a GitHub token.
func (o *RootOpts) Remote(ctx context.Context) (remote.Client, error) {
	if o.remote != nil {
		return o.remote, nil
	}

	if o.Memory {
		o.remote = memory.New(MemorySeed)
		return o.remote, nil
	}

	gh, err := github.New(ctx, github.Options{
		Token:        o.Config.Store.Token,
		Account:      o.Config.Store.Account,
		Repository:   o.Config.Store.Repository,
		Branch:       o.Config.Store.Branch,
		BaseURL:      o.Config.Store.BaseURL,
		Timeout:      o.Config.Store.Timeout.Duration,
		CommitPrefix: o.Config.Store.CommitPrefix,
	})
	if err != nil {
		return nil, errors.Errorf("configuring github store (set store.token or GITHUB_TOKEN, or use --memory): %w", err)
	}
	o.github = gh
	o.remote = gh
	return o.remote, nil
}

// GitHub returns the GitHub client, or nil when running against memory.
func (o *RootOpts) GitHub(ctx context.Context) (*github.Client, error) {
	if _, err := o.Remote(ctx); err != nil {
		return nil, err
	}
	return o.github, nil
}

// Content returns the content service over the configured store.
func (o *RootOpts) Content(ctx context.Context) (*content.Service, error) {
	if o.content != nil {
		return o.content, nil
	}

	client, err := o.Remote(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := content.New(store.New(client), o.Dispatcher, content.WithInclude(o.Config.Store.Include...))
	if err != nil {
		return nil, errors.Errorf("creating content service: %w", err)
	}
	o.content = svc
	return svc, nil
}

// StoreName describes where documents live.
func (o *RootOpts) StoreName() string {
	if o.Memory {
		return "memory"
	}
	return o.Config.Store.Account + "/" + o.Config.Store.Repository
}

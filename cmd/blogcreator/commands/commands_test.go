package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/log"
	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/remote/memory"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Rewrite(ctx context.Context, sourceText, styleHint string) (string, error) {
	return strings.ToUpper(strings.TrimSpace(sourceText)), nil
}

func newTestOpts(t *testing.T) *opts.RootOpts {
	t.Helper()
	reg, err := rewrite.NewRegistry(echoProvider{})
	require.NoError(t, err)
	cfg := config.Default()
	return &opts.RootOpts{
		Config:     cfg,
		Dispatcher: rewrite.NewDispatcher(reg, cfg.StyleHints),
		Console:    log.New(io.Discard, zerolog.Disabled),
		Memory:     true,
	}
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDocumentCommands(t *testing.T) {
	o := newTestOpts(t)

	out, err := run(t, NewNewCmd(o), "", "draft")
	require.NoError(t, err)
	assert.Equal(t, "draft.md\n", out)

	out, err = run(t, NewCatCmd(o), "", "draft.md")
	require.NoError(t, err)
	assert.Equal(t, "# draft.md\n\nStart writing here.", out)

	seed := memory.BlobSHA([]byte("# draft.md\n\nStart writing here."))

	out, err = run(t, NewPutCmd(o), "v2", "draft.md", "--sha", seed)
	require.NoError(t, err)
	v2 := strings.TrimSpace(out)
	assert.Equal(t, memory.BlobSHA([]byte("v2")), v2)

	_, err = run(t, NewPutCmd(o), "stale", "draft.md", "--sha", seed)
	assert.True(t, errors.Is(err, remote.ErrConflict), "stale put should conflict")

	_, err = run(t, NewRmCmd(o), "", "draft.md", "--sha", seed)
	assert.True(t, errors.Is(err, remote.ErrConflict), "stale rm should conflict")

	_, err = run(t, NewRmCmd(o), "", "draft.md", "--sha", v2)
	require.NoError(t, err)

	_, err = run(t, NewCatCmd(o), "", "draft.md")
	assert.True(t, errors.Is(err, remote.ErrNotFound))
}

func TestRewriteCommand(t *testing.T) {
	o := newTestOpts(t)

	out, err := run(t, NewRewriteCmd(o), "hello from stdin")
	require.NoError(t, err)
	assert.Equal(t, "HELLO FROM STDIN\n", out)

	out, err = run(t, NewRewriteCmd(o), "", "--text", "inline", "-p", "echo")
	require.NoError(t, err)
	assert.Equal(t, "INLINE\n", out)

	_, err = run(t, NewRewriteCmd(o), "", "--text", "x", "-p", "nope")
	assert.True(t, errors.Is(err, rewrite.ErrProviderUnavailable))

	_, err = run(t, NewRewriteCmd(o), "", "welcome.md", "--save")
	require.NoError(t, err)

	out, err = run(t, NewCatCmd(o), "", "welcome.md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# WELCOME.MD"), "saved rewrite should be readable: %q", out)
}

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/server"
	"gitlab.com/tozd/go/errors"
)

// NewServeCmd creates the serve command
func NewServeCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		addr         string
		maxBodyBytes int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve exposes documents and rewrites over HTTP.

Routes:
  GET    /api/files?dir=       list a directory
  GET    /api/file/{path}      read a document and its sha
  POST   /api/file             save {path, content, sha}
  DELETE /api/file             delete {path, sha}
  POST   /api/documents        create {name}
  GET    /api/providers        configured providers and style hints
  POST   /api/rewrite          rewrite {provider, style, text}
  POST   /api/rewrite/file     rewrite a stored document {path, provider, style}
  GET    /healthz
  GET    /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = opts.Config.Server.Addr
			}

			logger.Info().
				Str("store", opts.StoreName()).
				Strs("providers", svc.ListProviders()).
				Msg("starting server")

			srv := server.New(ctx, svc, server.WithMaxBodyBytes(maxBodyBytes))
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return errors.Errorf("running server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", server.DefaultMaxBodyBytes, "request body limit")
	return cmd
}

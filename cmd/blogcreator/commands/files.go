package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/log"
	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// NewLsCmd creates the ls command
func NewLsCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List directories and documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			listing, err := svc.ListFiles(ctx, dir)
			if err != nil {
				return errors.Errorf("listing %q: %w", dir, err)
			}

			opts.Console.StartSession(ctx, log.StoreSession{
				Repository: opts.StoreName(),
				Branch:     opts.Config.Store.Branch,
				Dir:        dir,
			})
			for _, e := range listing {
				opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{
					Path:       e.Path,
					Kind:       string(e.Kind),
					VersionTag: e.VersionTag,
				})
			}
			opts.Console.EndSession(ctx)
			return nil
		},
	}
}

// NewCatCmd creates the cat command
func NewCatCmd(opts *opts.RootOpts) *cobra.Command {
	var showSHA bool

	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			file, err := svc.GetFile(ctx, args[0])
			if err != nil {
				return errors.Errorf("reading %s: %w", args[0], err)
			}

			if showSHA {
				fmt.Fprintln(cmd.ErrOrStderr(), file.VersionTag)
			}
			_, err = cmd.OutOrStdout().Write(file.Content)
			return err
		},
	}

	cmd.Flags().BoolVar(&showSHA, "sha", false, "print the version tag to stderr")
	return cmd
}

// NewPutCmd creates the put command
func NewPutCmd(opts *opts.RootOpts) *cobra.Command {
	var sha string

	cmd := &cobra.Command{
		Use:   "put <path> [file]",
		Short: "Save a document from a file or stdin",
		Long: `Put writes a document. With --sha the write only succeeds if the document
is still at that version. Without it the current version is read first and
overwritten, or the document is created.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			file, err := svc.SaveFile(ctx, args[0], string(content), sha)
			if err != nil {
				if errors.Is(err, remote.ErrConflict) {
					opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{Path: args[0], Kind: "file", Status: "conflict", IsConflict: true})
					opts.Console.Warning("the document changed since you read it; run cat --sha for the current version")
				}
				return errors.Errorf("saving %s: %w", args[0], err)
			}

			opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{
				Path:       file.Path,
				Kind:       "file",
				Status:     "saved",
				VersionTag: file.VersionTag,
				IsModified: true,
			})
			fmt.Fprintln(cmd.OutOrStdout(), file.VersionTag)
			return nil
		},
	}

	cmd.Flags().StringVar(&sha, "sha", "", "version tag the edit is based on")
	return cmd
}

// NewNewCmd creates the new command
func NewNewCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a seeded markdown document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			file, err := svc.NewDocument(ctx, args[0])
			if err != nil {
				return errors.Errorf("creating %s: %w", args[0], err)
			}

			opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{
				Path:       file.Path,
				Kind:       "file",
				Status:     "created",
				VersionTag: file.VersionTag,
				IsNew:      true,
			})
			fmt.Fprintln(cmd.OutOrStdout(), file.Path)
			return nil
		},
	}
}

// NewRmCmd creates the rm command
func NewRmCmd(opts *opts.RootOpts) *cobra.Command {
	var sha string

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a document at a known version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			if err := svc.DeleteFile(ctx, args[0], sha); err != nil {
				if errors.Is(err, remote.ErrConflict) {
					opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{Path: args[0], Kind: "file", Status: "conflict", IsConflict: true})
				}
				return errors.Errorf("deleting %s: %w", args[0], err)
			}

			opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{
				Path:      args[0],
				Kind:      "file",
				Status:    "deleted",
				IsRemoved: true,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&sha, "sha", "", "version tag to delete (required)")
	_ = cmd.MarkFlagRequired("sha")
	return cmd
}

// readInput reads the named file, or stdin when there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

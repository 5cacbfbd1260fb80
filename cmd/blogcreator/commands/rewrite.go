package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/log"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// NewRewriteCmd creates the rewrite command
func NewRewriteCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		provider string
		style    string
		text     string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [path]",
		Short: "Rewrite text or a stored document with an AI provider",
		Long: `Rewrite sends text to one provider and prints the result.

With a path the stored document is rewritten. --save writes the result back,
conditional on the version that was read, so an edit made in the meantime
is reported as a conflict. Without a path the text comes from --text or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if provider == "" {
				names := opts.Dispatcher.Providers()
				if len(names) == 0 {
					return errors.Errorf("no providers are configured: %w", rewrite.ErrNotConfigured)
				}
				provider = names[0]
			}

			if len(args) == 0 {
				if save {
					return errors.New("--save needs a document path")
				}
				source := text
				if source == "" {
					data, err := readInput(cmd, nil)
					if err != nil {
						return err
					}
					source = string(data)
				}
				result, err := opts.Dispatcher.Dispatch(ctx, rewrite.Request{
					SourceText:   source,
					StyleHint:    style,
					ProviderName: provider,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Text)
				return nil
			}

			svc, err := opts.Content(ctx)
			if err != nil {
				return err
			}

			fr, err := svc.RewriteFile(ctx, args[0], provider, style)
			if err != nil {
				return err
			}

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), fr.Result.Text)
				return nil
			}

			file, err := svc.SaveFile(ctx, fr.Path, fr.Result.Text, fr.VersionTag)
			if err != nil {
				return errors.Errorf("saving rewrite of %s: %w", fr.Path, err)
			}
			opts.Console.LogDocumentOperation(ctx, log.DocumentOperation{
				Path:       file.Path,
				Kind:       "file",
				Status:     "rewritten",
				VersionTag: file.VersionTag,
				IsModified: true,
			})
			opts.Console.Successf("rewritten with %s (%s) in %s", fr.Result.Provider, fr.Result.Style, fr.Result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider name (defaults to the first configured)")
	cmd.Flags().StringVarP(&style, "style", "s", "", "style hint (defaults to the first configured)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to rewrite instead of stdin")
	cmd.Flags().BoolVar(&save, "save", false, "write the rewrite back to the document")
	return cmd
}

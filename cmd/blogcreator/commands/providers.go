package commands

import (
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"golang.org/x/sync/errgroup"
)

// NewProvidersCmd creates the providers command
func NewProvidersCmd(opts *opts.RootOpts) *cobra.Command {
	var models bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the configured rewrite providers",
		Long: `Providers lists every provider with a credential. Providers configured
without one are left out. With --models each provider that can enumerate
its models is asked for them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg := opts.Dispatcher.Registry()
			names := reg.Names()

			if len(names) == 0 {
				pterm.Warning.Println("no providers are configured; set an API key such as GEMINI_API_KEY")
				return nil
			}

			listed := make(map[string]string, len(names))
			if models {
				var mu sync.Mutex
				g, gctx := errgroup.WithContext(ctx)
				for _, name := range names {
					p, _ := reg.Get(name)
					lister, ok := p.(rewrite.ModelLister)
					if !ok {
						continue
					}
					g.Go(func() error {
						found, err := lister.ListModels(gctx)
						text := strings.Join(found, ", ")
						if err != nil {
							text = "error: " + err.Error()
						}
						mu.Lock()
						listed[name] = text
						mu.Unlock()
						return nil
					})
				}
				_ = g.Wait()
			}

			data := pterm.TableData{{"Provider", "Kind"}}
			if models {
				data[0] = append(data[0], "Models")
			}
			for _, name := range names {
				row := []string{name, kindOf(opts, name)}
				if models {
					row = append(row, listed[name])
				}
				data = append(data, row)
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			pterm.Info.Printfln("style hints: %s", strings.Join(opts.Dispatcher.StyleHints(), ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&models, "models", false, "list available models")
	return cmd
}

func kindOf(opts *opts.RootOpts, name string) string {
	if pc, ok := opts.Config.Provider(name); ok {
		return pc.Kind
	}
	return name
}

package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/remote"
	"github.com/walteh/blogcreator/pkg/remote/github"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check store access and provider reachability",
		Long: `Doctor checks, concurrently:
1. that the GitHub token can see the configured repository
2. how much of the API rate limit is left
3. that every configured provider answers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				diag     *github.Diagnostics
				storeErr error
				probes   map[string]error
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				gh, err := opts.GitHub(gctx)
				if err != nil {
					storeErr = err
					return nil
				}
				if gh == nil {
					return nil
				}
				diag, storeErr = gh.Diagnose(gctx)
				return nil
			})
			g.Go(func() error {
				probes = opts.Dispatcher.Probe(gctx)
				return nil
			})
			_ = g.Wait()

			pterm.DefaultSection.Println("Store")
			failed := false
			switch {
			case storeErr != nil:
				failed = true
				pterm.Error.Printfln("%s: %v", opts.StoreName(), storeErr)
				if remote.IsUnauthorized(storeErr) {
					pterm.Warning.Println("the token was rejected; update store.token or GITHUB_TOKEN")
				}
			case diag == nil:
				pterm.Info.Println("using the in-memory store")
			default:
				visibility := "public"
				if diag.Private {
					visibility = "private"
				}
				pterm.Success.Printfln("%s (%s, default branch %s)", diag.Repository, visibility, diag.DefaultBranch)
				printer := pterm.Success
				if diag.RateLimit > 0 && diag.RateRemaining*10 < diag.RateLimit {
					printer = pterm.Warning
				}
				printer.Printfln("rate limit %d/%d, resets in %s",
					diag.RateRemaining, diag.RateLimit, time.Until(diag.RateReset).Round(time.Second))
			}

			pterm.DefaultSection.Println("Providers")
			if len(probes) == 0 {
				pterm.Warning.Println("no providers are configured")
			}
			names := make([]string, 0, len(probes))
			for name := range probes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if err := probes[name]; err != nil {
					failed = true
					pterm.Error.Printfln("%s: %v", name, err)
					continue
				}
				pterm.Success.Println(name)
			}

			if failed {
				return errors.New("some checks failed")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			pterm.Success.Println("all checks passed")
			return nil
		},
	}
}

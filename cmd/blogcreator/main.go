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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/commands"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"

	// provider kinds register themselves
	_ "github.com/walteh/blogcreator/pkg/rewrite/anthropic"
	_ "github.com/walteh/blogcreator/pkg/rewrite/gemini"
	_ "github.com/walteh/blogcreator/pkg/rewrite/ollama"
	_ "github.com/walteh/blogcreator/pkg/rewrite/openai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "blogcreator",
		Short: "Edit markdown documents stored in a GitHub repository",
		Long: `blogcreator treats a GitHub repository as the store for markdown documents.
Every write is conditional on the version you read, so concurrent edits
surface as conflicts instead of silently overwriting each other. Documents
can be rewritten by any configured AI provider.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			if cmd.Name() == "version" {
				return nil
			}
			built, err := newRootOpts(cmd.Context(), cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			*rootOpts = *built
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewServeCmd(rootOpts),
		commands.NewLsCmd(rootOpts),
		commands.NewCatCmd(rootOpts),
		commands.NewPutCmd(rootOpts),
		commands.NewNewCmd(rootOpts),
		commands.NewRmCmd(rootOpts),
		commands.NewProvidersCmd(rootOpts),
		commands.NewRewriteCmd(rootOpts),
		commands.NewDoctorCmd(rootOpts),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/bootstrap"
)

func newIncrementalCmd(g *globalFlags) *cobra.Command {
	var (
		path       string
		fromGit    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "incremental [files...]",
		Short: "Recompute actions for changed files",
		Long: "Recompute porting actions for the given files using the rules already in the cache. " +
			"With --git the changed files are read from the working tree.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, path, bootstrap.WithoutPrefetch())
			if err != nil {
				return err
			}
			ctx := ws.Context(cmd.Context())

			files := args
			if fromGit {
				changed, err := ws.Git.ChangedFiles(ws.Dir)
				if err != nil {
					return fmt.Errorf("listing changed files: %w", err)
				}
				files = append(files, changed...)
			}
			if len(files) == 0 {
				return fmt.Errorf("no changed files (pass files or use --git)")
			}

			if _, err := ws.LoadAnalysis(); err != nil {
				return err
			}
			out, err := ws.IncrementalSolution().RunIncremental(ctx, ws.RuleSet(ctx), files)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderJSON(cmd, out)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderIncremental(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Solution directory")
	cmd.Flags().BoolVar(&fromGit, "git", false, "Add files changed in the git working tree")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/application"
	"github.com/openkraft/portcore/internal/domain"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	return newPortCmd(g, "analyze", "Propose porting actions for every project",
		"Classify every project, fetch its recommendation rules and report the actions they propose.",
		(*application.SolutionPort).AnalysisRun)
}

func newRunCmd(g *globalFlags) *cobra.Command {
	return newPortCmd(g, "run", "Analyze and apply porting actions for every project",
		"Analyze every project, then hand the proposed actions to the rewrite engine.",
		(*application.SolutionPort).Run)
}

type phaseFunc func(*application.SolutionPort, context.Context) (*domain.SolutionResult, error)

func newPortCmd(g *globalFlags, use, short, long string, phase phaseFunc) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   use + " [path]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, pathArg(args))
			if err != nil {
				return err
			}
			ctx := ws.Context(cmd.Context())

			sol, err := ws.PrepareSolution(ctx)
			if err != nil {
				return err
			}
			// templates are only useful once the download is complete
			defer func() { <-sol.PrefetchDone() }()

			result, err := phase(sol, ctx)
			if err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			ws.Record(result)

			if jsonOutput {
				return renderJSON(cmd, result)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSolution(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

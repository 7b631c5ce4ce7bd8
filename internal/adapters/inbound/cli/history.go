package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/bootstrap"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show past analyze and run summaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, pathArg(args), bootstrap.WithoutPrefetch())
			if err != nil {
				return err
			}
			entries, err := ws.History.Load(ws.Dir)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

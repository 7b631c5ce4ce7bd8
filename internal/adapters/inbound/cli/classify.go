package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/bootstrap"
	"github.com/openkraft/portcore/internal/domain"
)

func newClassifyCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify [path]",
		Short: "Print the project type of every analyzed project",
		Long:  "Classify each project of the analyzer dump from its feature vector. The rule cache is not touched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, pathArg(args), bootstrap.WithoutPrefetch())
			if err != nil {
				return err
			}
			ctx := ws.Context(cmd.Context())

			projects, err := ws.LoadAnalysis()
			if err != nil {
				return err
			}
			vectors, err := ws.Detector.DetectMany(ctx, projects)
			if err != nil {
				return fmt.Errorf("detecting features: %w", err)
			}

			types := make(map[string]domain.ProjectType, len(vectors))
			for path, v := range vectors {
				types[path] = domain.Classify(v)
			}

			if jsonOutput {
				return renderJSON(cmd, types)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderClassification(types))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/bootstrap"
)

func newCacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and reset the recommendation rule cache",
	}
	cmd.AddCommand(newCacheStatusCmd(g))
	cmd.AddCommand(newCacheResetCmd(g))
	return cmd
}

func newCacheStatusCmd(g *globalFlags) *cobra.Command {
	var (
		path       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the rule cache directory, age and entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, path, bootstrap.WithoutPrefetch())
			if err != nil {
				return err
			}
			st, err := ws.Cache.Status()
			if err != nil {
				return fmt.Errorf("reading cache: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, st)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCacheStatus(st))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Solution directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheResetCmd(g *globalFlags) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the rule cache if it is past its TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g, path, bootstrap.WithoutPrefetch())
			if err != nil {
				return err
			}
			if err := ws.Cache.Reset(ws.Context(cmd.Context())); err != nil {
				return fmt.Errorf("resetting cache: %w", err)
			}
			st, err := ws.Cache.Status()
			if err != nil {
				return fmt.Errorf("reading cache: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCacheStatus(st))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Solution directory")
	return cmd
}

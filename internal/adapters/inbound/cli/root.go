package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/bootstrap"
	"github.com/openkraft/portcore/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel    string
	logFormat   string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "portcore",
		Short: "Port legacy .NET solutions project by project",
		Long: "portcore classifies every project of a legacy solution, fetches the matching " +
			"recommendation rules into a local cache and reports the porting actions they propose.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if g.metricsFile == "" {
				return nil
			}
			if err := telemetry.WriteTextfile(g.metricsFile); err != nil {
				return fmt.Errorf("writing metrics: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format (text, json); overrides the config")
	cmd.PersistentFlags().StringVar(&g.metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newClassifyCmd(g))
	cmd.AddCommand(newAnalyzeCmd(g))
	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newIncrementalCmd(g))
	cmd.AddCommand(newCacheCmd(g))
	cmd.AddCommand(newHistoryCmd(g))
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// openWorkspace loads the solution in path and applies the logging flags.
func openWorkspace(g *globalFlags, path string, opts ...bootstrap.Option) (*bootstrap.Workspace, error) {
	ws, err := bootstrap.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		lvl, err := logrus.ParseLevel(g.logLevel)
		if err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		ws.Logger.SetLevel(lvl)
	}
	switch g.logFormat {
	case "":
	case "json":
		ws.Logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		ws.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown --log-format %q (valid: text, json)", g.logFormat)
	}
	return ws, nil
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/portcore/internal/adapters/outbound/config"
	"github.com/openkraft/portcore/internal/adapters/outbound/scanner"
	"github.com/openkraft/portcore/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		force  bool
		policy string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .portcore.yaml for a solution",
		Long:  "Discover the solution and project files below path and write a .portcore.yaml porting every project with the default rules.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(pathArg(args))
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			mp := domain.MismatchPolicy(policy)
			if mp != domain.MismatchDrop && mp != domain.MismatchFail {
				return fmt.Errorf("unknown mismatch policy %q (valid: drop, fail)", policy)
			}

			scan, err := scanner.New().Scan(absPath)
			if err != nil {
				return fmt.Errorf("scanning: %w", err)
			}

			if err := os.WriteFile(dest, []byte(generateConfig(scan, mp)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d projects\n", config.FileName, len(scan.Projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .portcore.yaml")
	cmd.Flags().StringVar(&policy, "mismatch-policy", string(domain.MismatchDrop), "What to do with unpaired projects (drop, fail)")

	return cmd
}

func generateConfig(scan *domain.SolutionScan, policy domain.MismatchPolicy) string {
	var b strings.Builder
	b.WriteString("# portcore configuration\n\n")
	if len(scan.Solutions) > 0 {
		fmt.Fprintf(&b, "solution: %s\n", scan.Solutions[0])
	}
	fmt.Fprintf(&b, "analysis: %s\n", domain.DefaultAnalysisFile)
	fmt.Fprintf(&b, "mismatch_policy: %s\n", policy)
	fmt.Fprintf(&b, "parallelism: %d\n\n", domain.DefaultParallelism)

	b.WriteString(`cache:
  ttl_hours: 24
#  dir: .portcore/cache

# remote:
#   kind: http
#   base_url: https://example.com/recommendation
`)

	if len(scan.Projects) == 0 {
		b.WriteString("\n# projects:\n#   - path: App/App.csproj\n#     use_default_rules: true\n")
		return b.String()
	}
	b.WriteString("\nprojects:\n")
	for _, p := range scan.Projects {
		fmt.Fprintf(&b, "  - path: %s\n    use_default_rules: true\n", p)
	}
	return b.String()
}

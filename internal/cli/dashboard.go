package cli

import (
	"context"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [resume-file] [job-description-file]",
	Short: "Compute dashboard metrics: coverage, warnings, ATS estimate, readability",
	Long: `Compute the dashboard summary of a resume. Without a job description
the metrics describe the resume alone and the keyword chart shows neutral
values.`,
	Args: documentArgs(&dashboardOpts, 1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &dashboardOpts.CommandConfig)
	},
	RunE: runDashboard,
}

var dashboardOpts inputOptions

func init() {
	addInputFlags(dashboardCmd, &dashboardOpts)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	runner, fp := newRunner(cmd)

	op := func(ctx context.Context, in documentPair) (types.DashboardMetrics, error) {
		metrics := analysis.ComputeDashboardMetrics(in.Resume, in.JobDescription)
		runner.Metrics.RecordAnalysis(ctx, "dashboard", metrics.AtsScore, len(in.Resume), len(in.JobDescription))
		return metrics, nil
	}

	return common.RunCommand(cmd.Context(), runner, dashboardOpts.CommandConfig,
		documentLoader(cmd, fp, &dashboardOpts, args), pairInput, op, logPair(cmd, "Computing dashboard metrics"))
}

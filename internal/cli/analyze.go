package cli

import (
	"context"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Run every analysis over a resume and job description",
	Long: `Produce a combined report: the parsed resume, keywords of both
documents, the ATS score and the dashboard metrics.`,
	Args: documentArgs(&analyzeOpts, 1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &analyzeOpts.CommandConfig)
	},
	RunE: runAnalyze,
}

var analyzeOpts inputOptions

func init() {
	addInputFlags(analyzeCmd, &analyzeOpts)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)

	op := func(ctx context.Context, in documentPair) (types.AnalysisReport, error) {
		report := analysis.Analyze(in.Resume, in.JobDescription)
		runner.Metrics.RecordAnalysis(ctx, "analyze", report.Ats.Score, len(in.Resume), len(in.JobDescription))
		return report, nil
	}

	err := common.RunCommand(cmd.Context(), runner, analyzeOpts.CommandConfig,
		documentLoader(cmd, fp, &analyzeOpts, args), pairInput, op, logPair(cmd, "Starting analysis"))
	if err != nil {
		return err
	}
	logger.Info("Analysis completed successfully")
	return nil
}

package cli

import (
	"context"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file] [job-description-file]",
	Short: "Compute the ATS keyword-match score of a resume",
	Long: `Compute the ATS score: the share of the job description's leading
keywords that appear in the resume, scaled into 12-98, with matched and
missing keywords and recommendations.`,
	Args: documentArgs(&scoreOpts, 2, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &scoreOpts.CommandConfig)
	},
	RunE: runScore,
}

var scoreOpts inputOptions

func init() {
	addInputFlags(scoreCmd, &scoreOpts)
}

// documentPair is a resume with an optional job description.
type documentPair struct {
	Resume         string
	JobDescription string
}

func pairInput(contents []string) (documentPair, error) {
	resume, jd, err := resumeAndJD(contents)
	return documentPair{Resume: resume, JobDescription: jd}, err
}

func logPair(cmd *cobra.Command, msg string) common.LogDetailsFunc[documentPair] {
	logger := getLoggerFromContext(cmd.Context())
	return func(in documentPair, cfg common.CommandConfig) {
		logger.Info(msg,
			"resume_chars", len(in.Resume),
			"job_chars", len(in.JobDescription),
			"output_format", cfg.OutputFormat)
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)

	op := func(ctx context.Context, in documentPair) (types.AtsScoreResult, error) {
		result := analysis.CalculateATSScore(in.Resume, in.JobDescription)
		runner.Metrics.RecordAnalysis(ctx, "score", result.Score, len(in.Resume), len(in.JobDescription))
		logger.Info("ATS score computed",
			"score", result.Score,
			"matched", len(result.MatchedKeywords),
			"missing", len(result.MissingKeywords))
		return result, nil
	}

	return common.RunCommand(cmd.Context(), runner, scoreOpts.CommandConfig,
		documentLoader(cmd, fp, &scoreOpts, args), pairInput, op, logPair(cmd, "Starting ATS scoring"))
}

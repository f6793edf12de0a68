package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/common"
	"atsmatch/internal/config"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [resume-file] [job-description-file]",
	Short: "Suggest an AI rewrite of the resume summary and bullets",
	Long: `Ask the configured AI provider for a rewritten summary and
experience bullets that cover the job description's missing keywords.
Requires an AI API key (ATSMATCH_AI_APIKEY or ai.apiKey).`,
	Args: documentArgs(&rewriteOpts, 2, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &rewriteOpts.CommandConfig)
	},
	RunE: runRewrite,
}

var rewriteOpts inputOptions

func init() {
	addInputFlags(rewriteCmd, &rewriteOpts)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)

	services := newAIServices(cfg, logger)
	defer func() { _ = services.Close() }()

	logDetails := func(input types.RewriteInput, cc common.CommandConfig) {
		logger.Info("Starting resume rewrite",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"ats_score", input.Ats.Score,
			"output_format", cc.OutputFormat)
	}

	rewriteOperation := func(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *ai.TokenUsage, error) {
		return services.RewriteSummary(ctx, input)
	}

	err := common.RunAICommand(cmd.Context(), runner, config.OperationRewrite, rewriteOpts.CommandConfig,
		documentLoader(cmd, fp, &rewriteOpts, args), rewriteInput, rewriteOperation, logDetails)
	if err != nil {
		return fmt.Errorf("failed to rewrite resume: %w", err)
	}
	logger.Info("Resume rewrite completed successfully")
	return nil
}

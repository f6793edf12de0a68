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

var interviewCmd = &cobra.Command{
	Use:   "interview [resume-file] [job-description-file]",
	Short: "Generate likely interview questions with AI",
	Long: `Ask the configured AI provider for up to six interview questions,
each with the area it probes, based on the resume, the job description
and the keyword gaps between them.`,
	Args: documentArgs(&interviewOpts, 2, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &interviewOpts.CommandConfig)
	},
	RunE: runInterview,
}

var interviewOpts inputOptions

func init() {
	addInputFlags(interviewCmd, &interviewOpts)
}

func runInterview(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)

	services := newAIServices(cfg, logger)
	defer func() { _ = services.Close() }()

	logDetails := func(input types.InterviewInput, cc common.CommandConfig) {
		logger.Info("Starting interview preparation",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"missing_keywords", len(input.Ats.MissingKeywords),
			"output_format", cc.OutputFormat)
	}

	interviewOperation := func(ctx context.Context, input types.InterviewInput) (types.InterviewOutput, *ai.TokenUsage, error) {
		return services.InterviewQuestions(ctx, input)
	}

	err := common.RunAICommand(cmd.Context(), runner, config.OperationInterview, interviewOpts.CommandConfig,
		documentLoader(cmd, fp, &interviewOpts, args), interviewInput, interviewOperation, logDetails)
	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}
	logger.Info("Interview preparation completed successfully")
	return nil
}

package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/config"
	"atsmatch/internal/coverletter"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter [resume-file] [job-description-file]",
	Short: "Draft a cover letter for a company and role",
	Long: `Draft a cover letter from the parsed resume and the job description.
By default a fixed template is filled in; --ai asks the configured AI
provider instead.`,
	Args: documentArgs(&coverLetterOpts.inputOptions, 2, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &coverLetterOpts.CommandConfig)
	},
	RunE: runCoverLetter,
}

var coverLetterOpts struct {
	inputOptions
	company string
	role    string
	useAI   bool
}

func init() {
	addInputFlags(coverLetterCmd, &coverLetterOpts.inputOptions)
	coverLetterCmd.Flags().StringVar(&coverLetterOpts.company, "company", "", "Company name")
	coverLetterCmd.Flags().StringVar(&coverLetterOpts.role, "role", "", "Role title")
	coverLetterCmd.Flags().BoolVar(&coverLetterOpts.useAI, "ai", false, "Write the letter with the AI provider")
	_ = coverLetterCmd.MarkFlagRequired("company")
	_ = coverLetterCmd.MarkFlagRequired("role")
}

func coverLetterInput(contents []string) (types.CoverLetterInput, error) {
	pair, err := pairInput(contents)
	if err != nil {
		return types.CoverLetterInput{}, err
	}
	return types.CoverLetterInput{
		Resume:         analysis.ParseResumeText(pair.Resume),
		JobDescription: pair.JobDescription,
		CompanyName:    coverLetterOpts.company,
		RoleTitle:      coverLetterOpts.role,
	}, nil
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)
	load := documentLoader(cmd, fp, &coverLetterOpts.inputOptions, args)

	logDetails := func(input types.CoverLetterInput, cc common.CommandConfig) {
		logger.Info("Drafting cover letter",
			"company", input.CompanyName,
			"role", input.RoleTitle,
			"ai", coverLetterOpts.useAI,
			"output_format", cc.OutputFormat)
	}

	var err error
	if coverLetterOpts.useAI {
		services := newAIServices(cfg, logger)
		defer func() { _ = services.Close() }()

		op := func(ctx context.Context, input types.CoverLetterInput) (types.CoverLetterOutput, *ai.TokenUsage, error) {
			return services.CoverLetter(ctx, input)
		}
		err = common.RunAICommand(cmd.Context(), runner, config.OperationCoverLetter, coverLetterOpts.CommandConfig,
			load, coverLetterInput, op, logDetails)
	} else {
		op := func(_ context.Context, input types.CoverLetterInput) (types.CoverLetterOutput, error) {
			return coverletter.Generate(input), nil
		}
		err = common.RunCommand(cmd.Context(), runner, coverLetterOpts.CommandConfig,
			load, coverLetterInput, op, logDetails)
	}
	if err != nil {
		return fmt.Errorf("failed to draft cover letter: %w", err)
	}
	return nil
}

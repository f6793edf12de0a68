package cli

import (
	"context"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Parse a resume into name, headline, summary, skills, experience and education",
	Args:  documentArgs(&parseOpts, 1, 1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &parseOpts.CommandConfig)
	},
	RunE: runParse,
}

var parseOpts inputOptions

func init() {
	addInputFlags(parseCmd, &parseOpts)
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)

	createInput := func(contents []string) (string, error) {
		resume, _, err := resumeAndJD(contents)
		return resume, err
	}

	op := func(_ context.Context, resume string) (types.ParsedResume, error) {
		parsed := analysis.ParseResumeText(resume)
		logger.Info("Resume parsed",
			"skills", len(parsed.Skills),
			"experience_lines", len(parsed.Experience),
			"education_lines", len(parsed.Education))
		return parsed, nil
	}

	return common.RunCommand(cmd.Context(), runner, parseOpts.CommandConfig,
		documentLoader(cmd, fp, &parseOpts, args), createInput, op, nil)
}

package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [file]",
	Short: "List the top keywords of a resume or job description",
	Long: `List the most frequent keywords of a document.

The extraction profile ranks words by frequency, ties broken by first
appearance. The scoring profile lists the distinct tokens the ATS score
compares, in first-seen order. A limit of zero or less yields no keywords.`,
	Args: documentArgs(&keywordsOpts.inputOptions, 1, 1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if !cmd.Flags().Changed("limit") {
			keywordsOpts.limit = cfg.Analysis.KeywordLimit
		}
		if !cmd.Flags().Changed("profile") {
			keywordsOpts.profile = cfg.Analysis.KeywordProfile
		}
		if _, ok := analysis.ParseProfile(keywordsOpts.profile); !ok {
			return fmt.Errorf("invalid profile %q (must be 'extraction' or 'scoring')", keywordsOpts.profile)
		}
		return prepareOutput(cmd, &keywordsOpts.CommandConfig)
	},
	RunE: runKeywords,
}

var keywordsOpts struct {
	inputOptions
	limit   int
	profile string
}

func init() {
	addInputFlags(keywordsCmd, &keywordsOpts.inputOptions)
	keywordsCmd.Flags().IntVarP(&keywordsOpts.limit, "limit", "n", 0, "Maximum number of keywords (default from config)")
	keywordsCmd.Flags().StringVar(&keywordsOpts.profile, "profile", "", "Tokenizer profile: extraction or scoring (default from config)")

	_ = keywordsCmd.RegisterFlagCompletionFunc("profile", cobra.FixedCompletions(
		[]string{string(analysis.ProfileExtraction), string(analysis.ProfileScoring)}, cobra.ShellCompDirectiveNoFileComp))
}

func runKeywords(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	runner, fp := newRunner(cmd)
	profile, _ := analysis.ParseProfile(keywordsOpts.profile)

	createInput := func(contents []string) (string, error) {
		text, _, err := resumeAndJD(contents)
		return text, err
	}

	logDetails := func(text string, cfg common.CommandConfig) {
		logger.Info("Extracting keywords",
			"chars", len(text),
			"profile", profile,
			"limit", keywordsOpts.limit,
			"output_format", cfg.OutputFormat)
	}

	op := func(_ context.Context, text string) (types.KeywordsResult, error) {
		return types.KeywordsResult{
			Profile:  string(profile),
			Limit:    keywordsOpts.limit,
			Keywords: analysis.Keywords(text, profile, keywordsOpts.limit),
		}, nil
	}

	return common.RunCommand(cmd.Context(), runner, keywordsOpts.CommandConfig,
		documentLoader(cmd, fp, &keywordsOpts.inputOptions, args),
		createInput, op, logDetails)
}

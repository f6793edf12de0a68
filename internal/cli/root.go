package cli

import (
	"context"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "atsmatch",
	Short: "Score resumes against job descriptions",
	Long: `atsmatch analyses a resume against a job description the way an
applicant tracking system would: keyword extraction, structural parsing,
an ATS keyword score and dashboard metrics. It can also draft a cover
letter and, with an AI key configured, suggest rewrites and interview
questions.

Inputs may be local .txt, .md, .pdf or .docx files or s3://bucket/key
references.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(coverLetterCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

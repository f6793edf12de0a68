package cli

import (
	"fmt"
	"time"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/session"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the saved resume and job description",
	Long: `The session holds one resume and job description pair. Analysis
commands read it with --from-session. Saving overwrites the previous pair.`,
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save [resume-file] [job-description-file]",
	Short: "Save a resume and optional job description as the session",
	Args:  cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !types.SessionSource(sessionOpts.source).Valid() {
			return fmt.Errorf("invalid source %q (must be 'upload', 'demo' or 'manual')", sessionOpts.source)
		}
		return prepareOutput(cmd, &sessionOpts.CommandConfig)
	},
	RunE: runSessionSave,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved session",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &sessionOpts.CommandConfig)
	},
	RunE: runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved session",
	Args:  cobra.NoArgs,
	RunE:  runSessionClear,
}

var sessionDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Save the built-in demo resume and job description as the session",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &sessionOpts.CommandConfig)
	},
	RunE: runSessionDemo,
}

var sessionOpts struct {
	common.CommandConfig
	source string
}

func init() {
	sessionCmd.PersistentFlags().StringVar(&sessionOpts.OutputFormat, "format", "", "Output format: json, text, or markdown")
	sessionSaveCmd.Flags().StringVar(&sessionOpts.source, "source", string(types.SessionSourceUpload), "How the texts were provided: upload or manual")

	sessionCmd.AddCommand(sessionSaveCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionDemoCmd)
}

// withSessionStore opens the configured store for the duration of fn.
func withSessionStore(cmd *cobra.Command, fn func(session.Store) error) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	store, err := openSessionStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}()
	return fn(store)
}

func saveAndShow(cmd *cobra.Command, s types.AnalysisSession) error {
	logger := getLoggerFromContext(cmd.Context())
	runner, _ := newRunner(cmd)

	return withSessionStore(cmd, func(store session.Store) error {
		if err := store.Save(cmd.Context(), s); err != nil {
			return err
		}
		logger.Info("Session saved",
			"source", s.Source,
			"resume_chars", len(s.ResumeText),
			"job_chars", len(s.JobDescriptionText))
		return runner.Output.HandleOutput(s, sessionOpts.CommandConfig)
	})
}

func runSessionSave(cmd *cobra.Command, args []string) error {
	_, fp := newRunner(cmd)
	contents, err := fp.ReadDocuments(cmd.Context(), args...)
	if err != nil {
		return err
	}
	resume, jd, err := resumeAndJD(contents)
	if err != nil {
		return err
	}

	return saveAndShow(cmd, types.AnalysisSession{
		ResumeText:         resume,
		JobDescriptionText: jd,
		Source:             types.SessionSource(sessionOpts.source),
		UpdatedAt:          time.Now().UTC(),
	})
}

func runSessionDemo(cmd *cobra.Command, args []string) error {
	return saveAndShow(cmd, session.Demo(analysis.DemoResumeText, analysis.DemoJobDescription, time.Now()))
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	runner, _ := newRunner(cmd)
	return withSessionStore(cmd, func(store session.Store) error {
		s, err := store.Load(cmd.Context())
		if err != nil {
			if isSessionMiss(err) {
				return session.NotFoundError()
			}
			return err
		}
		return runner.Output.HandleOutput(s, sessionOpts.CommandConfig)
	})
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	return withSessionStore(cmd, func(store session.Store) error {
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		logger.Info("Session cleared")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
		return err
	})
}

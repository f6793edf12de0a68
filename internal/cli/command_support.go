package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"atsmatch/internal/common"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/session"

	"github.com/spf13/cobra"
)

// inputOptions are the flags shared by commands that read a resume and an
// optional job description.
type inputOptions struct {
	common.CommandConfig
	FromSession bool
}

func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	addOutputFlags(cmd, &opts.CommandConfig)
	cmd.Flags().BoolVar(&opts.FromSession, "from-session", false, "Read the resume and job description from the saved session")
}

// prepareOutput applies the configured default format and validates it.
func prepareOutput(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	cc.OutputFormat = common.ResolveOutputFormat(cc.OutputFormat, cfg.App.DefaultFormat)
	return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
}

// documentArgs accepts between minArgs and maxArgs file arguments, or none
// when --from-session is set.
func documentArgs(opts *inputOptions, minArgs, maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if opts.FromSession {
			if len(args) != 0 {
				return fmt.Errorf("--from-session takes no file arguments, got %d", len(args))
			}
			return nil
		}
		return cobra.RangeArgs(minArgs, maxArgs)(cmd, args)
	}
}

func newRunner(cmd *cobra.Command) (*common.Runner, *common.FileProcessor) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	fp := common.NewFileProcessor(cfg, nil, logger)
	return &common.Runner{
		Output: common.NewOutputHandler(fp, cmd.OutOrStdout(), logger),
		Logger: logger,
	}, fp
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *errors.Logger) (session.Store, error) {
	return session.NewStore(ctx, cfg.Session, logger)
}

// documentLoader reads args as documents, or the saved session pair. The
// loaded slice always holds the resume first and, when present, the job
// description second.
func documentLoader(cmd *cobra.Command, fp *common.FileProcessor, opts *inputOptions, args []string) common.ContentLoader {
	if !opts.FromSession {
		return common.FilesLoader(fp, args...)
	}
	return func(ctx context.Context) ([]string, error) {
		cfg := getConfigFromContext(ctx)
		logger := getLoggerFromContext(ctx)

		store, err := openSessionStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close session store", "error", err)
			}
		}()

		s, err := store.Load(ctx)
		if err != nil {
			if isSessionMiss(err) {
				return nil, session.NotFoundError()
			}
			return nil, err
		}
		logger.Debug("Loaded analysis session", "source", s.Source, "updated_at", s.UpdatedAt)
		return []string{s.ResumeText, s.JobDescriptionText}, nil
	}
}

// resumeAndJD splits loaded contents into the resume and job description.
func resumeAndJD(contents []string) (string, string, error) {
	switch len(contents) {
	case 1:
		return contents[0], "", nil
	case 2:
		return contents[0], contents[1], nil
	default:
		return "", "", fmt.Errorf("expected 1 or 2 documents, got %d", len(contents))
	}
}

func isSessionMiss(err error) bool {
	return stderrors.Is(err, session.ErrNotFound)
}

package cli

import (
	"context"
	"fmt"
	"time"

	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/extract"
	"atsmatch/internal/watcher"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [resume-file] [job-description-file]",
	Short: "Recompute the analysis whenever the resume or job description changes",
	Long: `Print the analysis once, then again every time one of the files is
saved. Rapid successive saves are collapsed by --debounce. Stop with Ctrl+C.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			if extract.IsS3URI(arg) {
				return fmt.Errorf("watch needs local files, got %s", arg)
			}
		}
		switch watchOpts.view {
		case "dashboard", "score", "analyze":
		default:
			return fmt.Errorf("invalid view %q (must be 'dashboard', 'score' or 'analyze')", watchOpts.view)
		}
		return prepareOutput(cmd, &watchOpts.CommandConfig)
	},
	RunE: runWatch,
}

var watchOpts struct {
	common.CommandConfig
	view     string
	debounce time.Duration
}

func init() {
	watchCmd.Flags().StringVar(&watchOpts.OutputFormat, "format", "", "Output format: json, text, or markdown")
	watchCmd.Flags().StringVar(&watchOpts.view, "view", "dashboard", "What to print: dashboard, score or analyze")
	watchCmd.Flags().DurationVar(&watchOpts.debounce, "debounce", 300*time.Millisecond, "Quiet period before recomputing")
}

// watchView computes the selected view of a document pair.
func watchView(view string, in documentPair) any {
	switch view {
	case "score":
		return analysis.CalculateATSScore(in.Resume, in.JobDescription)
	case "analyze":
		return analysis.Analyze(in.Resume, in.JobDescription)
	default:
		return analysis.ComputeDashboardMetrics(in.Resume, in.JobDescription)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := getLoggerFromContext(ctx)
	runner, fp := newRunner(cmd)

	recompute := func(ctx context.Context) error {
		return common.RunCommand(ctx, runner, watchOpts.CommandConfig,
			common.FilesLoader(fp, args...), pairInput,
			func(_ context.Context, in documentPair) (any, error) {
				return watchView(watchOpts.view, in), nil
			}, nil)
	}

	if err := recompute(ctx); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	w := watcher.New(args, watchOpts.debounce, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, logger)
	if err := w.Start(); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil
		case <-changes:
			logger.Info("Input changed, recomputing", "view", watchOpts.view)
			// A half-written file is reported and the watch continues.
			if err := recompute(ctx); err != nil {
				logger.LogError(err, "Recomputation failed")
			}
		}
	}
}

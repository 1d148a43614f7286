package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"logsweep/internal/history"
	"logsweep/internal/logging"
	"logsweep/internal/position"
	"logsweep/internal/render"
	"logsweep/internal/sweep"
)

// summaryToken is the literal positional flag that enables summary emission.
// It can occupy any of the three optional positions and is never read as a
// context count.
const summaryToken = "summary"

func newScanCommand(ctx *commandContext) *cobra.Command {
	var rawOutput bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan LOGFILE MODULE PATTERN [UP] [BOTTOM] [summary]",
		Short: "Scan a log file for pattern matches appended since the last run",
		Long: `Scan reads LOGFILE forward from the position persisted for (MODULE, LOGFILE)
and reports lines matching PATTERN case-insensitively. The first run for a
pair establishes a baseline at the current end of file and reports nothing.
UP and BOTTOM select context lines around each match; the literal token
"summary" in any optional position appends a match-count summary.`,
		Args: cobra.RangeArgs(3, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseScanArgs(args)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			mode, err := render.ParseMode(cfg.Output.Mode)
			if err != nil {
				return err
			}
			if rawOutput {
				mode = render.ModeRaw
			}

			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{
				Level:  level,
				Format: cfg.Logging.Format,
				Writer: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			store, err := position.NewStore(cfg.Paths.StateDir)
			if err != nil {
				return err
			}

			var hist *history.Store
			if cfg.History.Enabled {
				hist, err = history.Open(cfg.HistoryPath())
				if err != nil {
					return err
				}
				defer hist.Close()
			}

			outcome, err := sweep.New(store, hist, logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			pruneHistory(cmd.Context(), logger, hist, cfg.History.RetentionDays)

			groups := make([][]string, 0, len(outcome.Result.Groups))
			for _, g := range outcome.Result.Groups {
				groups = append(groups, g.Lines)
			}
			return render.Write(cmd.OutOrStdout(), mode, render.Report{
				Module:       req.Module,
				Groups:       groups,
				TotalMatches: outcome.Result.TotalMatches,
				Summary:      req.Summary,
			})
		},
	}

	cmd.Flags().BoolVar(&rawOutput, "raw", false, "Concatenate matched lines verbatim instead of wrapped markup")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug tracing on stdout")
	return cmd
}

// parseScanArgs maps the positional invocation contract onto an explicit
// request. Every parameter is trimmed of surrounding whitespace, including
// carriage returns from agents that ship configs with CRLF endings. Optional
// tokens are consumed in order as up-count then bottom-count, except the
// summary token, which is recognized in any optional position.
func parseScanArgs(args []string) (sweep.Request, error) {
	req := sweep.Request{
		LogPath: strings.TrimSpace(args[0]),
		Module:  strings.TrimSpace(args[1]),
		Pattern: strings.TrimSpace(args[2]),
	}
	if req.LogPath == "" || req.Module == "" {
		return sweep.Request{}, fmt.Errorf("log file and module must not be blank")
	}

	for _, raw := range args[3:] {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.EqualFold(token, summaryToken) {
			req.Summary = true
			continue
		}
		count, err := strconv.Atoi(token)
		if err != nil || count < 0 {
			return sweep.Request{}, fmt.Errorf("context count %q: expected a non-negative integer or %q", raw, summaryToken)
		}
		switch {
		case req.Up == nil:
			req.Up = &count
		case req.Bottom == nil:
			req.Bottom = &count
		default:
			return sweep.Request{}, fmt.Errorf("too many context counts: %q", raw)
		}
	}
	return req, nil
}

// pruneHistory opportunistically trims old history rows. Failures never
// affect the scan outcome.
func pruneHistory(ctx context.Context, logger *slog.Logger, hist *history.Store, retentionDays int) {
	if hist == nil || retentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := hist.Prune(ctx, cutoff); err != nil {
		logger.Warn("prune history", "error", err)
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"logsweep/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [MODULE]",
		Short: "Show recent scan runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history recording is disabled in the configuration")
			}

			module := ""
			if len(args) == 1 {
				module = strings.TrimSpace(args[0])
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), module, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scan runs recorded")
				return nil
			}

			titler := cases.Title(language.English)
			headers := []string{"Scanned", "Module", "Log", "Matches", "Offsets", "Flags"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ScannedAt.Local().Format("2006-01-02 15:04:05"),
					titler.String(run.Module),
					run.LogPath,
					strconv.Itoa(run.TotalMatches),
					fmt.Sprintf("%d..%d", run.StartOffset, run.EndOffset),
					runFlags(run),
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func runFlags(run history.Run) string {
	switch {
	case run.Baseline:
		return "baseline"
	case run.Rotated:
		return "rotated"
	default:
		return ""
	}
}

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"vinaudit/internal/config"
	"vinaudit/internal/exporter"
	"vinaudit/internal/fleet"
	"vinaudit/internal/importer"
	"vinaudit/internal/nhtsa"
	"vinaudit/internal/parser"
	"vinaudit/internal/store"
	"vinaudit/internal/util"
	"vinaudit/pkg/logger"
)

func newProcessCmd(a *app) *cobra.Command {
	var (
		outDir      string
		concurrency int
		openAudit   bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Audit a vehicle list (.xlsx, .xlsm or .csv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if concurrency > 0 {
				a.cfg.Lookup.Concurrency = concurrency
			}

			var st *store.Store
			if !noHistory {
				st = openHistory(a.cfg, a.logger)
				if st != nil {
					defer st.Close()
				}
			}

			coordinator := importer.NewCoordinator(importer.Options{
				Store: st,
				Lookup: nhtsa.NewClient(nhtsa.Options{
					BaseURL:            a.cfg.Lookup.BaseURL,
					Timeout:            a.cfg.Lookup.Timeout(),
					InsecureSkipVerify: a.cfg.Lookup.InsecureSkipVerify,
					UserAgent:          a.cfg.Lookup.UserAgent,
				}, a.logger),
				Parser: parser.Options{
					SheetName: a.cfg.Input.SheetName,
					HeaderRow: a.cfg.Input.HeaderRow,
				},
				Export: exporter.Options{
					Country:     a.cfg.Export.Country,
					ValidFormat: a.cfg.Export.ValidFormat,
				},
				Concurrency: a.cfg.Lookup.Concurrency,
				Logger:      a.logger,
			})

			progress := func(evt importer.ProgressEvent) {
				if evt.Type == "info" || evt.Type == "progress" {
					a.logger.Debug(evt.Message, logger.String("type", evt.Type))
				}
			}

			result, err := coordinator.Run(cmd.Context(), importer.RunOptions{
				FilePath:  input,
				OutputDir: outDir,
			}, progress)
			if err != nil {
				return fmt.Errorf("processing failed (%s): %w", importer.FailureReason(err), err)
			}

			printResult(cmd.OutOrStdout(), result)

			if openAudit {
				if err := util.OpenWithFallback(result.AuditPath); err != nil {
					a.logger.Warn("failed to open audit workbook", logger.Error(err))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: next to the input file)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "lookups in flight (default: lookup.concurrency from config)")
	cmd.Flags().BoolVar(&openAudit, "open", false, "open the audit workbook when done")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the run in the history database")
	return cmd
}

// openHistory 运行历史不可用时只告警，不影响处理
func openHistory(cfg *config.AppConfig, log *logger.Logger) *store.Store {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Warn("run history disabled", logger.Error(err))
		return nil
	}
	st, err := store.New(filepath.Join(dataDir, "vinaudit.db"))
	if err != nil {
		log.Warn("run history disabled", logger.Error(err))
		return nil
	}
	return st
}

func printResult(w io.Writer, result *importer.RunResult) {
	fmt.Fprintln(w, "Vehicles:")
	for _, line := range fleet.VehicleLines(result.Summary) {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if lines := fleet.UnconfirmedLines(result.Summary); len(lines) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Unconfirmed vehicles:")
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d  Valid: %d  Manual checks: %d  Dropped rows: %d\n",
		result.Totals.Records, result.Totals.Valid, result.Totals.ManualChecks, result.Totals.DroppedRows)
	fmt.Fprintf(w, "Audit: %s\n", result.AuditPath)
	fmt.Fprintf(w, "Valid: %s\n", result.ValidPath)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rsiassist/internal/core/model"
	"rsiassist/internal/storage"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the timer service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := newClient(cfg, log.New(io.Discard, "", 0))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout(cfg))
			defer cancel()
			status, err := client.Status(ctx)
			if err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var days int
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print daily break statistics, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := newClient(cfg, log.New(io.Discard, "", 0))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout(cfg))
			defer cancel()
			rows, err := client.Statistics(ctx, days)
			if err != nil {
				return err
			}
			writeStats(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	stats.Flags().IntVar(&days, "days", 7, "number of days to show")
	return stats
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the runtime configuration and the locally saved break schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			store := storage.NewSettingsStore(cfg.Store.Dir)
			layer, found, err := store.LoadBreakConfig()
			if err != nil {
				return err
			}
			document := struct {
				Runtime     any               `yaml:"runtime"`
				SettingsAt  string            `yaml:"settings_file"`
				SavedLocal  bool              `yaml:"saved_locally"`
				BreakConfig model.BreakConfig `yaml:"break_config"`
			}{
				Runtime:     cfg,
				SettingsAt:  store.Path(),
				SavedLocal:  found,
				BreakConfig: model.Resolve(model.DefaultBreakConfig(), layer),
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(document); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return encoder.Close()
		},
	})
	return configCmd
}

func writeStatus(out io.Writer, status model.TimerStatus) {
	_, _ = fmt.Fprintf(out, "mode: %s\n", status.Mode)
	_, _ = fmt.Fprintf(out, "microbreak: %s / %s%s\n", model.FormatClock(status.MicroActive), model.FormatClock(status.MicroTarget), overdueSuffix(status.MicroIsOverdue))
	_, _ = fmt.Fprintf(out, "rest break: %s / %s%s\n", model.FormatClock(status.RestActive), model.FormatClock(status.RestTarget), overdueSuffix(status.RestIsOverdue))
	_, _ = fmt.Fprintf(out, "daily usage: %.1fh / %.1fh\n", float64(status.DailyUsage)/3600, float64(status.DailyLimit)/3600)
	_, _ = fmt.Fprintf(out, "idle: %s\n", model.FormatClock(status.CurrentIdle))
}

func writeStats(out io.Writer, rows []model.DailyStats) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "no statistics")
		return
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(out, "%s\tusage %.1fh\tmicro %d/%d taken, %d postponed\trest %d/%d taken, %d postponed\tcompliance %.0f%%\n",
			row.Date, row.UsageHours(),
			row.MicroPromptedTaken, row.MicroPrompts, row.MicroPostponed,
			row.RestPromptedTaken, row.RestPrompts, row.RestPostponed,
			row.ComplianceRate())
	}
}

func overdueSuffix(overdue bool) string {
	if overdue {
		return " (overdue)"
	}
	return ""
}

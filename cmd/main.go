package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"rsiassist/internal/config"
	"rsiassist/internal/remote"
)

const appName = "RSIAssist"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	serverURL  string
	storeDir   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "rsiassist",
		Short:         "Break reminders driven by a remote timer service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runGUI(cfg, log.New(os.Stdout, "rsiassist ", log.LstdFlags))
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath(), "runtime configuration file")
	root.PersistentFlags().StringVar(&flags.serverURL, "server", "", "timer service base URL (overrides the config file)")
	root.PersistentFlags().StringVar(&flags.storeDir, "store-dir", "", "directory of the local settings document")

	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func (flags *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.serverURL != "" {
		cfg.Remote.BaseURL = flags.serverURL
	}
	if flags.storeDir != "" {
		cfg.Store.Dir = flags.storeDir
	}
	return cfg, nil
}

func newClient(cfg *config.Config, logger *log.Logger) (*remote.Client, error) {
	return remote.NewClient(remote.Options{
		BaseURL:   cfg.Remote.BaseURL,
		Timeout:   cfg.Remote.Timeout,
		RateLimit: rate.Limit(cfg.Remote.RateLimitPerSec),
		Burst:     cfg.Remote.Burst,
		StatsTTL:  cfg.Remote.StatsTTL,
		Logger:    logger,
	})
}

func callTimeout(cfg *config.Config) time.Duration {
	return 2 * cfg.Remote.Timeout
}

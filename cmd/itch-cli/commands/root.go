package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"itchscraper/internal/components/configutil"
	"itchscraper/internal/components/httpdump"
	"itchscraper/internal/components/serviceutil"
	"itchscraper/internal/components/telemetry"
	"itchscraper/internal/scrapers/itchio"

	"github.com/lepinkainen/humanlog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type Config struct {
	UserAgent          string           `json:"user_agent"`
	TimeoutSeconds     int              `json:"timeout_seconds"`
	RequestsPerSecond  float64          `json:"requests_per_second"`
	Burst              int              `json:"burst"`
	ParseWorkers       int              `json:"parse_workers"`
	ResolveConcurrency int              `json:"resolve_concurrency"`
	Telemetry          telemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	TimeoutSeconds:     30,
	RequestsPerSecond:  2,
	Burst:              2,
	ResolveConcurrency: 4,
}

func (c Config) clientOptions() itchio.ClientOptions {
	return itchio.ClientOptions{
		UserAgent:          c.UserAgent,
		Timeout:            time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond:  c.RequestsPerSecond,
		Burst:              c.Burst,
		ParseWorkers:       c.ParseWorkers,
		ResolveConcurrency: c.ResolveConcurrency,
	}
}

var (
	configPath *string
	verbose    *bool
	dumpDir    *string

	tel    telemetry.Telemetry
	client *itchio.Client
)

var rootCmd = &cobra.Command{
	Use:           "itch-cli",
	Short:         "itch-cli is a CLI for scraping game and download information off of itch.io.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging(*verbose)

		readConfig := configutil.ReadWithDefaults[Config]
		if !cmd.Flags().Changed("config") {
			readConfig = configutil.ReadRecursivelyWithDefaults[Config]
		}
		cfg, err := readConfig(*configPath, defaultConfig)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		tel, err = telemetry.Setup(cmd.Context(), "itch-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		opts := cfg.clientOptions()
		if *dumpDir != "" {
			opts.Dump, err = httpdump.NewDirOutput(afero.NewOsFs(), *dumpDir)
			if err != nil {
				return fmt.Errorf("create dump dir: %w", err)
			}
		}

		client, err = itchio.NewClient(telemetry.NewOtelAPI(telemetry.SlogAPI{}), opts)
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "itch.json5", "The config file to read, <name>.local.json5 overrides it. When unset, parent directories are searched.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and other debug information.")
	dumpDir = rootCmd.PersistentFlags().String("dump-http", "", "Write every http request and response to this directory.")
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

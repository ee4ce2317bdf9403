package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fedwatch/internal/config"
	"fedwatch/internal/logging"
	"fedwatch/internal/pricing"
	"fedwatch/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Prices pricing.PriceSource
	Fred   *pricing.FredClient
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite quote store
	dataStore, err := store.NewSQLiteStore(cfg.Data.DatabasePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize quote store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.DatabasePath).Msg("SQLite quote store initialized")
	}

	// Price source: CSV directory when configured, quote store otherwise
	if cfg.Data.ContractsDir != "" {
		app.Prices = pricing.NewCSVSource(cfg.Data.ContractsDir, logger)
		logger.Debug().Str("dir", cfg.Data.ContractsDir).Msg("CSV price source initialized")
	} else if dataStore != nil {
		app.Prices = dataStore
	}

	// FRED client for the live target range when not configured
	if cfg.Fred.Enabled {
		app.Fred = pricing.NewFredClient(pricing.FredOptions{
			BaseURL:      cfg.Fred.BaseURL,
			Timeout:      cfg.Fred.Timeout,
			MaxRetryTime: cfg.Fred.MaxRetryTime,
		}, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "fedwatch",
		Short: "FedWatch - rate move probabilities from fed funds futures",
		Long: `FedWatch estimates market-implied probabilities of Federal Reserve
target rate changes at upcoming FOMC meetings, using fed funds futures
prices and the CME FedWatch methodology.

Use 'fedwatch help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/fedwatch)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newMeetingsCmd(app))
	rootCmd.AddCommand(newQuotesCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("FedWatch v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Watch Configuration")
	output.Printf("  Step Size:       %dbp\n", cfg.Watch.StepBasisPoints)
	output.Printf("  Max Steps:       %d\n", cfg.Watch.MaxSteps)
	output.Printf("  Upcoming:        %d meetings\n", cfg.Watch.NumUpcoming)
	if cfg.RateRangeSet() {
		output.Printf("  Target Range:    %.2f-%.2f\n", cfg.Watch.RateLower, cfg.Watch.RateUpper)
	} else {
		output.Printf("  Target Range:    (from FRED)\n")
	}
	output.Println()

	output.Bold("Data Configuration")
	if cfg.Data.ContractsDir != "" {
		output.Printf("  Contracts Dir:   %s\n", cfg.Data.ContractsDir)
	} else {
		output.Printf("  Contracts Dir:   (quote store)\n")
	}
	output.Printf("  Database:        %s\n", cfg.Data.DatabasePath)
	output.Println()

	output.Bold("FRED")
	output.Printf("  Enabled:         %v\n", cfg.Fred.Enabled)
	output.Printf("  Base URL:        %s\n", cfg.Fred.BaseURL)

	return nil
}

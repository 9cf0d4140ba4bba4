package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hollowpoint-games/accountsync/internal/config"
	"github.com/hollowpoint-games/accountsync/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "syncctl",
		Short: "CLI for the player account sync service",
		Long: `syncctl drives the account session layer against a running accountd:
register, login, guest sign-in, logout, session restore, and profile
inspection/unlocks. Pass --bridged to exercise the host-bridged transport.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			transportName := config.TransportDirect
			if cfg.Bridged {
				transportName = config.TransportBridged
			}

			var err error
			app, err = factory.New(config.Config{
				ServerURL:       cfg.ServerURL,
				Transport:       transportName,
				CacheBackend:    config.CacheFile,
				CachePath:       cfg.CachePath,
				RestoreAttempts: 10,
				RestoreInterval: 500 * time.Millisecond,
				BridgeTimeout:   10 * time.Second,
			}, logger)
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Account service URL (env: ACCOUNTSYNC_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.CachePath, "cache", cfg.CachePath, "Local cache file path (env: ACCOUNTSYNC_CACHE_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: ACCOUNTSYNC_TOKEN_FILE)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Bridged, "bridged", false, "Use the bridged transport via the loopback host")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newGuestCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newProfileCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

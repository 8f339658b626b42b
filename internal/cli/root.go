package cli

import (
	"fmt"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Driver  string
	DSN     string
}

// NewRootCommand creates the root command for the attendance admin tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "attendance-admin",
		Short: "Administrative tasks for the attendance backend",
		Long:  "Migrate the schema, seed organizations and geofenced locations, and issue development tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := "production"
			if opts.Verbose {
				env = "development"
			}
			return logger.Init(env)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (overrides DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database DSN (overrides DB_DSN)")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// openDB resolves the database from env and flags.
func openDB(opts *RootOptions) (*gorm.DB, error) {
	cfg := config.LoadDatabase()
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.DSN != "" {
		cfg.DSN = opts.DSN
	}
	db, err := config.OpenDB(cfg, logger.L())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

package cli

import (
	"fmt"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/database"
	"geo-attendance-backend/internal/repository"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert organizations and locations from a YAML fixture",
		Long: `Upsert organizations and their geofenced locations from a YAML fixture.

Organizations match by name and locations by (organization, name), so
running the same fixture twice leaves the database unchanged.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := database.LoadFixture(file)
			if err != nil {
				return err
			}

			db, err := openDB(rootOpts)
			if err != nil {
				return err
			}
			defer config.Close(db)

			if migrate {
				if err := config.Migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			res, err := database.Seed(cmd.Context(), repository.NewLocationRepository(db), fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d organizations, %d locations\n", res.Organizations, res.Locations)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "fixtures/locations.yaml", "fixture file")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "migrate the schema first")

	return cmd
}

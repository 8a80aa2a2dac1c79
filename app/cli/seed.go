package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tabrima/storefront/app/config"
	"github.com/tabrima/storefront/app/seeding"
	"github.com/tabrima/storefront/models"
	"gorm.io/gorm"
)

// NewSeedCategoriesCommand creates the seed-categories command.
func NewSeedCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "seed-categories",
		Short: "Upsert the category taxonomy and print every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd.Context(), func(cfg *config.Config, db *gorm.DB) error {
				seeder := seeding.NewSeeder(models.NewCategoriesRepository(db),
					seeding.WithSchemaRepair(repair || cfg.Database.RepairSchema),
					seeding.WithLogger(rootOpts.logger(cmd, cfg)),
				)
				categories, err := seeder.Seed(cmd.Context())
				if err != nil {
					return err
				}

				if rootOpts.Format == "json" {
					return rootOpts.writeJSON(cmd.OutOrStdout(), categories)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tICON")
				for _, c := range categories {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Icon)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&repair, "repair-schema", false, "add the icon column when it is missing")

	return cmd
}

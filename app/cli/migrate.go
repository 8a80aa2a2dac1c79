package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrima/storefront/app/config"
	"github.com/tabrima/storefront/app/database"
	"gorm.io/gorm"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var to int64

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to < 0 {
				return fmt.Errorf("--to must not be negative, got %d", to)
			}
			return rootOpts.withStore(cmd.Context(), func(cfg *config.Config, db *gorm.DB) error {
				version, err := database.MigrateTo(cmd.Context(), db, cfg.Database.Driver, to)
				if err != nil {
					return err
				}
				if rootOpts.Format == "json" {
					return rootOpts.writeJSON(cmd.OutOrStdout(), map[string]int64{"version": version})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&to, "to", 0, "target version (0 applies every migration)")

	return cmd
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrima/storefront/app/maintenance"
)

// NewListDatabasesCommand creates the list-dbs command.
func NewListDatabasesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-dbs",
		Short: "List the databases on the configured server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			db, err := maintenance.Open(cmd.Context(), cfg.Database, true)
			if err != nil {
				return err
			}
			defer db.Close()

			names, err := maintenance.New(db, cfg.Database.Driver).ListDatabases(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return rootOpts.writeJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// NewCleanupCommand creates the cleanup command.
func NewCleanupCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete every product and drop the access_links table",
		Long: `Delete every product and drop the legacy access_links table.

Categories are kept. Pass --yes to confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("cleanup deletes every product; rerun with --yes to confirm")
			}
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			db, err := maintenance.Open(cmd.Context(), cfg.Database, false)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := maintenance.New(db, cfg.Database.Driver).Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return rootOpts.writeJSON(cmd.OutOrStdout(), map[string]int64{"products_deleted": res.ProductsDeleted})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d products, dropped access_links\n", res.ProductsDeleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the cleanup")

	return cmd
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/tabrima/storefront/app/config"
	"github.com/tabrima/storefront/app/database"
	"github.com/tabrima/storefront/app/logging"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront maintenance CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storectl",
		Short: "Tabrima storefront maintenance",
		Long:  "Operator tasks for the Tabrima storefront database: migrations, category seeding and cleanup.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCategoriesCommand(opts))
	cmd.AddCommand(NewListDatabasesCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.EnvFile)
}

func (o *RootOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Env, cmd.ErrOrStderr())
}

// withStore loads the configuration, opens the store and hands both to fn.
func (o *RootOptions) withStore(ctx context.Context, fn func(cfg *config.Config, db *gorm.DB) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	db, closeDB, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { err = joinClose(err, closeDB) }()
	return fn(cfg, db)
}

// joinClose runs closeFn and adds its failure to err.
func joinClose(err error, closeFn func() error) error {
	if cerr := closeFn(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close database: %w", cerr))
	}
	return err
}

func (o *RootOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

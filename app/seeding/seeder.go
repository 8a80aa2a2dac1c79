package seeding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tabrima/storefront/models"
)

const iconColumn = "icon"

// CategoryStore is the persistence the seeder needs. It is satisfied by
// *models.CategoriesRepository.
type CategoryStore interface {
	HasCategoryColumn(ctx context.Context, column string) (bool, error)
	AddCategoryColumn(ctx context.Context, field string) error
	Transaction(ctx context.Context, fn func(tx models.CategoryUpserter) error) error
	GetAllCategories(ctx context.Context) ([]models.Category, error)
}

// Seeder applies the store's fixed category taxonomy.
//
// Both upsert batches run in a single transaction: a failing row, or a
// cancelled context, rolls back every upsert of the call. Reseeding is
// idempotent, so a failed call can simply be retried.
type Seeder struct {
	store        CategoryStore
	repairSchema bool
	logger       *slog.Logger
}

type Option func(*Seeder)

// WithSchemaRepair makes the seeder add a missing icon column instead of
// failing. Schema is normally owned by the versioned migrations.
func WithSchemaRepair(enabled bool) Option {
	return func(s *Seeder) {
		s.repairSchema = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		s.logger = logger
	}
}

func NewSeeder(store CategoryStore, opts ...Option) *Seeder {
	s := &Seeder{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed upserts the category taxonomy and returns every category ordered by
// name. Errors are *SeedError values.
func (s *Seeder) Seed(ctx context.Context) ([]models.Category, error) {
	if err := s.ensureIconColumn(ctx); err != nil {
		return nil, &SeedError{Kind: ErrSchemaUpdateFailed, Err: err}
	}

	err := s.store.Transaction(ctx, func(tx models.CategoryUpserter) error {
		for _, u := range iconUpdates {
			c := &models.Category{Name: u.Name, Description: defaultDescription(u.Name), Icon: u.Icon}
			if err := tx.UpsertCategory(ctx, c, "icon"); err != nil {
				return &SeedError{Kind: ErrUpsertFailed, Name: u.Name, Err: err}
			}
		}
		for _, bc := range bodyCareCategories {
			c := bc
			if err := tx.UpsertCategory(ctx, &c, "description", "icon"); err != nil {
				return &SeedError{Kind: ErrUpsertFailed, Name: c.Name, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		var seedErr *SeedError
		if errors.As(err, &seedErr) {
			return nil, seedErr
		}
		// Begin or commit failed; no row is to blame.
		return nil, &SeedError{Kind: ErrUpsertFailed, Err: err}
	}

	categories, err := s.store.GetAllCategories(ctx)
	if err != nil {
		return nil, &SeedError{Kind: ErrReadBackFailed, Err: err}
	}

	s.logger.InfoContext(ctx, "categories seeded",
		"upserted", len(iconUpdates)+len(bodyCareCategories),
		"total", len(categories),
	)
	return categories, nil
}

func (s *Seeder) ensureIconColumn(ctx context.Context) error {
	ok, err := s.store.HasCategoryColumn(ctx, iconColumn)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !s.repairSchema {
		return fmt.Errorf("categories.%s is missing; run the migrations", iconColumn)
	}

	s.logger.WarnContext(ctx, "adding missing category column", "column", iconColumn)
	return s.store.AddCategoryColumn(ctx, "Icon")
}

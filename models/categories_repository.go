package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists is returned when a category name is already taken.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryInUse is returned when deleting a category that still has products.
	ErrCategoryInUse = errors.New("category has products")
)

// CategoryUpserter inserts a category or, when its name already exists,
// updates the given columns in place.
type CategoryUpserter interface {
	UpsertCategory(ctx context.Context, c *Category, updateColumns ...string) error
}

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

// GetAllCategories returns every category ordered by name.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(ctx context.Context, c *Category) error {
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCategoryExists
		}
		return err
	}
	return nil
}

// UpdateCategory overwrites name, description and icon of the category with c.ID.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, c *Category) error {
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Category
		if err := tx.First(&existing, c.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if err := tx.Model(&existing).
			Select("name", "description", "icon").
			Updates(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCategoryExists
			}
			return err
		}
		return tx.First(c, c.ID).Error
	})
}

// DeleteCategory removes a category that no product references.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return ErrCategoryInUse
		}

		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// UpsertCategory inserts c keyed by name. On conflict only updateColumns are
// overwritten; with none given the existing row is left as is.
func (r *CategoriesRepository) UpsertCategory(ctx context.Context, c *Category, updateColumns ...string) error {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
	}
	if len(updateColumns) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(updateColumns)
	}

	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	return r.db.WithContext(ctx).Clauses(onConflict).Create(c).Error
}

// Transaction runs fn against a repository bound to a single transaction.
// Returning an error from fn rolls back every write made through it.
func (r *CategoriesRepository) Transaction(ctx context.Context, fn func(tx CategoryUpserter) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CategoriesRepository{db: tx})
	})
}

// HasCategoryColumn reports whether the categories table has the column.
// Unlike gorm's Migrator.HasColumn, store errors are returned rather than
// reported as a missing column.
func (r *CategoriesRepository) HasCategoryColumn(ctx context.Context, column string) (bool, error) {
	columns, err := r.db.WithContext(ctx).Migrator().ColumnTypes(&Category{})
	if err != nil {
		return false, fmt.Errorf("inspect categories: %w", err)
	}
	for _, c := range columns {
		if c.Name() == column {
			return true, nil
		}
	}
	return false, nil
}

// AddCategoryColumn adds the column backing the named Category field, using
// the field's declared type and default.
func (r *CategoriesRepository) AddCategoryColumn(ctx context.Context, field string) error {
	if err := r.db.WithContext(ctx).Migrator().AddColumn(&Category{}, field); err != nil {
		return fmt.Errorf("add categories.%s: %w", field, err)
	}
	return nil
}

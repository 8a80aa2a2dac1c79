package models

import "time"

// DefaultCategoryIcon is used for categories created without an icon.
const DefaultCategoryIcon = "bi-tag"

// Category represents a product category.
// Name is the business key; re-seeding a name updates the row in place.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Icon        string    `gorm:"size:50;not null;default:bi-tag" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) TableName() string {
	return "categories"
}

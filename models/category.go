package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryNameMaxLength = 100
	CategorySlugMaxLength = 150
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Category is a node in the product classification hierarchy.
// Level is derived from the parent chain and is never set directly by callers.
type Category struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name            string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug            string     `gorm:"type:varchar(150);not null;uniqueIndex:idx_categories_slug" json:"slug"`
	Description     *string    `gorm:"type:text" json:"description"`
	Image           *string    `gorm:"type:text" json:"image"`
	Icon            *string    `gorm:"type:text" json:"icon"`
	ParentID        *uuid.UUID `gorm:"type:uuid;index:idx_categories_parent_id" json:"parentId"`
	Level           int        `gorm:"not null" json:"level"`
	SortOrder       int        `gorm:"not null" json:"sortOrder"`
	IsActive        bool       `gorm:"not null" json:"isActive"`
	IsFeatured      bool       `gorm:"not null" json:"isFeatured"`
	MetaTitle       *string    `gorm:"type:varchar(255)" json:"metaTitle"`
	MetaDescription *string    `gorm:"type:text" json:"metaDescription"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Associations
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID" json:"-"`
}

// TableName specifies the table name for Category model
func (*Category) TableName() string {
	return "categories"
}

// BeforeCreate sets up the model before creation
func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Validate performs validation on the category model
func (c *Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || utf8.RuneCountInString(name) > CategoryNameMaxLength {
		return ErrInvalidCategoryName
	}
	if !c.IsValidSlug() {
		return ErrInvalidCategorySlug
	}
	if c.Level < 0 {
		return ErrInvalidCategoryLevel
	}
	if c.ParentID != nil && *c.ParentID == c.ID && c.ID != uuid.Nil {
		return ErrSelfParent
	}
	return nil
}

// IsValidSlug checks if the slug is lowercase alphanumeric words joined by single hyphens
func (c *Category) IsValidSlug() bool {
	if c.Slug == "" || len(c.Slug) > CategorySlugMaxLength {
		return false
	}
	return slugPattern.MatchString(c.Slug)
}

// HasParent reports whether the category currently points at id.
func (c *Category) HasParent(id *uuid.UUID) bool {
	if c.ParentID == nil || id == nil {
		return c.ParentID == nil && id == nil
	}
	return *c.ParentID == *id
}

// LevelUnder returns the level a category takes when placed under parent.
func LevelUnder(parent *Category) int {
	if parent == nil {
		return 0
	}
	return parent.Level + 1
}

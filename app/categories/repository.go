package categories

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new category repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// Transaction runs fn inside one database transaction. Nested calls use savepoints.
func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// hierarchyLock names the transaction-scoped advisory lock taken by every
// structural change. Reads under READ COMMITTED after the lock see the
// previous holder's committed links.
const hierarchyLock = "categories.hierarchy"

func (r *repository) LockHierarchy(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", hierarchyLock).Error
}

// GetByID returns a category by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetBySlug returns a category by its unique slug
func (r *repository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists reports whether slug is taken by a category other than excludeID.
func (r *repository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func listScope(f *ListFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if f.RootOnly {
			db = db.Where("parent_id IS NULL")
		} else if f.ParentID != nil {
			db = db.Where("parent_id = ?", *f.ParentID)
		}
		if f.Featured != nil {
			db = db.Where("is_featured = ?", *f.Featured)
		}
		return db
	}
}

// List returns one page of categories matching filters and the total match count.
func (r *repository) List(ctx context.Context, filters *ListFilters) ([]models.Category, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Scopes(listScope(filters)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	categories := []models.Category{}
	if total == 0 {
		return categories, 0, nil
	}

	err = r.db.WithContext(ctx).
		Scopes(listScope(filters)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: filters.SortColumn}, Desc: filters.SortDesc}).
		Order("name ASC").
		Order("id ASC").
		Offset(filters.Offset()).
		Limit(filters.Limit).
		Find(&categories).Error
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// ListAll loads the whole category set, used for tree building and traversal.
func (r *repository) ListAll(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.
		Order("level ASC, sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

// GetChildren returns the direct children of a category
func (r *repository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *repository) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// CountOrphans counts categories outside ids whose parent is inside ids.
func (r *repository) CountOrphans(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id IN ? AND id NOT IN ?", ids, ids).
		Count(&count).Error
	return count, err
}

// Create creates a new category
func (r *repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update updates an existing category
func (r *repository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// SetLevels writes derived levels with one statement per distinct level.
func (r *repository) SetLevels(ctx context.Context, levels map[uuid.UUID]int) error {
	byLevel := make(map[int][]uuid.UUID)
	for id, level := range levels {
		byLevel[level] = append(byLevel[level], id)
	}

	ordered := make([]int, 0, len(byLevel))
	for level := range byLevel {
		ordered = append(ordered, level)
	}
	sort.Ints(ordered)

	for _, level := range ordered {
		err := r.db.WithContext(ctx).
			Model(&models.Category{}).
			Where("id IN ?", byLevel[level]).
			Update("level", level).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ReassignChildren points every direct child of fromParentID at toParentID (nil for root).
func (r *repository) ReassignChildren(ctx context.Context, fromParentID uuid.UUID, toParentID *uuid.UUID) (int64, error) {
	var target interface{}
	if toParentID != nil {
		target = *toParentID
	}
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", fromParentID).
		Update("parent_id", target)
	return result.RowsAffected, result.Error
}

// BulkUpdate applies column values to every category in ids.
func (r *repository) BulkUpdate(ctx context.Context, ids []uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id IN ?", ids).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete deletes a category by ID
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMany removes ids in a single statement so a parent and its children can go together.
func (r *repository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

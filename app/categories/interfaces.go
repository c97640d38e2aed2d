package categories

import (
	"context"

	"github.com/google/uuid"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

// Repository defines the interface for category data access
type Repository interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	// LockHierarchy blocks until no other transaction is changing parent
	// links and holds the lock until the surrounding transaction ends.
	LockHierarchy(ctx context.Context) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filters *ListFilters) ([]models.Category, int64, error)
	ListAll(ctx context.Context, includeInactive bool) ([]models.Category, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	CountOrphans(ctx context.Context, ids []uuid.UUID) (int64, error)

	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	SetLevels(ctx context.Context, levels map[uuid.UUID]int) error
	ReassignChildren(ctx context.Context, fromParentID uuid.UUID, toParentID *uuid.UUID) (int64, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, fields map[string]interface{}) (int64, error)
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Service defines the interface for category business logic
type Service interface {
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error)
	GetCategory(ctx context.Context, idOrSlug string, opts GetOptions) (*CategoryDetailResponse, error)
	ListCategories(ctx context.Context, filters *ListFilters) (*ListResult, error)
	GetCategoryTree(ctx context.Context, includeInactive bool) ([]*TreeNode, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, opts DeleteOptions) error
	BulkUpdate(ctx context.Context, ids []uuid.UUID, fields BulkUpdateFields) (*BulkResult, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkResult, error)
	Reorder(ctx context.Context, items []ReorderItem) (*BulkResult, error)
}

package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain17/niyenin-sub000/internal/cache"
	"github.com/nazmulhossain17/niyenin-sub000/internal/formatter"
	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/sanitizer"
	"github.com/nazmulhossain17/niyenin-sub000/models"
)

const (
	treeCacheKeyActive    = "categories:tree:active"
	treeCacheKeyAll       = "categories:tree:all"
	treeGenerationKey     = "categories:tree:generation"
	initialTreeGeneration = "0"

	DefaultTreeCacheTTL = 5 * time.Minute
)

// ErrSlugConflict marks a duplicate slug rejected by the unique index rather
// than by the pre-check, i.e. a concurrent writer won the race.
var ErrSlugConflict = errors.New("slug unique constraint violated")

// TreeCache holds built trees keyed by a generation token. Every mutation
// mints a new generation, so a tree built from rows read before the mutation
// is stored under a key that no later reader asks for.
type TreeCache struct {
	Trees       cache.Cache[[]*TreeNode]
	Generations cache.Cache[string]
	TTL         time.Duration
}

// service implements the Service interface
type service struct {
	repo      Repository
	trees     *TreeCache
	sanitizer sanitizer.HTMLStripperer
	logger    logger.Logger
}

// NewService creates a new category service. trees may be nil to disable caching.
func NewService(repo Repository,
	trees *TreeCache,
	stripper sanitizer.HTMLStripperer,
	log logger.Logger,
) Service {
	if log == nil {
		log = logger.NewNullLogger()
	}
	if stripper == nil {
		stripper = sanitizer.NewHTMLStripper()
	}
	if trees != nil {
		tc := *trees
		if tc.TTL <= 0 {
			tc.TTL = DefaultTreeCacheTTL
		}
		trees = &tc
	}
	return &service{
		repo:      repo,
		trees:     trees,
		sanitizer: stripper,
		logger:    log,
	}
}

// CreateCategory creates a new category
func (s *service) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	category := &models.Category{
		Name:            s.sanitizer.StripHTML(req.Name),
		Slug:            formatter.NormalizeSlug(req.Slug),
		Description:     sanitizer.StripHTMLPtr(s.sanitizer, req.Description),
		Image:           trimPtr(req.Image),
		Icon:            trimPtr(req.Icon),
		ParentID:        req.ParentID,
		SortOrder:       req.SortOrder,
		IsActive:        true,
		IsFeatured:      req.IsFeatured,
		MetaTitle:       sanitizer.StripHTMLPtr(s.sanitizer, req.MetaTitle),
		MetaDescription: sanitizer.StripHTMLPtr(s.sanitizer, req.MetaDescription),
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := validateCategory(category); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if category.ParentID != nil {
			if err := repo.LockHierarchy(ctx); err != nil {
				return err
			}
		}
		if err := ensureSlugAvailable(ctx, repo, category.Slug, nil); err != nil {
			return err
		}

		if category.ParentID != nil {
			parent, err := repo.GetByID(ctx, *category.ParentID)
			if err != nil {
				return translateError(err, models.ErrParentNotFound)
			}
			category.Level = models.LevelUnder(parent)
		}

		return translateError(repo.Create(ctx, category), models.ErrRecordNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	return ToCategoryResponse(category), nil
}

// GetCategory looks a category up by id when idOrSlug parses as a UUID, otherwise by slug.
func (s *service) GetCategory(ctx context.Context, idOrSlug string, opts GetOptions) (*CategoryDetailResponse, error) {
	var (
		category *models.Category
		err      error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		category, err = s.repo.GetByID(ctx, id)
	} else {
		category, err = s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(idOrSlug)))
	}
	if err != nil {
		return nil, translateError(err, models.ErrRecordNotFound)
	}

	resp := &CategoryDetailResponse{CategoryResponse: *ToCategoryResponse(category)}

	if opts.IncludeChildren {
		children, err := s.repo.GetChildren(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		resp.Children = ToCategoryResponseList(children)
	}

	if opts.IncludeParent && category.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *category.ParentID)
		switch {
		case err == nil:
			resp.Parent = ToCategoryResponse(parent)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	return resp, nil
}

// ListCategories returns one page of the flat listing.
func (s *service) ListCategories(ctx context.Context, filters *ListFilters) (*ListResult, error) {
	categories, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Categories: ToCategoryResponseList(categories),
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
	}, nil
}

// GetCategoryTree returns the nested hierarchy, served from cache when possible.
// The generation is read before the rows so that a tree built from rows a
// concurrent write has since replaced lands under the superseded key.
func (s *service) GetCategoryTree(ctx context.Context, includeInactive bool) ([]*TreeNode, error) {
	key, cached := s.treeKey(ctx, includeInactive)

	if cached {
		tree, err := s.trees.Trees.Get(ctx, key)
		if err == nil {
			return tree, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("category tree cache read failed", logger.Fields{"key": key, "error": err.Error()})
		}
	}

	categories, err := s.repo.ListAll(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	tree := BuildTree(categories)

	if cached {
		if err := s.trees.Trees.Set(ctx, key, tree, s.trees.TTL); err != nil {
			s.logger.Warn("category tree cache write failed", logger.Fields{"key": key, "error": err.Error()})
		}
	}
	return tree, nil
}

// treeKey returns the cache key for the current generation. It reports false
// when caching is disabled or the generation cannot be read.
func (s *service) treeKey(ctx context.Context, includeInactive bool) (string, bool) {
	if s.trees == nil {
		return "", false
	}

	generation, err := s.trees.Generations.Get(ctx, treeGenerationKey)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		generation = initialTreeGeneration
	case err != nil:
		s.logger.Warn("category tree generation read failed", logger.Fields{"error": err.Error()})
		return "", false
	}

	base := treeCacheKeyActive
	if includeInactive {
		base = treeCacheKeyAll
	}
	return base + ":" + generation, true
}

// UpdateCategory applies a partial update. A parent change re-derives the
// level of the whole moved subtree in the same transaction.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	var updated *models.Category

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if req.ParentID.Set {
			if err := repo.LockHierarchy(ctx); err != nil {
				return err
			}
		}

		category, err := repo.GetByID(ctx, id)
		if err != nil {
			return translateError(err, models.ErrRecordNotFound)
		}

		if req.Slug != nil {
			slug := formatter.NormalizeSlug(*req.Slug)
			if slug != category.Slug {
				if err := ensureSlugAvailable(ctx, repo, slug, &category.ID); err != nil {
					return err
				}
				category.Slug = slug
			}
		}

		var tree *forest
		parentChanged := false
		if req.ParentID.Set {
			newParent := req.ParentID.Value
			if newParent != nil && *newParent == id {
				return models.ErrSelfParent
			}

			if newParent == nil {
				category.Level = 0
			} else {
				parent, err := repo.GetByID(ctx, *newParent)
				if err != nil {
					return translateError(err, models.ErrParentNotFound)
				}
				if tree, err = loadForest(ctx, repo); err != nil {
					return err
				}
				if tree.isDescendant(id, parent.ID) {
					return models.ErrCircularReference
				}
				category.Level = models.LevelUnder(parent)
			}

			parentChanged = !category.HasParent(newParent)
			category.ParentID = newParent
		}

		s.applyUpdate(category, req)
		if err := validateCategory(category); err != nil {
			return err
		}

		if err := repo.Update(ctx, category); err != nil {
			return translateError(err, models.ErrRecordNotFound)
		}

		if parentChanged {
			if tree == nil {
				if tree, err = loadForest(ctx, repo); err != nil {
					return err
				}
			}
			tree.setParent(id, category.ParentID)
			tree.byID[id].Level = category.Level

			moved, err := s.cascadeLevels(ctx, repo, tree, id)
			if err != nil {
				return err
			}
			category.Level = tree.byID[id].Level
			s.logger.Debug("category moved", logger.Fields{
				"categoryId":     id.String(),
				"level":          category.Level,
				"relevelledRows": moved,
			})
		}

		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	return ToCategoryResponse(updated), nil
}

func (s *service) applyUpdate(category *models.Category, req *UpdateCategoryRequest) {
	if req.Name != nil {
		category.Name = s.sanitizer.StripHTML(*req.Name)
	}
	if req.Description != nil {
		category.Description = sanitizer.StripHTMLPtr(s.sanitizer, req.Description)
	}
	if req.Image != nil {
		category.Image = trimPtr(req.Image)
	}
	if req.Icon != nil {
		category.Icon = trimPtr(req.Icon)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		category.IsFeatured = *req.IsFeatured
	}
	if req.MetaTitle != nil {
		category.MetaTitle = sanitizer.StripHTMLPtr(s.sanitizer, req.MetaTitle)
	}
	if req.MetaDescription != nil {
		category.MetaDescription = sanitizer.StripHTMLPtr(s.sanitizer, req.MetaDescription)
	}
}

// DeleteCategory removes a category. Children block the delete unless opts
// asks for a cascade or a reassignment; cascade wins when both are set.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID, opts DeleteOptions) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if err := repo.LockHierarchy(ctx); err != nil {
			return err
		}
		if _, err := repo.GetByID(ctx, id); err != nil {
			return translateError(err, models.ErrRecordNotFound)
		}

		childCount, err := repo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if childCount == 0 {
			return translateError(repo.Delete(ctx, id), models.ErrRecordNotFound)
		}

		switch {
		case opts.Cascade:
			return s.deleteSubtree(ctx, repo, id)
		case opts.Reassign:
			return s.reassignAndDelete(ctx, repo, id, opts.ReassignTo)
		default:
			return &HasChildrenError{ChildCount: childCount}
		}
	})
	if err != nil {
		return err
	}

	s.invalidateTree(ctx)
	return nil
}

func (s *service) deleteSubtree(ctx context.Context, repo Repository, id uuid.UUID) error {
	tree, err := loadForest(ctx, repo)
	if err != nil {
		return err
	}

	order := tree.deletionOrder(id)
	deleted, err := repo.DeleteMany(ctx, order)
	if err != nil {
		return err
	}

	s.logger.Debug("category subtree deleted", logger.Fields{
		"categoryId":   id.String(),
		"deletedCount": deleted,
	})
	return nil
}

func (s *service) reassignAndDelete(ctx context.Context, repo Repository, id uuid.UUID, target *uuid.UUID) error {
	tree, err := loadForest(ctx, repo)
	if err != nil {
		return err
	}

	if target != nil {
		if _, ok := tree.byID[*target]; !ok {
			return models.ErrReassignTargetNotFound
		}
		if *target == id || tree.isDescendant(id, *target) {
			return models.ErrCircularReference
		}
	}

	moved, err := repo.ReassignChildren(ctx, id, target)
	if err != nil {
		return err
	}

	children := append([]uuid.UUID(nil), tree.children[id]...)
	for _, child := range children {
		tree.setParent(child, target)
	}
	tree.remove(id)

	if _, err := s.cascadeLevels(ctx, repo, tree, children...); err != nil {
		return err
	}

	s.logger.Debug("category children reassigned", logger.Fields{
		"categoryId":      id.String(),
		"reassignedTo":    uuidOrRoot(target),
		"reassignedCount": moved,
	})
	return translateError(repo.Delete(ctx, id), models.ErrRecordNotFound)
}

// BulkUpdate applies the same field values to every id. A parent change is
// validated per id and re-levels every moved subtree. Unknown ids are skipped.
func (s *service) BulkUpdate(ctx context.Context, ids []uuid.UUID, fields BulkUpdateFields) (*BulkResult, error) {
	if len(ids) == 0 || fields.empty() {
		return nil, models.ErrValidationFailed
	}

	columns := map[string]interface{}{}
	if fields.IsActive != nil {
		columns["is_active"] = *fields.IsActive
	}
	if fields.IsFeatured != nil {
		columns["is_featured"] = *fields.IsFeatured
	}

	result := &BulkResult{}
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		var tree *forest
		if fields.ParentID.Set {
			if err := repo.LockHierarchy(ctx); err != nil {
				return err
			}
			var err error
			if tree, err = moveAll(ctx, repo, ids, fields.ParentID.Value); err != nil {
				return err
			}
			if fields.ParentID.Value == nil {
				columns["parent_id"] = nil
			} else {
				columns["parent_id"] = *fields.ParentID.Value
			}
		}

		updated, err := repo.BulkUpdate(ctx, ids, columns)
		if err != nil {
			return err
		}
		result.UpdatedCount = updated

		if tree != nil {
			if _, err := s.cascadeLevels(ctx, repo, tree, ids...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	return result, nil
}

// moveAll re-parents ids inside the forest, rejecting any move that would
// close a loop given the moves already applied.
func moveAll(ctx context.Context, repo Repository, ids []uuid.UUID, parentID *uuid.UUID) (*forest, error) {
	tree, err := loadForest(ctx, repo)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, ok := tree.byID[*parentID]; !ok {
			return nil, models.ErrParentNotFound
		}
	}

	for _, id := range ids {
		if _, ok := tree.byID[id]; !ok {
			continue
		}
		if parentID != nil && *parentID == id {
			return nil, models.ErrSelfParent
		}
		if tree.createsCycle(id, parentID) {
			return nil, models.ErrCircularReference
		}
		tree.setParent(id, parentID)
	}
	return tree, nil
}

// BulkDelete removes ids in one statement. It refuses when a category outside
// the batch still points at one inside it.
func (s *service) BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, models.ErrValidationFailed
	}

	result := &BulkResult{}
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if err := repo.LockHierarchy(ctx); err != nil {
			return err
		}
		orphans, err := repo.CountOrphans(ctx, ids)
		if err != nil {
			return err
		}
		if orphans > 0 {
			return &OrphanError{OrphanedCount: orphans}
		}

		deleted, err := repo.DeleteMany(ctx, ids)
		if err != nil {
			return err
		}
		result.DeletedCount = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	return result, nil
}

// Reorder sets each sortOrder independently. An unknown id rolls the batch back.
func (s *service) Reorder(ctx context.Context, items []ReorderItem) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, models.ErrValidationFailed
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		for _, item := range items {
			if err := repo.UpdateSortOrder(ctx, item.ID, item.SortOrder); err != nil {
				return translateError(err, models.ErrRecordNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	return &BulkResult{UpdatedCount: int64(len(items))}, nil
}

// cascadeLevels persists the levels of the moved subtrees that differ from
// what is stored.
func (s *service) cascadeLevels(ctx context.Context, repo Repository, tree *forest, moved ...uuid.UUID) (int, error) {
	stale, err := tree.staleLevels(moved...)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := repo.SetLevels(ctx, stale); err != nil {
		return 0, fmt.Errorf("update category levels: %w", err)
	}
	return len(stale), nil
}

// invalidateTree mints a new generation. Trees cached under older
// generations are never read again and expire with their TTL.
func (s *service) invalidateTree(ctx context.Context) {
	if s.trees == nil {
		return
	}
	if err := s.trees.Generations.Set(ctx, treeGenerationKey, uuid.NewString(), 0); err != nil {
		s.logger.Warn("category tree cache invalidation failed", logger.Fields{"error": err.Error()})
	}
}

func loadForest(ctx context.Context, repo Repository) (*forest, error) {
	all, err := repo.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}
	return newForest(all), nil
}

func ensureSlugAvailable(ctx context.Context, repo Repository, slug string, excludeID *uuid.UUID) error {
	exists, err := repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateSlug
	}
	return nil
}

// validateCategory reports model rule violations as ErrValidationFailed.
func validateCategory(category *models.Category) error {
	err := category.Validate()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrSelfParent):
		return err
	default:
		return fmt.Errorf("%w: %w", models.ErrValidationFailed, err)
	}
}

// translateError maps storage errors onto domain errors. notFound is returned
// for a missing row.
func translateError(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", models.ErrDuplicateSlug, ErrSlugConflict)
	default:
		return err
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func uuidOrRoot(id *uuid.UUID) string {
	if id == nil {
		return RootParam
	}
	return id.String()
}

package categories

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

var (
	errForeignKey    = errors.New("fake: foreign key violation on categories.parent_id")
	errLockOutsideTx = errors.New("fake: hierarchy lock taken outside a transaction")
)

// fakeRepository keeps categories in a map and mimics the constraints of the
// real table: unique slug, parent foreign key and transactional rollback.
type fakeRepository struct {
	rows  map[uuid.UUID]models.Category
	clock time.Time
	// fail makes the named method return the error.
	fail map[string]error
	// locks counts LockHierarchy calls; inTx is set while fn runs.
	locks int
	inTx  bool
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		rows:  make(map[uuid.UUID]models.Category),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		fail:  make(map[string]error),
	}
}

func (f *fakeRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRepository) failure(method string) error {
	return f.fail[method]
}

func (f *fakeRepository) snapshot() map[uuid.UUID]models.Category {
	out := make(map[uuid.UUID]models.Category, len(f.rows))
	for id, c := range f.rows {
		out[id] = c
	}
	return out
}

func (f *fakeRepository) Transaction(_ context.Context, fn func(repo Repository) error) error {
	saved := f.snapshot()
	f.inTx = true
	defer func() { f.inTx = false }()

	if err := fn(f); err != nil {
		f.rows = saved
		return err
	}
	return nil
}

func (f *fakeRepository) LockHierarchy(context.Context) error {
	if err := f.failure("LockHierarchy"); err != nil {
		return err
	}
	if !f.inTx {
		return errLockOutsideTx
	}
	f.locks++
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if err := f.failure("GetByID"); err != nil {
		return nil, err
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeRepository) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range f.rows {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SlugExists(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	if err := f.failure("SlugExists"); err != nil {
		return false, err
	}
	for _, c := range f.rows {
		if c.Slug == slug && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) matches(c models.Category, filters *ListFilters) bool {
	if !filters.IncludeInactive && !c.IsActive {
		return false
	}
	if filters.RootOnly && c.ParentID != nil {
		return false
	}
	if filters.ParentID != nil && (c.ParentID == nil || *c.ParentID != *filters.ParentID) {
		return false
	}
	if filters.Featured != nil && c.IsFeatured != *filters.Featured {
		return false
	}
	return true
}

func compareColumn(a, b models.Category, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "level":
		return a.Level - b.Level
	default:
		return a.SortOrder - b.SortOrder
	}
}

func (f *fakeRepository) List(_ context.Context, filters *ListFilters) ([]models.Category, int64, error) {
	if err := f.failure("List"); err != nil {
		return nil, 0, err
	}
	matched := []models.Category{}
	for _, c := range f.rows {
		if f.matches(c, filters) {
			matched = append(matched, c)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if cmp := compareColumn(matched[i], matched[j], filters.SortColumn); cmp != 0 {
			if filters.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		}
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	start := filters.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeRepository) ListAll(_ context.Context, includeInactive bool) ([]models.Category, error) {
	if err := f.failure("ListAll"); err != nil {
		return nil, err
	}
	out := []models.Category{}
	for _, c := range f.rows {
		if includeInactive || c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeRepository) GetChildren(_ context.Context, parentID uuid.UUID) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range f.rows {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeRepository) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	children, _ := f.GetChildren(ctx, parentID)
	return int64(len(children)), nil
}

func (f *fakeRepository) CountOrphans(_ context.Context, ids []uuid.UUID) (int64, error) {
	set := toSet(ids)
	var n int64
	for _, c := range f.rows {
		if c.ParentID != nil && set[*c.ParentID] && !set[c.ID] {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) checkRow(c *models.Category) error {
	for _, other := range f.rows {
		if other.ID != c.ID && other.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ParentID != nil {
		if _, ok := f.rows[*c.ParentID]; !ok && *c.ParentID != c.ID {
			return errForeignKey
		}
	}
	return nil
}

func (f *fakeRepository) Create(_ context.Context, category *models.Category) error {
	if err := f.failure("Create"); err != nil {
		return err
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := f.checkRow(category); err != nil {
		return err
	}
	now := f.tick()
	category.CreatedAt = now
	category.UpdatedAt = now
	f.rows[category.ID] = *category
	return nil
}

func (f *fakeRepository) Update(_ context.Context, category *models.Category) error {
	if err := f.failure("Update"); err != nil {
		return err
	}
	if err := f.checkRow(category); err != nil {
		return err
	}
	category.UpdatedAt = f.tick()
	f.rows[category.ID] = *category
	return nil
}

func (f *fakeRepository) SetLevels(_ context.Context, levels map[uuid.UUID]int) error {
	if err := f.failure("SetLevels"); err != nil {
		return err
	}
	for id, level := range levels {
		if c, ok := f.rows[id]; ok {
			c.Level = level
			c.UpdatedAt = f.tick()
			f.rows[id] = c
		}
	}
	return nil
}

func (f *fakeRepository) ReassignChildren(_ context.Context, fromParentID uuid.UUID, toParentID *uuid.UUID) (int64, error) {
	var n int64
	for id, c := range f.rows {
		if c.ParentID != nil && *c.ParentID == fromParentID {
			c.ParentID = copyID(toParentID)
			f.rows[id] = c
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) BulkUpdate(_ context.Context, ids []uuid.UUID, fields map[string]interface{}) (int64, error) {
	if err := f.failure("BulkUpdate"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		c, ok := f.rows[id]
		if !ok {
			continue
		}
		for column, value := range fields {
			switch column {
			case "is_active":
				c.IsActive = value.(bool)
			case "is_featured":
				c.IsFeatured = value.(bool)
			case "parent_id":
				if value == nil {
					c.ParentID = nil
				} else {
					p := value.(uuid.UUID)
					c.ParentID = &p
				}
			}
		}
		if err := f.checkRow(&c); err != nil {
			return 0, err
		}
		c.UpdatedAt = f.tick()
		f.rows[id] = c
		n++
	}
	return n, nil
}

func (f *fakeRepository) UpdateSortOrder(_ context.Context, id uuid.UUID, sortOrder int) error {
	c, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.SortOrder = sortOrder
	c.UpdatedAt = f.tick()
	f.rows[id] = c
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	_, err := f.DeleteMany(ctx, []uuid.UUID{id})
	return err
}

func (f *fakeRepository) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	if err := f.failure("DeleteMany"); err != nil {
		return 0, err
	}
	set := toSet(ids)
	for _, c := range f.rows {
		if c.ParentID != nil && set[*c.ParentID] && !set[c.ID] {
			return 0, errForeignKey
		}
	}
	var n int64
	for id := range set {
		if _, ok := f.rows[id]; ok {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

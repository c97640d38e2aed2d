package categories

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nazmulhossain17/niyenin-sub000/internal/validator"
	"github.com/nazmulhossain17/niyenin-sub000/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	metaTitleMaxLength = 255

	// RootParam selects top level categories in parentId and reassignTo.
	RootParam = "null"

	ActionUpdate  = "update"
	ActionReorder = "reorder"
)

// sortColumns is the allow-list of sortable fields and their columns.
var sortColumns = map[string]string{
	"sortOrder": "sort_order",
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"level":     "level",
}

// NullableUUID distinguishes an absent JSON field from an explicit null.
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

// NewNullableUUID returns a NullableUUID that is present with value id (nil means null).
func NewNullableUUID(id *uuid.UUID) NullableUUID {
	return NullableUUID{Set: true, Value: id}
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

func (n NullableUUID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// CreateCategoryRequest represents the request to create a category
type CreateCategoryRequest struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description,omitempty"`
	Image           *string    `json:"image,omitempty"`
	Icon            *string    `json:"icon,omitempty"`
	ParentID        *uuid.UUID `json:"parentId,omitempty"`
	SortOrder       int        `json:"sortOrder"`
	IsActive        *bool      `json:"isActive,omitempty"`
	IsFeatured      bool       `json:"isFeatured"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
}

func (r *CreateCategoryRequest) Validate(v *validator.Validator) bool {
	validateName(v, r.Name)
	validateSlug(v, r.Slug)
	validateOptional(v, r.Image, r.MetaTitle)
	v.Check(r.ParentID == nil || *r.ParentID != uuid.Nil, "parentId", "parent id must be a valid UUID")
	return v.Valid()
}

// UpdateCategoryRequest is a partial update. ParentID tells apart "not sent" from null.
type UpdateCategoryRequest struct {
	Name            *string      `json:"name,omitempty"`
	Slug            *string      `json:"slug,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Image           *string      `json:"image,omitempty"`
	Icon            *string      `json:"icon,omitempty"`
	ParentID        NullableUUID `json:"parentId" swaggertype:"string"`
	SortOrder       *int         `json:"sortOrder,omitempty"`
	IsActive        *bool        `json:"isActive,omitempty"`
	IsFeatured      *bool        `json:"isFeatured,omitempty"`
	MetaTitle       *string      `json:"metaTitle,omitempty"`
	MetaDescription *string      `json:"metaDescription,omitempty"`
}

func (r *UpdateCategoryRequest) Validate(v *validator.Validator) bool {
	if r.Name != nil {
		validateName(v, *r.Name)
	}
	if r.Slug != nil {
		validateSlug(v, *r.Slug)
	}
	validateOptional(v, r.Image, r.MetaTitle)
	if r.ParentID.Value != nil {
		v.Check(*r.ParentID.Value != uuid.Nil, "parentId", "parent id must be a valid UUID")
	}
	return v.Valid()
}

func validateName(v *validator.Validator, name string) {
	v.Check(validator.NotBlank(name), "name", "name is required")
	v.Check(validator.MaxRunes(strings.TrimSpace(name), models.CategoryNameMaxLength), "name", "name must not exceed 100 characters")
}

// validateSlug checks the raw input; the service normalizes it before the pattern check.
func validateSlug(v *validator.Validator, slug string) {
	v.Check(validator.NotBlank(slug), "slug", "slug is required")
	v.Check(validator.MaxRunes(strings.TrimSpace(slug), models.CategorySlugMaxLength), "slug", "slug must not exceed 150 characters")
}

func validateOptional(v *validator.Validator, image, metaTitle *string) {
	if image != nil && *image != "" {
		v.Check(validator.IsURL(*image), "image", "image must be a URL")
	}
	if metaTitle != nil {
		v.Check(validator.MaxRunes(*metaTitle, metaTitleMaxLength), "metaTitle", "meta title must not exceed 255 characters")
	}
}

// GetOptions controls what is attached to a single category.
type GetOptions struct {
	IncludeChildren bool `form:"includeChildren"`
	IncludeParent   bool `form:"includeParent"`
}

// ListCategoriesQuery is the raw query string of GET /categories.
type ListCategoriesQuery struct {
	IncludeInactive bool   `form:"includeInactive"`
	ParentID        string `form:"parentId"`
	Featured        *bool  `form:"featured"`
	Tree            bool   `form:"tree"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
}

// ListFilters is the normalized form of ListCategoriesQuery used by the repository.
type ListFilters struct {
	IncludeInactive bool
	RootOnly        bool
	ParentID        *uuid.UUID
	Featured        *bool
	SortColumn      string
	SortDesc        bool
	Page            int
	Limit           int
}

// Offset returns the row offset of the current page.
func (f *ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Filters validates the query and applies defaults. Unknown sort fields fall back to sortOrder.
func (q *ListCategoriesQuery) Filters(v *validator.Validator) *ListFilters {
	f := &ListFilters{
		IncludeInactive: q.IncludeInactive,
		Featured:        q.Featured,
		SortColumn:      sortColumns["sortOrder"],
		SortDesc:        strings.EqualFold(q.SortOrder, "desc"),
		Page:            q.Page,
		Limit:           q.Limit,
	}

	if column, ok := sortColumns[q.SortBy]; ok {
		f.SortColumn = column
	}

	switch parent := strings.TrimSpace(q.ParentID); {
	case parent == "":
	case strings.EqualFold(parent, "root") || strings.EqualFold(parent, RootParam):
		f.RootOnly = true
	default:
		id, err := uuid.Parse(parent)
		if err != nil {
			v.AddError("parentId", "parentId must be a UUID, \"root\" or \"null\"")
		} else {
			f.ParentID = &id
		}
	}

	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	return f
}

// DeleteQuery is the raw query string of DELETE /categories/:id.
type DeleteQuery struct {
	Cascade    bool   `form:"cascade"`
	ReassignTo string `form:"reassignTo"`
}

// DeleteOptions is the children policy applied by DeleteCategory.
type DeleteOptions struct {
	Cascade bool
	// Reassign is set when children should be moved; ReassignTo nil means root.
	Reassign   bool
	ReassignTo *uuid.UUID
}

func (q *DeleteQuery) Options(v *validator.Validator) DeleteOptions {
	opts := DeleteOptions{Cascade: q.Cascade}

	target := strings.TrimSpace(q.ReassignTo)
	if target == "" {
		return opts
	}

	opts.Reassign = true
	if strings.EqualFold(target, RootParam) {
		return opts
	}

	id, err := uuid.Parse(target)
	if err != nil {
		v.AddError("reassignTo", "reassignTo must be a category id or \"null\"")
		return opts
	}
	opts.ReassignTo = &id
	return opts
}

// BulkUpdateFields are the attributes a bulk update may change.
type BulkUpdateFields struct {
	IsActive   *bool        `json:"isActive,omitempty"`
	IsFeatured *bool        `json:"isFeatured,omitempty"`
	ParentID   NullableUUID `json:"parentId" swaggertype:"string"`
}

func (f *BulkUpdateFields) empty() bool {
	return f.IsActive == nil && f.IsFeatured == nil && !f.ParentID.Set
}

// ReorderItem assigns a sort order to one category.
type ReorderItem struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sortOrder"`
}

// BulkPatchRequest is the body of PATCH /categories/bulk.
type BulkPatchRequest struct {
	Action string           `json:"action"`
	IDs    []uuid.UUID      `json:"ids,omitempty"`
	Data   BulkUpdateFields `json:"data"`
	Items  []ReorderItem    `json:"items,omitempty"`
}

func (r *BulkPatchRequest) IsReorder() bool {
	return strings.EqualFold(r.Action, ActionReorder)
}

func (r *BulkPatchRequest) Validate(v *validator.Validator) bool {
	action := strings.ToLower(r.Action)
	v.Check(action == "" || validator.In(action, ActionUpdate, ActionReorder), "action", "action must be \"update\" or \"reorder\"")

	if r.IsReorder() {
		ids := make([]uuid.UUID, 0, len(r.Items))
		for _, item := range r.Items {
			ids = append(ids, item.ID)
		}
		v.Check(len(r.Items) > 0, "items", "at least one item is required")
		v.Check(validator.NoNilUUIDs(ids), "items", "every item needs a valid id")
		v.Check(validator.NoDuplicates(ids), "items", "ids must be unique")
		return v.Valid()
	}

	validateIDs(v, r.IDs)
	v.Check(!r.Data.empty(), "data", "at least one of isActive, isFeatured or parentId is required")
	if r.Data.ParentID.Value != nil {
		v.Check(*r.Data.ParentID.Value != uuid.Nil, "data.parentId", "parent id must be a valid UUID")
	}
	return v.Valid()
}

// BulkDeleteRequest is the body of DELETE /categories/bulk.
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (r *BulkDeleteRequest) Validate(v *validator.Validator) bool {
	validateIDs(v, r.IDs)
	return v.Valid()
}

func validateIDs(v *validator.Validator, ids []uuid.UUID) {
	v.Check(len(ids) > 0, "ids", "at least one id is required")
	v.Check(validator.NoNilUUIDs(ids), "ids", "ids must be valid UUIDs")
	v.Check(validator.NoDuplicates(ids), "ids", "ids must be unique")
}

// BulkResult reports how many rows a bulk operation touched.
type BulkResult struct {
	UpdatedCount int64 `json:"updatedCount,omitempty"`
	DeletedCount int64 `json:"deletedCount,omitempty"`
}

// CategoryResponse represents the response for category data
type CategoryResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description"`
	Image           *string    `json:"image"`
	Icon            *string    `json:"icon"`
	ParentID        *uuid.UUID `json:"parentId"`
	Level           int        `json:"level"`
	SortOrder       int        `json:"sortOrder"`
	IsActive        bool       `json:"isActive"`
	IsFeatured      bool       `json:"isFeatured"`
	MetaTitle       *string    `json:"metaTitle"`
	MetaDescription *string    `json:"metaDescription"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CategoryDetailResponse is a single category with optional relatives attached.
type CategoryDetailResponse struct {
	CategoryResponse
	Parent   *CategoryResponse  `json:"parent,omitempty"`
	Children []CategoryResponse `json:"children,omitempty"`
}

// TreeNode is a category with its nested children. Leaves carry an empty array.
type TreeNode struct {
	CategoryResponse
	Children []*TreeNode `json:"children"`
}

// ListResult is one page of a flat listing.
type ListResult struct {
	Categories []CategoryResponse
	Total      int64
	Page       int
	Limit      int
}

// ToCategoryResponse converts a category model to response DTO
func ToCategoryResponse(category *models.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:              category.ID,
		Name:            category.Name,
		Slug:            category.Slug,
		Description:     category.Description,
		Image:           category.Image,
		Icon:            category.Icon,
		ParentID:        category.ParentID,
		Level:           category.Level,
		SortOrder:       category.SortOrder,
		IsActive:        category.IsActive,
		IsFeatured:      category.IsFeatured,
		MetaTitle:       category.MetaTitle,
		MetaDescription: category.MetaDescription,
		CreatedAt:       category.CreatedAt,
		UpdatedAt:       category.UpdatedAt,
	}
}

// ToCategoryResponseList converts a slice of category models to response DTOs
func ToCategoryResponseList(categories []models.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ToCategoryResponse(&categories[i])
	}
	return responses
}

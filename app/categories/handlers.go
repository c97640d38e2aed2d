package categories

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nazmulhossain17/niyenin-sub000/app/api"
	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/validator"
	"github.com/nazmulhossain17/niyenin-sub000/models"
)

// Error codes returned in the response envelope.
const (
	CodeDuplicateSlug          = "DUPLICATE_SLUG"
	CodeParentNotFound         = "PARENT_NOT_FOUND"
	CodeReassignTargetNotFound = "REASSIGN_TARGET_NOT_FOUND"
	CodeSelfParent             = "SELF_PARENT"
	CodeCircularReference      = "CIRCULAR_REFERENCE"
	CodeHasChildren            = "HAS_CHILDREN"
	CodeOrphanWouldResult      = "ORPHAN_WOULD_RESULT"
)

// Handler handles HTTP requests for categories
type Handler struct {
	service Service
	logger  logger.Logger
}

// NewHandler creates a new category handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// ListCategories godoc
// @Summary      List categories
// @Description  Paginated flat listing, or the full nested tree when tree=true
// @Tags         categories
// @Produce      json
// @Param        includeInactive  query     bool    false  "Include inactive categories"
// @Param        parentId         query     string  false  "Parent id, or root/null for top level"
// @Param        featured         query     bool    false  "Featured filter"
// @Param        tree             query     bool    false  "Return the nested tree"
// @Param        sortBy           query     string  false  "sortOrder, name, createdAt, updatedAt or level"
// @Param        sortOrder        query     string  false  "asc or desc"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size, at most 100"
// @Success      200  {object}  api.Response{data=[]CategoryResponse,meta=api.PaginationMeta}
// @Failure      400  {object}  api.Response
// @Failure      500  {object}  api.Response
// @Router       /api/v1/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	var query ListCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	if query.Tree {
		tree, err := h.service.GetCategoryTree(c.Request.Context(), query.IncludeInactive)
		if err != nil {
			h.handleServiceError(c, err, "ListCategories")
			return
		}
		api.ListResponse(c, "Category tree retrieved successfully", tree, CountNodes(tree))
		return
	}

	v := validator.New()
	filters := query.Filters(v)
	if !v.Valid() {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	result, err := h.service.ListCategories(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "ListCategories")
		return
	}

	api.PaginatedResponse(c, "Categories retrieved successfully", result.Categories,
		api.NewPaginationMeta(result.Page, result.Limit, result.Total))
}

// GetCategory godoc
// @Summary      Get a category
// @Description  Look up a category by id or slug
// @Tags         categories
// @Produce      json
// @Param        idOrSlug         path      string  true   "Category id or slug"
// @Param        includeChildren  query     bool    false  "Attach direct children"
// @Param        includeParent    query     bool    false  "Attach the parent"
// @Success      200  {object}  api.Response{data=CategoryDetailResponse}
// @Failure      404  {object}  api.Response
// @Router       /api/v1/categories/{idOrSlug} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	var opts GetOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), c.Param("idOrSlug"), opts)
	if err != nil {
		h.handleServiceError(c, err, "GetCategory")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateCategoryRequest  true  "Category"
// @Success      201  {object}  api.Response{data=CategoryResponse}
// @Failure      400  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Failure      409  {object}  api.Response
// @Router       /api/v1/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "CreateCategory")
		return
	}

	api.CreatedResponse(c, "Category created successfully", category)
}

// UpdateCategory godoc
// @Summary      Update a category
// @Description  Partial update; sending parentId moves the category and re-levels its subtree
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Category id"
// @Param        request  body      UpdateCategoryRequest  true  "Fields to change"
// @Success      200  {object}  api.Response{data=CategoryResponse}
// @Failure      400  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /api/v1/categories/{id} [patch]
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err, "UpdateCategory")
		return
	}

	api.UpdatedResponse(c, "Category updated successfully", category)
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Description  Categories with children need cascade=true or reassignTo=<id|null>
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true   "Category id"
// @Param        cascade     query     bool    false  "Delete the whole subtree"
// @Param        reassignTo  query     string  false  "New parent for the children, or null for root"
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /api/v1/categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var query DeleteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	opts := query.Options(v)
	if !v.Valid() {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id, opts); err != nil {
		h.handleServiceError(c, err, "DeleteCategory")
		return
	}

	api.DeletedResponse(c, "Category deleted successfully", nil)
}

// BulkUpdate godoc
// @Summary      Bulk update or reorder categories
// @Description  action "reorder" applies items[].sortOrder, otherwise data is applied to ids
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      BulkPatchRequest  true  "Bulk operation"
// @Success      200  {object}  api.Response{data=BulkResult}
// @Failure      400  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /api/v1/categories/bulk [patch]
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req BulkPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	if req.IsReorder() {
		result, err := h.service.Reorder(c.Request.Context(), req.Items)
		if err != nil {
			h.handleServiceError(c, err, "Reorder")
			return
		}
		api.UpdatedResponse(c, "Categories reordered successfully", result)
		return
	}

	result, err := h.service.BulkUpdate(c.Request.Context(), req.IDs, req.Data)
	if err != nil {
		h.handleServiceError(c, err, "BulkUpdate")
		return
	}
	api.UpdatedResponse(c, "Categories updated successfully", result)
}

// BulkDelete godoc
// @Summary      Bulk delete categories
// @Description  Fails when a category outside the batch has its parent inside it
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      BulkDeleteRequest  true  "Ids to delete"
// @Success      200  {object}  api.Response{data=BulkResult}
// @Failure      400  {object}  api.Response
// @Router       /api/v1/categories/bulk [delete]
func (h *Handler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	result, err := h.service.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		h.handleServiceError(c, err, "BulkDelete")
		return
	}
	api.DeletedResponse(c, "Categories deleted successfully", result)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, map[string]string{"id": "invalid category id format"})
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps domain errors to status codes. Anything unknown is logged and hidden.
func (h *Handler) handleServiceError(c *gin.Context, err error, handler string) {
	var (
		hasChildren *HasChildrenError
		orphans     *OrphanError
	)

	switch {
	case errors.Is(err, ErrSlugConflict):
		api.ErrorResponse(c, http.StatusConflict, CodeDuplicateSlug, models.ErrDuplicateSlug.Error(), nil)
	case errors.Is(err, models.ErrDuplicateSlug):
		api.ErrorResponse(c, http.StatusBadRequest, CodeDuplicateSlug, models.ErrDuplicateSlug.Error(), nil)
	case errors.Is(err, models.ErrValidationFailed):
		api.ValidationErrorResponse(c, err.Error())
	case errors.Is(err, models.ErrSelfParent):
		api.ErrorResponse(c, http.StatusBadRequest, CodeSelfParent, err.Error(), nil)
	case errors.Is(err, models.ErrCircularReference):
		api.ErrorResponse(c, http.StatusBadRequest, CodeCircularReference, err.Error(), nil)
	case errors.As(err, &hasChildren):
		api.ErrorResponse(c, http.StatusBadRequest, CodeHasChildren, models.ErrHasChildren.Error(),
			gin.H{"childCount": hasChildren.ChildCount})
	case errors.As(err, &orphans):
		api.ErrorResponse(c, http.StatusBadRequest, CodeOrphanWouldResult, models.ErrOrphanWouldResult.Error(),
			gin.H{"orphanedCount": orphans.OrphanedCount})
	case errors.Is(err, models.ErrParentNotFound):
		api.ErrorResponse(c, http.StatusNotFound, CodeParentNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrReassignTargetNotFound):
		api.ErrorResponse(c, http.StatusNotFound, CodeReassignTargetNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Category")
	default:
		h.logger.Error(err, logger.Fields{
			"handler": handler,
			"path":    c.Request.URL.Path,
		})
		api.InternalErrorResponse(c, "An unexpected error occurred")
	}
}

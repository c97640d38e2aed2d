package categories

import (
	"github.com/gin-gonic/gin"

	"github.com/nazmulhossain17/niyenin-sub000/internal/deps"
)

// Module wires the category repository, service and handler once and mounts
// its public and protected routes separately.
type Module struct {
	handler *Handler
}

// NewModule builds the category stack from the shared container. trees may
// be nil to serve every tree from the database.
func NewModule(c *deps.Container, trees *TreeCache) *Module {
	repo := NewRepository(c.DB)
	srvs := NewService(repo, trees, c.Sanitizer, c.Logger)

	return &Module{handler: NewHandler(srvs, c.Logger)}
}

// MountPublic mounts the read-only routes.
func (m *Module) MountPublic(r *gin.RouterGroup, _ *deps.Container) {
	categoriesGroup := r.Group("/categories")
	categoriesGroup.GET("", m.handler.ListCategories)
	categoriesGroup.GET("/:idOrSlug", m.handler.GetCategory)
}

// MountProtected mounts the mutating routes; r must already enforce the elevated role.
func (m *Module) MountProtected(r *gin.RouterGroup, _ *deps.Container) {
	categoriesGroup := r.Group("/categories")
	categoriesGroup.POST("", m.handler.CreateCategory)
	categoriesGroup.PATCH("/bulk", m.handler.BulkUpdate)
	categoriesGroup.DELETE("/bulk", m.handler.BulkDelete)
	categoriesGroup.PUT("/:id", m.handler.UpdateCategory)
	categoriesGroup.PATCH("/:id", m.handler.UpdateCategory)
	categoriesGroup.DELETE("/:id", m.handler.DeleteCategory)
}

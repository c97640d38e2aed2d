package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nazmulhossain17/niyenin-sub000/app/api"
	"github.com/nazmulhossain17/niyenin-sub000/internal/deps"
)

const APIPrefix = "/api/v1"

// MountFunc represents a function that mounts routes for a module
type MountFunc func(*gin.RouterGroup, *deps.Container)

type Mounter struct {
	container *deps.Container
}

func NewMounter(container *deps.Container) *Mounter {
	return &Mounter{container: container}
}

// Public routes - no authentication required
func (m *Mounter) Public(engine *gin.Engine) *RouteGroup {
	group := engine.Group(APIPrefix)
	return &RouteGroup{group: group, container: m.container}
}

// Protected routes require a valid access token carrying one of roles.
// Without roles the container's elevated roles apply.
func (m *Mounter) Protected(engine *gin.Engine, roles ...string) *RouteGroup {
	if len(roles) == 0 {
		roles = m.container.ElevatedRoles
	}
	group := engine.Group(APIPrefix)
	group.Use(api.AuthMiddleware(m.container.TokenVerifier), api.RequireRole(roles...))
	return &RouteGroup{group: group, container: m.container}
}

type RouteGroup struct {
	group     *gin.RouterGroup
	container *deps.Container
}

// Mount provides a fluent interface for mounting modules
func (rg *RouteGroup) Mount(mountFunc MountFunc) *RouteGroup {
	mountFunc(rg.group, rg.container)
	return rg
}

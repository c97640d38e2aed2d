package deps

import (
	"gorm.io/gorm"

	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/sanitizer"
	"github.com/nazmulhossain17/niyenin-sub000/internal/security"
)

// Container holds all shared dependencies
type Container struct {
	DB            *gorm.DB
	TokenVerifier security.Verifier
	Sanitizer     sanitizer.HTMLStripperer
	Logger        logger.Logger
	ElevatedRoles []string
}

func NewContainer(db *gorm.DB,
	tokenVerifier security.Verifier,
	sanitizer sanitizer.HTMLStripperer,
	logger logger.Logger,
	elevatedRoles []string,
) *Container {
	return &Container{
		DB:            db,
		TokenVerifier: tokenVerifier,
		Sanitizer:     sanitizer,
		Logger:        logger,
		ElevatedRoles: elevatedRoles,
	}
}

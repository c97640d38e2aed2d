package app

import (
	"time"

	"github.com/nazmulhossain17/niyenin-sub000/app/database"
	"github.com/nazmulhossain17/niyenin-sub000/internal/cache"
	"github.com/nazmulhossain17/niyenin-sub000/internal/nexus"
)

type Config struct {
	DB    database.Config
	Cache cache.Config
	Auth  AuthConfig

	TreeCacheTTL time.Duration `env:"CATEGORY_TREE_CACHE_TTL" env-default:"5m"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error fatal off"`

	AppHost string `env:"APP_HOST" env-default:"localhost"`
	AppPort string `env:"APP_PORT" env-default:"8080"`
	Env     string `env:"APP_ENV" env-default:"development"`

	// PublicURL is advertised in the API documentation outside development.
	PublicURL string `env:"APP_PUBLIC_URL"`
}

// AuthConfig controls who may mutate the catalog.
type AuthConfig struct {
	SymmetricKey  string   `env:"AUTH_SYMMETRIC_KEY" validate:"required,len=32"`
	ElevatedRoles []string `env:"AUTH_ELEVATED_ROLES" env-default:"admin,super_admin" env-separator:"," validate:"min=1"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig(opts ...nexus.LoaderOption) (*Config, error) {
	c := &Config{}
	err := nexus.NewLoader(opts...).Load(c)
	return c, err
}

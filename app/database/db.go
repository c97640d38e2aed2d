package database

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

type Config struct {
	Host           string `env:"DB_HOST"`
	Port           string `env:"DB_PORT" env-default:"5432"`
	User           string `env:"DB_USER"`
	Password       string `env:"DB_PASSWORD"`
	Database       string `env:"DB_NAME"`
	UseSSL         bool   `env:"DB_SSL_MODE"`
	LogQuery       bool   `env:"DB_LOG_QUERY"`
	RunMigrations  bool   `env:"DB_RUN_MIGRATIONS"`
	MigrationsPath string `env:"DB_MIGRATIONS_PATH" env-default:"migrations"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
}

func (c *Config) Validate() error {
	if c.Host == "" ||
		c.Password == "" || c.Database == "" || c.User == "" {
		return models.ErrDatabaseCredentialNotConfigured
	}
	return nil
}

func (c *Config) sslMode() string {
	if c.UseSSL {
		return "require"
	}
	return "disable"
}

// DSN returns the key/value connection string used by GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dsnValue(c.Host), dsnValue(c.User), dsnValue(c.Password), dsnValue(c.Database), dsnValue(c.Port), c.sslMode())
}

// URL returns the postgres:// form expected by golang-migrate. Credentials
// are percent-encoded.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.sslMode()}}.Encode(),
	}
	return u.String()
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dsnValue quotes a key/value DSN value when it is empty or holds spaces or quotes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

// GormConfig is shared by the server and the test suites. TranslateError lets
// the unique index on slug surface as gorm.ErrDuplicatedKey.
func GormConfig(logQuery bool) *gorm.Config {
	cfg := &gorm.Config{TranslateError: true}
	if !logQuery {
		cfg.Logger = gLogger.Discard
	}
	return cfg
}

func New(c *Config) (*gorm.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(c.DSN()), GormConfig(c.LogQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

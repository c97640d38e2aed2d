package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nazmulhossain17/niyenin-sub000/app"
	"github.com/nazmulhossain17/niyenin-sub000/app/api"
	"github.com/nazmulhossain17/niyenin-sub000/app/categories"
	"github.com/nazmulhossain17/niyenin-sub000/app/database"
	apiDoc "github.com/nazmulhossain17/niyenin-sub000/app/doc"
	_ "github.com/nazmulhossain17/niyenin-sub000/docs"
	"github.com/nazmulhossain17/niyenin-sub000/internal/cache"
	"github.com/nazmulhossain17/niyenin-sub000/internal/deps"
	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/router"
	"github.com/nazmulhossain17/niyenin-sub000/internal/sanitizer"
	"github.com/nazmulhossain17/niyenin-sub000/internal/security"
)

// @title Niyenin Catalog API
// @version 1.0
// @description Category hierarchy endpoints for the Niyenin storefront.

// @contact.name API Support Team

// @license.name MIT License
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	// read back by the config loader through flag.Lookup
	flag.String("config", "", "path to a configuration file")
	flag.Parse()

	log := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{"service": "niyenin-catalog"})

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "config"})
	}
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.DB.RunMigrations {
		if err := database.Migrate(cfg.DB.URL(), cfg.DB.MigrationsPath); err != nil {
			log.Fatal(err, logger.Fields{"stage": "migrations"})
		}
		log.Info("migrations applied", logger.Fields{"path": cfg.DB.MigrationsPath})
	}

	db, err := database.New(&cfg.DB)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "database"})
	}

	tokenMaker, err := security.NewPasetoMaker(cfg.Auth.SymmetricKey)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "token maker"})
	}

	trees, err := cache.New[[]*categories.TreeNode](cfg.Cache)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "cache"})
	}
	generations, err := cache.New[string](cfg.Cache)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "cache"})
	}

	container := deps.NewContainer(db, tokenMaker, sanitizer.NewHTMLStripper(), log, cfg.Auth.ElevatedRoles)
	engine := newEngine(cfg, log)

	categoryModule := categories.NewModule(container, &categories.TreeCache{
		Trees:       trees,
		Generations: generations,
		TTL:         cfg.TreeCacheTTL,
	})
	mounter := router.NewMounter(container)
	mounter.Public(engine).
		Mount(func(r *gin.RouterGroup, _ *deps.Container) {
			r.GET("/healthz", api.HealthCheck(cfg.Env))
		}).
		Mount(categoryModule.MountPublic)
	mounter.Protected(engine).
		Mount(categoryModule.MountProtected)
	apiDoc.Init(engine, cfg.Env, cfg.AppHost, cfg.AppPort, cfg.PublicURL)

	serve(engine, cfg, log)
}

func newEngine(cfg *app.Config, log logger.Logger) *gin.Engine {
	if !cfg.IsProduction() {
		engine := gin.Default()
		engine.Use(api.CorsMiddleware())
		return engine
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestLogger(log), api.CorsMiddleware())
	return engine
}

func serve(engine *gin.Engine, cfg *app.Config, log logger.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting catalog API", logger.Fields{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, logger.Fields{"stage": "listen"})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, logger.Fields{"stage": "shutdown"})
	}
	log.Info("server stopped", nil)
}

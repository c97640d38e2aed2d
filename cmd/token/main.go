package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nazmulhossain17/niyenin-sub000/app"
	"github.com/nazmulhossain17/niyenin-sub000/internal/logger"
	"github.com/nazmulhossain17/niyenin-sub000/internal/security"
)

// token mints an access token for the protected catalog routes. It reads the
// same configuration as the API and refuses to run in production.
func main() {
	flag.String("config", "", "path to a configuration file")
	role := flag.String("role", "", "role to embed, defaults to the first elevated role")
	user := flag.String("user", "", "user id to embed, random when empty")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	log := logger.NewZeroLogger(os.Stderr, logger.LevelInfo, logger.Fields{"service": "niyenin-token"})

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "config"})
	}
	if cfg.IsProduction() {
		log.Fatal(errors.New("refusing to mint tokens in production"), nil)
	}

	maker, err := security.NewPasetoMaker(cfg.Auth.SymmetricKey)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "token maker"})
	}

	userID := uuid.New()
	if *user != "" {
		if userID, err = uuid.Parse(*user); err != nil {
			log.Fatal(err, logger.Fields{"stage": "flags", "user": *user})
		}
	}
	if *role == "" {
		*role = cfg.Auth.ElevatedRoles[0]
	}

	token, payload, err := maker.CreateToken(userID, *role, *ttl, security.TokenScopeAccess)
	if err != nil {
		log.Fatal(err, logger.Fields{"stage": "mint"})
	}

	log.Info("token issued", logger.Fields{
		"userId":    payload.UserID.String(),
		"role":      payload.Role,
		"expiresAt": payload.ExpiredAt.Format(time.RFC3339),
	})
	fmt.Println(token)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	var (
		tokenFor string
		admin    bool
	)
	flag.StringVar(&tokenFor, "token-for", "", "Also print a 24h bearer token for this user id")
	flag.BoolVar(&admin, "admin", false, "Issue the token with the admin role")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, nil)); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	logger.Printf("seeded %d products", len(seed.DemoProducts))

	if tokenFor == "" {
		return
	}
	if cfg.AuthJWTSecret == "" {
		logger.Fatalf("AUTH_JWT_SECRET must be set to issue a token")
	}
	role := domain.RoleUser
	if admin {
		role = domain.RoleAdmin
	}
	token, err := auth.Issue(cfg.AuthJWTSecret, domain.Principal{ID: tokenFor, Role: role}, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	if err != nil {
		logger.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

// Prints a bearer token for a seeded account so the API can be exercised locally.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run scripts/issue_token.go <email> <password>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}
	appLogger := logger.New(cfg)

	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := user.NewService(db.GetDB(), auth.NewPasswordManager(cfg), appLogger)
	u, err := users.Authenticate(ctx, os.Args[1], os.Args[2])
	if err != nil {
		log.Fatal("Authentication failed:", err)
	}

	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		log.Fatal("Error generating token:", err)
	}

	fmt.Printf("User: %s (admin=%t)\n", u.Email, u.IsAdmin)
	fmt.Printf("Expires in: %s\n", cfg.JWT.AccessTokenExpiry)
	fmt.Printf("Token: %s\n", token)
}

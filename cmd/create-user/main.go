package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/service"
	"github.com/anchorfit/storefront/internal/storage"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-user/main.go <email> <password> <full-name> [--admin]")
		fmt.Println("Example: go run cmd/create-user/main.go ops@anchorfit.ng \"s3cret-pass\" \"Store Ops\" --admin")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	fullName := os.Args[3]
	isAdmin := len(os.Args) > 4 && os.Args[4] == "--admin"

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer repos.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	// Accounts created here skip the verification email
	user := &domain.User{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
		IsAdmin:       isAdmin,
	}
	if err := repos.User.Create(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	profile := &domain.Profile{
		Email:    email,
		FullName: fullName,
	}
	if err := repos.Profile.Create(ctx, profile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ User created successfully!\n\n")
	fmt.Printf("User ID: %s\n", user.ID.String())
	fmt.Printf("Profile ID: %s\n", profile.ID.String())
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Admin: %t\n", user.IsAdmin)
	fmt.Printf("\nSign in with POST /api/auth/signin")
	if isAdmin {
		fmt.Printf(" or POST /api/admin/login")
	}
	fmt.Println()
}

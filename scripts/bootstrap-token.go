package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
	"github.com/expentra/expentra/internal/service"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	TokenID     string `json:"token_id"`
	Token       string `json:"token"`
	TokenPrefix string `json:"token_prefix"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@expentra.local", "Superuser email")
		password    = flag.String("password", "", "Superuser password (random accounts should set one later)")
		name        = flag.String("name", "bootstrap", "Access token name")
		envInput    = flag.String("env", auth.EnvLive, "Token environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureSuperuser(ctx, repo, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	generated, err := auth.GenerateToken(*envInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	token := &model.AccessToken{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Name:        *name,
		CreatedAt:   time.Now().UTC(),
	}

	if err := repo.CreateToken(ctx, token); err != nil {
		fmt.Fprintln(os.Stderr, "create token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      user.ID,
		Email:       user.Email,
		TokenID:     token.ID,
		Token:       generated.Plaintext,
		TokenPrefix: token.TokenPrefix,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureSuperuser fetches the account with the given email or creates
// it as a superuser when absent.
func ensureSuperuser(ctx context.Context, repo *repository.Repository, email, password string) (*model.User, error) {
	svc := service.NewUserService(repo)

	existing, err := svc.GetUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsStaff {
			return nil, fmt.Errorf("user %s exists but is not staff", email)
		}
		return existing, nil
	}
	if !errors.Is(err, service.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err := svc.CreateSuperuser(ctx, service.CreateUserInput{
		Email:    email,
		Password: password,
		Actor:    "bootstrap",
	})
	if err != nil {
		return nil, fmt.Errorf("create superuser: %w", err)
	}
	return user, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/expentra/expentra/internal/model"
)

// Common errors for access token repository operations.
var (
	ErrTokenNotFound = errors.New("access token not found")
)

// CreateToken inserts a new access token into the database.
func (r *Repository) CreateToken(ctx context.Context, token *model.AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, token_hash, token_prefix, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.TokenPrefix,
		token.Name,
		token.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserReference
		}
		return fmt.Errorf("failed to create access token: %w", err)
	}

	return nil
}

// GetTokensByPrefix retrieves all unrevoked tokens matching a prefix.
// Used during authentication to find candidate tokens for verification.
func (r *Repository) GetTokensByPrefix(ctx context.Context, prefix string) ([]*model.AccessToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, name, revoked_at, last_used_at, created_at
		FROM access_tokens
		WHERE token_prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.AccessToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access tokens: %w", err)
	}

	return tokens, nil
}

// ListTokensByUserID retrieves all tokens for a user.
func (r *Repository) ListTokensByUserID(ctx context.Context, userID string) ([]*model.AccessToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, name, revoked_at, last_used_at, created_at
		FROM access_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.AccessToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access tokens: %w", err)
	}

	return tokens, nil
}

// RevokeToken marks a token as revoked. Idempotent on already
// revoked tokens.
func (r *Repository) RevokeToken(ctx context.Context, id string, revokedAt time.Time) error {
	query := `
		UPDATE access_tokens
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, revokedAt)
	if err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// UpdateTokenLastUsed records when a token last authenticated.
func (r *Repository) UpdateTokenLastUsed(ctx context.Context, id string) error {
	query := `
		UPDATE access_tokens
		SET last_used_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}

	return nil
}

// scanToken scans a row into an AccessToken model.
func scanToken(row pgx.Row) (*model.AccessToken, error) {
	var token model.AccessToken
	var name *string

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.TokenPrefix,
		&name,
		&token.RevokedAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name != nil {
		token.Name = *name
	}

	return &token, nil
}

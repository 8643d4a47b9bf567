package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
)

var _ session.TokenStore = (*TokenRepository)(nil)

// TokenRepository persists one bearer token per environment in the session_tokens table.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Token returns the stored token for env, or "" when none is stored.
func (r *TokenRepository) Token(ctx context.Context, env shared.Environment) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, "SELECT token FROM session_tokens WHERE environment = ?", string(env)).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query token: %w", err)
	}
	return token, nil
}

// SetToken inserts or replaces the token for env.
//
// The member_id column is filled from the JWT subject when the token carries one.
func (r *TokenRepository) SetToken(ctx context.Context, env shared.Environment, token string) error {
	var memberID sql.NullString
	if sub := session.TokenSubject(token); sub != "" {
		memberID = sql.NullString{String: sub, Valid: true}
	}

	query := `
		INSERT INTO session_tokens (environment, token, member_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(environment) DO UPDATE SET
			token = excluded.token,
			member_id = excluded.member_id,
			updated_at = excluded.updated_at
	`
	ts := now()
	if err := upsert(ctx, r.db, query, string(env), token, memberID, ts, ts); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// ClearToken removes the token for env. Clearing an absent token is not an error.
func (r *TokenRepository) ClearToken(ctx context.Context, env shared.Environment) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session_tokens WHERE environment = ?", string(env)); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Environments lists the environments that currently hold a token.
func (r *TokenRepository) Environments(ctx context.Context) ([]shared.Environment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT environment FROM session_tokens ORDER BY environment ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query environments: %w", err)
	}
	defer rows.Close()

	var envs []shared.Environment
	for rows.Next() {
		var env string
		if err := rows.Scan(&env); err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		envs = append(envs, shared.Environment(env))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return envs, nil
}

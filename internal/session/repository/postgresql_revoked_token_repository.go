// Package repository provides persistence for the session revocation list.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/database"
	apperrors "github.com/openride/openride/internal/errors"
	"github.com/openride/openride/internal/session/domain"
)

// PostgreSQLRevokedTokenRepository implements revocation list persistence for PostgreSQL.
type PostgreSQLRevokedTokenRepository struct {
	db *sql.DB
}

// Create inserts a revoked token. Revoking the same token twice is a no-op:
// the primary key conflict is swallowed since the row already says what the
// caller wants it to say.
func (p *PostgreSQLRevokedTokenRepository) Create(ctx context.Context, revokedToken *domain.RevokedToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO revoked_tokens (token_id, expires_at, revoked_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (token_id) DO NOTHING`

	_, err := querier.ExecContext(
		ctx,
		query,
		revokedToken.TokenID,
		revokedToken.ExpiresAt,
		revokedToken.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create revoked token")
	}
	return nil
}

// Exists reports whether the token ID is on the revocation list.
func (p *PostgreSQLRevokedTokenRepository) Exists(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, tokenID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check revoked token")
	}
	return exists, nil
}

// CountExpired counts revocation rows whose tokens have passed their natural
// expiry, without removing them.
func (p *PostgreSQLRevokedTokenRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM revoked_tokens WHERE expires_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired revoked tokens")
	}
	return count, nil
}

// DeleteExpired removes revocation rows whose tokens have passed their natural
// expiry. Returns the number of rows deleted.
func (p *PostgreSQLRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired revoked tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// NewPostgreSQLRevokedTokenRepository creates a new PostgreSQL revocation list repository.
func NewPostgreSQLRevokedTokenRepository(db *sql.DB) *PostgreSQLRevokedTokenRepository {
	return &PostgreSQLRevokedTokenRepository{db: db}
}

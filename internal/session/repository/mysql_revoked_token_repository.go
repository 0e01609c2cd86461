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

// MySQLRevokedTokenRepository implements revocation list persistence for MySQL.
type MySQLRevokedTokenRepository struct {
	db *sql.DB
}

// Create inserts a revoked token. INSERT IGNORE makes revoking the same token
// twice a no-op.
func (m *MySQLRevokedTokenRepository) Create(ctx context.Context, revokedToken *domain.RevokedToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO revoked_tokens (token_id, expires_at, revoked_at)
			  VALUES (?, ?, ?)`

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
func (m *MySQLRevokedTokenRepository) Exists(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, tokenID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check revoked token")
	}
	return exists, nil
}

// CountExpired counts revocation rows whose tokens have passed their natural
// expiry, without removing them.
func (m *MySQLRevokedTokenRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM revoked_tokens WHERE expires_at < ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired revoked tokens")
	}
	return count, nil
}

// DeleteExpired removes revocation rows whose tokens have passed their natural
// expiry. Returns the number of rows deleted.
func (m *MySQLRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

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

// NewMySQLRevokedTokenRepository creates a new MySQL revocation list repository.
func NewMySQLRevokedTokenRepository(db *sql.DB) *MySQLRevokedTokenRepository {
	return &MySQLRevokedTokenRepository{db: db}
}

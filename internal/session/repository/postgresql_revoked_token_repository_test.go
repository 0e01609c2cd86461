package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openride/openride/internal/session/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestPostgreSQLRevokedTokenRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	revokedToken := &domain.RevokedToken{
		TokenID:   uuid.Must(uuid.NewV7()),
		ExpiresAt: now.Add(24 * time.Hour),
		RevokedAt: now,
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectExec("INSERT INTO revoked_tokens").
			WithArgs(revokedToken.TokenID, revokedToken.ExpiresAt, revokedToken.RevokedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, revokedToken)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_AlreadyRevoked", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		// ON CONFLICT DO NOTHING reports zero rows affected
		mock.ExpectExec("INSERT INTO revoked_tokens").
			WithArgs(revokedToken.TokenID, revokedToken.ExpiresAt, revokedToken.RevokedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Create(ctx, revokedToken)
		assert.NoError(t, err)
	})
}

func TestPostgreSQLRevokedTokenRepository_Exists(t *testing.T) {
	ctx := context.Background()
	tokenID := uuid.Must(uuid.NewV7())

	t.Run("Success_Revoked", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(tokenID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, tokenID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Success_NotRevoked", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(tokenID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Exists(ctx, tokenID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Error_QueryFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(tokenID).
			WillReturnError(sql.ErrConnDone)

		exists, err := repo.Exists(ctx, tokenID)
		assert.False(t, exists)
		assert.Error(t, err)
	})
}

func TestPostgreSQLRevokedTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectExec("DELETE FROM revoked_tokens WHERE expires_at").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		deleted, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("Success_NothingToDelete", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgreSQLRevokedTokenRepository(db)

		mock.ExpectExec("DELETE FROM revoked_tokens WHERE expires_at").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})
}

func TestMySQLRevokedTokenRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	revokedToken := &domain.RevokedToken{
		TokenID:   uuid.Must(uuid.NewV7()),
		ExpiresAt: now.Add(24 * time.Hour),
		RevokedAt: now,
	}

	db, mock := setupMockDB(t)
	repo := NewMySQLRevokedTokenRepository(db)

	mock.ExpectExec("INSERT IGNORE INTO revoked_tokens").
		WithArgs(revokedToken.TokenID, revokedToken.ExpiresAt, revokedToken.RevokedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(ctx, revokedToken)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRevokedTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	db, mock := setupMockDB(t)
	repo := NewMySQLRevokedTokenRepository(db)

	mock.ExpectExec("DELETE FROM revoked_tokens WHERE expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

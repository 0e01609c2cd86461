// Package repository provides data persistence implementations for identity records.
//
// One repository implementation serves both identity domains: the domain tag
// selects the backing table (users or captains), which keeps the two login
// namespaces fully separate at the storage layer.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/database"
	apperrors "github.com/openride/openride/internal/errors"
	"github.com/openride/openride/internal/identity/domain"
)

// PostgreSQLIdentityRepository handles identity persistence for PostgreSQL.
type PostgreSQLIdentityRepository struct {
	db    *sql.DB
	table string
}

// NewPostgreSQLIdentityRepository creates a repository bound to the given identity domain.
func NewPostgreSQLIdentityRepository(db *sql.DB, identityDomain domain.Domain) *PostgreSQLIdentityRepository {
	return &PostgreSQLIdentityRepository{
		db:    db,
		table: identityDomain.Table(),
	}
}

// Create inserts a new identity. The unique index on email makes the
// duplicate check and the insert a single atomic operation; a concurrent
// insert of the same email surfaces here as ErrEmailAlreadyExists.
func (r *PostgreSQLIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`INSERT INTO %s (id, email, first_name, last_name, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.table)

	_, err := querier.ExecContext(ctx, query,
		identity.ID,
		identity.Email,
		identity.FirstName,
		identity.LastName,
		identity.PasswordHash,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return wrapStorageError(err, "failed to create identity")
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *PostgreSQLIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
			  FROM %s WHERE id = $1`, r.table)

	return r.scanIdentity(querier.QueryRowContext(ctx, query, id), "failed to get identity by id")
}

// GetByEmail retrieves an identity by its login email.
func (r *PostgreSQLIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
			  FROM %s WHERE email = $1`, r.table)

	return r.scanIdentity(querier.QueryRowContext(ctx, query, email), "failed to get identity by email")
}

// scanIdentity scans a single identity row, translating sql.ErrNoRows.
func (r *PostgreSQLIdentityRepository) scanIdentity(row *sql.Row, wrapMessage string) (*domain.Identity, error) {
	var identity domain.Identity

	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.FirstName,
		&identity.LastName,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, wrapStorageError(err, wrapMessage)
	}

	if r.table == domain.DomainCaptain.Table() {
		identity.Domain = domain.DomainCaptain
	} else {
		identity.Domain = domain.DomainUser
	}

	return &identity, nil
}

// isUniqueViolation checks if the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint"
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate entry")
}

// wrapStorageError maps lost-connection failures to ErrUnavailable and wraps
// everything else as an internal storage error.
func wrapStorageError(err error, message string) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperrors.Wrap(apperrors.ErrUnavailable, message+": "+err.Error())
	}
	return apperrors.Wrap(err, message)
}

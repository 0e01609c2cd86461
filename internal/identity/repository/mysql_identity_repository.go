package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/database"
	"github.com/openride/openride/internal/identity/domain"
)

// MySQLIdentityRepository handles identity persistence for MySQL.
type MySQLIdentityRepository struct {
	db    *sql.DB
	table string
}

// NewMySQLIdentityRepository creates a repository bound to the given identity domain.
func NewMySQLIdentityRepository(db *sql.DB, identityDomain domain.Domain) *MySQLIdentityRepository {
	return &MySQLIdentityRepository{
		db:    db,
		table: identityDomain.Table(),
	}
}

// Create inserts a new identity, relying on the unique email index for the
// atomic duplicate check.
func (r *MySQLIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`INSERT INTO %s (id, email, first_name, last_name, password_hash, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`, r.table)

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
func (r *MySQLIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
			  FROM %s WHERE id = ?`, r.table)

	return r.scanIdentity(querier.QueryRowContext(ctx, query, id), "failed to get identity by id")
}

// GetByEmail retrieves an identity by its login email.
func (r *MySQLIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
			  FROM %s WHERE email = ?`, r.table)

	return r.scanIdentity(querier.QueryRowContext(ctx, query, email), "failed to get identity by email")
}

func (r *MySQLIdentityRepository) scanIdentity(row *sql.Row, wrapMessage string) (*domain.Identity, error) {
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

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/training-tracker/internal/auth"
	"github.com/jmoiron/sqlx"
)

// Repository reads credentials through sqlx so the same query serves both the
// postgres and sqlite drivers via Rebind.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredential(ctx context.Context, employeeID string) (*auth.Credential, error) {
	var cred auth.Credential
	query := r.db.Rebind(`SELECT id, name, role, company, password_hash FROM employees WHERE id = ?`)

	if err := r.db.GetContext(ctx, &cred, query, employeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	return &cred, nil
}

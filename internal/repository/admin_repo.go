package repository

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository interface {
	GetByLoginID(ctx context.Context, loginID string) (*domain.Admin, error)
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	Create(ctx context.Context, a *domain.Admin) error
}

type adminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) GetByLoginID(ctx context.Context, loginID string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRow(ctx, `
		SELECT id, login_id, hashed_password FROM admins WHERE login_id = $1
	`, loginID).Scan(&a.ID, &a.LoginID, &a.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by login: %w", err)
	}
	return &a, nil
}

func (r *adminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRow(ctx, `
		SELECT id, login_id, hashed_password FROM admins WHERE id = $1
	`, id).Scan(&a.ID, &a.LoginID, &a.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (r *adminRepo) Create(ctx context.Context, a *domain.Admin) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO admins (login_id, hashed_password) VALUES ($1, $2) RETURNING id
	`, a.LoginID, a.HashedPassword).Scan(&a.ID)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
			return fmt.Errorf("admin %q: %w", a.LoginID, xerrors.ErrConflict)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

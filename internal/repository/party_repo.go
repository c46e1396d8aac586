package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PartyRepository persists parties. Delete removes the party together with
// every transaction referencing it.
type PartyRepository interface {
	Create(ctx context.Context, p *domain.Party) error
	GetByID(ctx context.Context, id int64) (*domain.Party, error)
	List(ctx context.Context) ([]*domain.Party, error)
	Search(ctx context.Context, term string) ([]*domain.Party, error)
	Update(ctx context.Context, p *domain.Party) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type partyRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPartyRepo(db *pgxpool.Pool, logger *zap.Logger) PartyRepository {
	return &partyRepo{db: db, logger: logger}
}

const partySelect = `SELECT id, name, billing_name, location, created_at, updated_at FROM parties`

func scanParty(row pgx.Row) (*domain.Party, error) {
	var p domain.Party
	if err := row.Scan(&p.ID, &p.Name, &p.BillingName, &p.Location, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanParties(rows pgx.Rows) ([]*domain.Party, error) {
	defer rows.Close()

	parties := make([]*domain.Party, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parties: %w", err)
	}
	return parties, nil
}

func (r *partyRepo) Create(ctx context.Context, p *domain.Party) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO parties (name, billing_name, location)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.BillingName, p.Location).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
			return fmt.Errorf("party %q: %w", p.Name, xerrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert party: %w", err)
	}
	return nil
}

func (r *partyRepo) GetByID(ctx context.Context, id int64) (*domain.Party, error) {
	p, err := scanParty(r.db.QueryRow(ctx, partySelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}
	return p, nil
}

func (r *partyRepo) List(ctx context.Context) ([]*domain.Party, error) {
	rows, err := r.db.Query(ctx, partySelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	return scanParties(rows)
}

func (r *partyRepo) Search(ctx context.Context, term string) ([]*domain.Party, error) {
	rows, err := r.db.Query(ctx, partySelect+` WHERE name ILIKE $1 ORDER BY name`, containsPattern(term))
	if err != nil {
		return nil, fmt.Errorf("failed to search parties: %w", err)
	}
	return scanParties(rows)
}

func (r *partyRepo) Update(ctx context.Context, p *domain.Party) error {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE parties
		SET name = $1, billing_name = $2, location = $3, updated_at = $4
		WHERE id = $5
	`, p.Name, p.BillingName, p.Location, now, p.ID)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
			return fmt.Errorf("party %q: %w", p.Name, xerrors.ErrConflict)
		}
		return fmt.Errorf("failed to update party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	p.UpdatedAt = &now
	return nil
}

// Delete removes the party's transactions and then the party in one
// database transaction.
func (r *partyRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	removed, err := tx.Exec(ctx, `DELETE FROM transactions WHERE party_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete party transactions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit party delete: %w", err)
	}

	r.logger.Info("party deleted",
		zap.Int64("party_id", id),
		zap.Int64("transactions_removed", removed.RowsAffected()))
	return true, nil
}

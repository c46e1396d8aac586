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

// TransactionTypeRepository persists transaction types. Delete cascades to
// the type's transactions.
type TransactionTypeRepository interface {
	Create(ctx context.Context, t *domain.TransactionType) error
	GetByID(ctx context.Context, id int64) (*domain.TransactionType, error)
	List(ctx context.Context) ([]*domain.TransactionType, error)
	Update(ctx context.Context, t *domain.TransactionType) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type transactionTypeRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionTypeRepo(db *pgxpool.Pool, logger *zap.Logger) TransactionTypeRepository {
	return &transactionTypeRepo{db: db, logger: logger}
}

const transactionTypeSelect = `SELECT id, note, kind, created_at, updated_at FROM transaction_types`

func scanTransactionType(row pgx.Row) (*domain.TransactionType, error) {
	var t domain.TransactionType
	if err := row.Scan(&t.ID, &t.Note, &t.Kind, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionTypeRepo) Create(ctx context.Context, t *domain.TransactionType) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO transaction_types (note, kind)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, t.Note, t.Kind).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction type: %w", err)
	}
	return nil
}

func (r *transactionTypeRepo) GetByID(ctx context.Context, id int64) (*domain.TransactionType, error) {
	t, err := scanTransactionType(r.db.QueryRow(ctx, transactionTypeSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction type: %w", err)
	}
	return t, nil
}

func (r *transactionTypeRepo) List(ctx context.Context) ([]*domain.TransactionType, error) {
	rows, err := r.db.Query(ctx, transactionTypeSelect+` ORDER BY kind, note`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction types: %w", err)
	}
	defer rows.Close()

	types := make([]*domain.TransactionType, 0)
	for rows.Next() {
		t, err := scanTransactionType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction types: %w", err)
	}
	return types, nil
}

func (r *transactionTypeRepo) Update(ctx context.Context, t *domain.TransactionType) error {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE transaction_types
		SET note = $1, kind = $2, updated_at = $3
		WHERE id = $4
	`, t.Note, t.Kind, now, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	t.UpdatedAt = &now
	return nil
}

func (r *transactionTypeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	removed, err := tx.Exec(ctx, `DELETE FROM transactions WHERE type_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete type transactions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM transaction_types WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction type delete: %w", err)
	}

	r.logger.Info("transaction type deleted",
		zap.Int64("type_id", id),
		zap.Int64("transactions_removed", removed.RowsAffected()))
	return true, nil
}

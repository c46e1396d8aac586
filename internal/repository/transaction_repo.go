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

// TransactionRepository persists ledger transactions and owns the serial
// counter.
type TransactionRepository interface {
	// NextSerial atomically reserves the next serial number. Reserved numbers
	// are never handed out again, even if the insert that used them fails.
	NextSerial(ctx context.Context) (int64, error)
	// MaxSerialNumber returns the highest stored serial; ok is false when the
	// table is empty.
	MaxSerialNumber(ctx context.Context) (maxSerial int64, ok bool, err error)

	// Insert stores t, filling ID and CreatedAt. A duplicate serial returns
	// ErrSerialConflict, a missing party or type ErrReferenceNotFound.
	Insert(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.TransactionWithRelations, error)
	// Query lists matching transactions ordered by date DESC, serial DESC.
	Query(ctx context.Context, f domain.TransactionFilter) ([]*domain.TransactionWithRelations, error)
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id int64) (bool, error)

	// SumByKind returns both partition sums over the filtered set, computed
	// from one snapshot.
	SumByKind(ctx context.Context, f domain.TransactionFilter) (increase, decrease int64, err error)
}

type transactionRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepo(db *pgxpool.Pool, logger *zap.Logger) TransactionRepository {
	return &transactionRepo{db: db, logger: logger}
}

const transactionJoinSelect = `
	SELECT t.id, t.serial_number, t.date, t.party_id, t.type_id, t.amount,
	       t.transaction_note, t.created_at, t.updated_at,
	       p.name, tt.kind, tt.note
	FROM transactions t
	JOIN parties p ON p.id = t.party_id
	JOIN transaction_types tt ON tt.id = t.type_id`

func scanTransactionWithRelations(row pgx.Row) (*domain.TransactionWithRelations, error) {
	var (
		t    domain.TransactionWithRelations
		date time.Time
	)
	err := row.Scan(
		&t.ID, &t.SerialNumber, &date, &t.PartyID, &t.TypeID, &t.Amount,
		&t.TransactionNote, &t.CreatedAt, &t.UpdatedAt,
		&t.PartyName, &t.TypeKind, &t.TypeNote,
	)
	if err != nil {
		return nil, err
	}
	t.Date = domain.DateOf(date)
	return &t, nil
}

// NextSerial bumps the counter row in a single statement. The row lock taken
// by ON CONFLICT DO UPDATE serializes concurrent callers, and GREATEST keeps
// the counter ahead of any serial already stored in transactions.
func (r *transactionRepo) NextSerial(ctx context.Context) (int64, error) {
	var serial int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO ledger_counters (name, value)
		VALUES ($1, (SELECT COALESCE(MAX(serial_number), 0) + 1 FROM transactions))
		ON CONFLICT (name) DO UPDATE
		SET value = GREATEST(
			ledger_counters.value,
			(SELECT COALESCE(MAX(serial_number), 0) FROM transactions)
		) + 1
		RETURNING value
	`, CounterTransactionSerial).Scan(&serial)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate serial number: %w", err)
	}
	return serial, nil
}

func (r *transactionRepo) MaxSerialNumber(ctx context.Context) (int64, bool, error) {
	var maxSerial *int64
	if err := r.db.QueryRow(ctx, `SELECT MAX(serial_number) FROM transactions`).Scan(&maxSerial); err != nil {
		return 0, false, fmt.Errorf("failed to read max serial number: %w", err)
	}
	if maxSerial == nil {
		return 0, false, nil
	}
	return *maxSerial, true, nil
}

func (r *transactionRepo) Insert(ctx context.Context, t *domain.Transaction) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (serial_number, date, party_id, type_id, amount, transaction_note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, t.SerialNumber, t.Date.Time, t.PartyID, t.TypeID, t.Amount, t.TransactionNote).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		switch xerrors.ParsePGErrorCode(err) {
		case xerrors.PGUniqueViolation:
			return fmt.Errorf("serial %d: %w", t.SerialNumber, xerrors.ErrSerialConflict)
		case xerrors.PGForeignKeyViolation:
			return fmt.Errorf("%s: %w", xerrors.ParsePGConstraint(err), xerrors.ErrReferenceNotFound)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*domain.TransactionWithRelations, error) {
	t, err := scanTransactionWithRelations(r.db.QueryRow(ctx, transactionJoinSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *transactionRepo) Query(ctx context.Context, f domain.TransactionFilter) ([]*domain.TransactionWithRelations, error) {
	where, args := whereTransactions(f)
	query := transactionJoinSelect + where + ` ORDER BY t.date DESC, t.serial_number DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*domain.TransactionWithRelations, 0)
	for rows.Next() {
		t, err := scanTransactionWithRelations(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// Update rewrites the mutable columns. The serial number is never changed.
func (r *transactionRepo) Update(ctx context.Context, t *domain.Transaction) error {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET date = $1, party_id = $2, type_id = $3, amount = $4,
		    transaction_note = $5, updated_at = $6
		WHERE id = $7
	`, t.Date.Time, t.PartyID, t.TypeID, t.Amount, t.TransactionNote, now, t.ID)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGForeignKeyViolation {
			return fmt.Errorf("%s: %w", xerrors.ParsePGConstraint(err), xerrors.ErrReferenceNotFound)
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	t.UpdatedAt = &now
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SumByKind partitions by the joined type kind in one statement; both sums
// default to 0 on an empty partition.
func (r *transactionRepo) SumByKind(ctx context.Context, f domain.TransactionFilter) (int64, int64, error) {
	where, args := whereTransactions(f)
	query := `
		SELECT
			COALESCE(SUM(t.amount) FILTER (WHERE tt.kind = 'increase'), 0)::BIGINT,
			COALESCE(SUM(t.amount) FILTER (WHERE tt.kind = 'decrease'), 0)::BIGINT
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		JOIN transaction_types tt ON tt.id = t.type_id` + where

	var increase, decrease int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&increase, &decrease); err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGNumericOutOfRange {
			return 0, 0, fmt.Errorf("failed to sum transactions: %w", xerrors.ErrAmountOverflow)
		}
		return 0, 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return increase, decrease, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	xerrors "ledger-service/pkg/errors"

	"go.uber.org/zap"
)

type TransactionUsecase struct {
	txRepo    repository.TransactionRepository
	partyRepo repository.PartyRepository
	typeRepo  repository.TransactionTypeRepository
	sequencer *SerialSequencer
	changes   *ChangePublisher
	logger    *zap.Logger
}

func NewTransactionUsecase(
	txRepo repository.TransactionRepository,
	partyRepo repository.PartyRepository,
	typeRepo repository.TransactionTypeRepository,
	sequencer *SerialSequencer,
	changes *ChangePublisher,
	logger *zap.Logger,
) *TransactionUsecase {
	return &TransactionUsecase{
		txRepo:    txRepo,
		partyRepo: partyRepo,
		typeRepo:  typeRepo,
		sequencer: sequencer,
		changes:   changes,
		logger:    logger,
	}
}

// ===============================
// VALIDATION
// ===============================

func validateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", xerrors.ErrNonPositiveAmount, amount)
	}
	return nil
}

func (uc *TransactionUsecase) resolveParty(ctx context.Context, partyID int64) (*domain.Party, error) {
	party, err := uc.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("party %d: %w", partyID, xerrors.ErrReferenceNotFound)
		}
		return nil, err
	}
	return party, nil
}

func (uc *TransactionUsecase) resolveType(ctx context.Context, typeID int64) (*domain.TransactionType, error) {
	tt, err := uc.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("transaction type %d: %w", typeID, xerrors.ErrReferenceNotFound)
		}
		return nil, err
	}
	return tt, nil
}

// ===============================
// COMMANDS
// ===============================

// Create validates the request, assigns a serial number and stores the
// transaction. A missing note takes the type's note as of now.
func (uc *TransactionUsecase) Create(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.TransactionWithRelations, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", xerrors.ErrInvalidInput)
	}

	party, err := uc.resolveParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}
	tt, err := uc.resolveType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}

	note := req.TransactionNote
	if note == nil {
		snapshot := tt.Note
		note = &snapshot
	}

	tx := &domain.Transaction{
		Date:            req.Date,
		PartyID:         party.ID,
		TypeID:          tt.ID,
		Amount:          req.Amount,
		TransactionNote: note,
	}

	_, err = uc.sequencer.Allocate(ctx, func(serial int64) error {
		tx.SerialNumber = serial
		return uc.txRepo.Insert(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("transaction created",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("serial", tx.SerialNumber),
		zap.Int64("party_id", tx.PartyID),
		zap.String("kind", string(tt.Kind)),
		zap.Int64("amount", tx.Amount))

	created := &domain.TransactionWithRelations{
		Transaction: *tx,
		PartyName:   party.Name,
		TypeKind:    tt.Kind,
		TypeNote:    tt.Note,
	}
	uc.changes.EntityChanged(ctx, domain.EventTransactionCreated, strconv.FormatInt(tx.ID, 10), created, true)
	return created, nil
}

// Update applies the non-nil fields of req. The serial number never changes.
func (uc *TransactionUsecase) Update(ctx context.Context, id int64, req *domain.UpdateTransactionRequest) (*domain.TransactionWithRelations, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", xerrors.ErrInvalidInput)
	}

	current, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := current.Transaction

	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
		tx.Amount = *req.Amount
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, fmt.Errorf("%w: date is required", xerrors.ErrInvalidInput)
		}
		tx.Date = *req.Date
	}
	if req.PartyID != nil {
		tx.PartyID = *req.PartyID
	}
	if req.TypeID != nil {
		tx.TypeID = *req.TypeID
	}
	if req.TransactionNote != nil {
		note := *req.TransactionNote
		tx.TransactionNote = &note
	}

	party, err := uc.resolveParty(ctx, tx.PartyID)
	if err != nil {
		return nil, err
	}
	tt, err := uc.resolveType(ctx, tx.TypeID)
	if err != nil {
		return nil, err
	}

	if err := uc.txRepo.Update(ctx, &tx); err != nil {
		return nil, err
	}

	uc.logger.Info("transaction updated",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("serial", tx.SerialNumber))

	updated := &domain.TransactionWithRelations{
		Transaction: tx,
		PartyName:   party.Name,
		TypeKind:    tt.Kind,
		TypeNote:    tt.Note,
	}
	uc.changes.EntityChanged(ctx, domain.EventTransactionUpdated, strconv.FormatInt(tx.ID, 10), updated, true)
	return updated, nil
}

// Delete removes the transaction. Its serial number is not reused.
func (uc *TransactionUsecase) Delete(ctx context.Context, id int64) error {
	deleted, err := uc.txRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return xerrors.ErrNotFound
	}

	uc.logger.Info("transaction deleted", zap.Int64("transaction_id", id))
	uc.changes.EntityChanged(ctx, domain.EventTransactionDeleted, strconv.FormatInt(id, 10), domain.DeletedData{ID: id}, true)
	return nil
}

// ===============================
// QUERIES
// ===============================

func (uc *TransactionUsecase) Get(ctx context.Context, id int64) (*domain.TransactionWithRelations, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// List returns matching transactions, newest date first and, within a day,
// highest serial first.
func (uc *TransactionUsecase) List(ctx context.Context, f domain.TransactionFilter) ([]*domain.TransactionWithRelations, error) {
	txs, err := uc.txRepo.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

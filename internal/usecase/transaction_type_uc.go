package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	xerrors "ledger-service/pkg/errors"

	"go.uber.org/zap"
)

type TransactionTypeUsecase struct {
	repo    repository.TransactionTypeRepository
	changes *ChangePublisher
	logger  *zap.Logger
}

func NewTransactionTypeUsecase(repo repository.TransactionTypeRepository, changes *ChangePublisher, logger *zap.Logger) *TransactionTypeUsecase {
	return &TransactionTypeUsecase{
		repo:    repo,
		changes: changes,
		logger:  logger,
	}
}

func validateKind(kind domain.TransactionKind) (domain.TransactionKind, error) {
	parsed, err := domain.ParseKind(string(kind))
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}
	return parsed, nil
}

func (uc *TransactionTypeUsecase) Create(ctx context.Context, req *domain.CreateTransactionTypeRequest) (*domain.TransactionType, error) {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, fmt.Errorf("%w: note is required", xerrors.ErrInvalidInput)
	}
	kind, err := validateKind(req.Kind)
	if err != nil {
		return nil, err
	}

	t := &domain.TransactionType{Note: note, Kind: kind}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	uc.logger.Info("transaction type created",
		zap.Int64("type_id", t.ID),
		zap.String("kind", string(t.Kind)))
	uc.changes.EntityChanged(ctx, domain.EventTransactionTypeCreated, strconv.FormatInt(t.ID, 10), t, false)
	return t, nil
}

func (uc *TransactionTypeUsecase) Get(ctx context.Context, id int64) (*domain.TransactionType, error) {
	return uc.repo.GetByID(ctx, id)
}

// List returns types ordered by kind, then note.
func (uc *TransactionTypeUsecase) List(ctx context.Context) ([]*domain.TransactionType, error) {
	return uc.repo.List(ctx)
}

// Update changes a type's note or kind. Stored transaction notes keep the
// text they were created with; a kind change flips the sign of every
// transaction of this type, so the total is pushed again.
func (uc *TransactionTypeUsecase) Update(ctx context.Context, id int64, req *domain.UpdateTransactionTypeRequest) (*domain.TransactionType, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", xerrors.ErrInvalidInput)
	}

	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		if note == "" {
			return nil, fmt.Errorf("%w: note is required", xerrors.ErrInvalidInput)
		}
		t.Note = note
	}
	if req.Kind != nil {
		kind, err := validateKind(*req.Kind)
		if err != nil {
			return nil, err
		}
		t.Kind = kind
	}

	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	uc.logger.Info("transaction type updated", zap.Int64("type_id", t.ID))
	uc.changes.EntityChanged(ctx, domain.EventTransactionTypeUpdated, strconv.FormatInt(t.ID, 10), t, true)
	return t, nil
}

// Delete removes the type and every transaction of that type.
func (uc *TransactionTypeUsecase) Delete(ctx context.Context, id int64) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return xerrors.ErrNotFound
	}

	uc.changes.EntityChanged(ctx, domain.EventTransactionTypeDeleted, strconv.FormatInt(id, 10), domain.DeletedData{ID: id}, true)
	return nil
}

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

type PartyUsecase struct {
	repo    repository.PartyRepository
	changes *ChangePublisher
	logger  *zap.Logger
}

func NewPartyUsecase(repo repository.PartyRepository, changes *ChangePublisher, logger *zap.Logger) *PartyUsecase {
	return &PartyUsecase{
		repo:    repo,
		changes: changes,
		logger:  logger,
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: party name is required", xerrors.ErrInvalidInput)
	}
	return name, nil
}

// Create adds a party. A new party has no transactions, so the outstanding
// total is not rebroadcast.
func (uc *PartyUsecase) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.Party, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}

	p := &domain.Party{
		Name:        name,
		BillingName: req.BillingName,
		Location:    req.Location,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("party created", zap.Int64("party_id", p.ID), zap.String("name", p.Name))
	uc.changes.EntityChanged(ctx, domain.EventPartyCreated, strconv.FormatInt(p.ID, 10), p, false)
	return p, nil
}

func (uc *PartyUsecase) Get(ctx context.Context, id int64) (*domain.Party, error) {
	return uc.repo.GetByID(ctx, id)
}

// List returns all parties ordered by name.
func (uc *PartyUsecase) List(ctx context.Context) ([]*domain.Party, error) {
	return uc.repo.List(ctx)
}

// Search matches parties whose name contains term, ignoring case.
func (uc *PartyUsecase) Search(ctx context.Context, term string) ([]*domain.Party, error) {
	return uc.repo.Search(ctx, strings.TrimSpace(term))
}

// Update renames or re-describes a party. A rename changes which
// transactions match a party filter, so the total is pushed again.
func (uc *PartyUsecase) Update(ctx context.Context, id int64, req *domain.UpdatePartyRequest) (*domain.Party, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", xerrors.ErrInvalidInput)
	}

	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if req.BillingName != nil {
		p.BillingName = req.BillingName
	}
	if req.Location != nil {
		p.Location = req.Location
	}

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("party updated", zap.Int64("party_id", p.ID))
	uc.changes.EntityChanged(ctx, domain.EventPartyUpdated, strconv.FormatInt(p.ID, 10), p, true)
	return p, nil
}

// Delete removes the party and all of its transactions.
func (uc *PartyUsecase) Delete(ctx context.Context, id int64) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return xerrors.ErrNotFound
	}

	uc.changes.EntityChanged(ctx, domain.EventPartyDeleted, strconv.FormatInt(id, 10), domain.DeletedData{ID: id}, true)
	return nil
}

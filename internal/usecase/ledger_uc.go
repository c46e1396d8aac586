package usecase

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"go.uber.org/zap"
)

// LedgerUsecase computes outstanding balances. Each computation is a single
// repository call so both partition sums come from the same snapshot.
type LedgerUsecase struct {
	txRepo repository.TransactionRepository
	logger *zap.Logger
}

func NewLedgerUsecase(txRepo repository.TransactionRepository, logger *zap.Logger) *LedgerUsecase {
	return &LedgerUsecase{
		txRepo: txRepo,
		logger: logger,
	}
}

// ComputeOutstanding sums transactions whose party name contains
// partyFilter (case-insensitive) and whose date is on or before dateCutoff.
// Empty filter and nil cutoff mean no restriction.
func (uc *LedgerUsecase) ComputeOutstanding(ctx context.Context, partyFilter string, dateCutoff *domain.Date) (domain.Outstanding, error) {
	return uc.ComputeOutstandingRange(ctx, domain.TransactionFilter{
		PartyFilter: partyFilter,
		DateEnd:     dateCutoff,
	})
}

// ComputeOutstandingRange is ComputeOutstanding with an inclusive start date.
func (uc *LedgerUsecase) ComputeOutstandingRange(ctx context.Context, f domain.TransactionFilter) (domain.Outstanding, error) {
	scope := "filtered"
	if f.PartyFilter == "" && f.DateStart == nil && f.DateEnd == nil {
		scope = "global"
	}
	start := time.Now()
	defer func() {
		aggregateDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	}()

	increase, decrease, err := uc.txRepo.SumByKind(ctx, f)
	if err != nil {
		return domain.Outstanding{}, fmt.Errorf("compute outstanding: %w", err)
	}
	return domain.NewOutstanding(increase, decrease), nil
}

// CurrentTotal is the unfiltered outstanding total pushed to subscribers.
func (uc *LedgerUsecase) CurrentTotal(ctx context.Context) (int64, error) {
	out, err := uc.ComputeOutstandingRange(ctx, domain.TransactionFilter{})
	if err != nil {
		return 0, err
	}
	return out.Total, nil
}

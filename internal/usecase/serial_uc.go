package usecase

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/repository"
	xerrors "ledger-service/pkg/errors"

	"go.uber.org/zap"
)

const DefaultSerialMaxAttempts = 5

// SerialSequencer hands out strictly increasing transaction serial numbers.
// Uniqueness comes from the repository's counter row; the sequencer only
// retries when an insert still collides.
type SerialSequencer struct {
	repo        repository.TransactionRepository
	maxAttempts int
	logger      *zap.Logger
}

func NewSerialSequencer(repo repository.TransactionRepository, maxAttempts int, logger *zap.Logger) *SerialSequencer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSerialMaxAttempts
	}
	return &SerialSequencer{
		repo:        repo,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// NextSerial reserves the next serial: 1 on an empty ledger, otherwise one
// past the highest serial ever allocated.
func (s *SerialSequencer) NextSerial(ctx context.Context) (int64, error) {
	serial, err := s.repo.NextSerial(ctx)
	if err != nil {
		return 0, fmt.Errorf("next serial: %w", err)
	}
	return serial, nil
}

// Allocate reserves a serial and passes it to insert. When insert reports
// ErrSerialConflict a fresh serial is reserved and insert runs again, up to
// maxAttempts times. Any other error is returned as is.
func (s *SerialSequencer) Allocate(ctx context.Context, insert func(serial int64) error) (int64, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		serial, err := s.NextSerial(ctx)
		if err != nil {
			return 0, err
		}

		err = insert(serial)
		if err == nil {
			serialAllocations.Inc()
			return serial, nil
		}
		if !errors.Is(err, xerrors.ErrSerialConflict) {
			return 0, err
		}

		serialRetries.Inc()
		s.logger.Warn("serial number conflict, retrying",
			zap.Int64("serial", serial),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts))
	}

	s.logger.Error("serial allocation exhausted", zap.Int("max_attempts", s.maxAttempts))
	return 0, xerrors.ErrSerialExhausted
}

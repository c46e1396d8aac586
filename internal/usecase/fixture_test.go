package usecase

import (
	"context"
	"sync"
	"testing"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	"ledger-service/pkg/notifier/ws"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSub struct {
	id     string
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSub) ID() string   { return s.id }
func (s *recordingSub) Close() error { return nil }

func (s *recordingSub) Send(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSub) reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

// totals returns the outstanding_total values received, in order.
func (s *recordingSub) totals() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, e := range s.events {
		if e.Type == domain.EventOutstandingTotal {
			out = append(out, e.Data.(domain.OutstandingTotalData).Total)
		}
	}
	return out
}

func (s *recordingSub) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingEvents struct {
	mu     sync.Mutex
	events []*domain.LedgerEvent
}

func (r *recordingEvents) Publish(_ context.Context, e *domain.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

type harness struct {
	store     *repository.MemoryStore
	ledger    *LedgerUsecase
	sequencer *SerialSequencer
	manager   *ws.Manager
	events    *recordingEvents
	parties   *PartyUsecase
	types     *TransactionTypeUsecase
	txs       *TransactionUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()

	ledger := NewLedgerUsecase(store.Transactions(), logger)
	manager := ws.NewManager(ledger, logger)
	events := &recordingEvents{}
	changes := NewChangePublisher(manager, events, ledger, logger)
	sequencer := NewSerialSequencer(store.Transactions(), DefaultSerialMaxAttempts, logger)

	return &harness{
		store:     store,
		ledger:    ledger,
		sequencer: sequencer,
		manager:   manager,
		events:    events,
		parties:   NewPartyUsecase(store.Parties(), changes, logger),
		types:     NewTransactionTypeUsecase(store.TransactionTypes(), changes, logger),
		txs:       NewTransactionUsecase(store.Transactions(), store.Parties(), store.TransactionTypes(), sequencer, changes, logger),
	}
}

func (h *harness) party(t *testing.T, name string) *domain.Party {
	t.Helper()
	p, err := h.parties.Create(context.Background(), &domain.CreatePartyRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (h *harness) txType(t *testing.T, kind domain.TransactionKind, note string) *domain.TransactionType {
	t.Helper()
	tt, err := h.types.Create(context.Background(), &domain.CreateTransactionTypeRequest{Kind: kind, Note: note})
	require.NoError(t, err)
	return tt
}

func (h *harness) create(t *testing.T, partyID, typeID int64, date domain.Date, amount int64) *domain.TransactionWithRelations {
	t.Helper()
	tx, err := h.txs.Create(context.Background(), &domain.CreateTransactionRequest{
		Date:    date,
		PartyID: partyID,
		TypeID:  typeID,
		Amount:  amount,
	})
	require.NoError(t, err)
	return tx
}

func (h *harness) subscribe(t *testing.T, id string) *recordingSub {
	t.Helper()
	sub := &recordingSub{id: id}
	require.NoError(t, h.manager.Subscribe(context.Background(), sub))
	return sub
}

func zapNop() *zap.Logger { return zap.NewNop() }

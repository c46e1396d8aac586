package repository

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedParty(t *testing.T, s *MemoryStore, name string) *domain.Party {
	t.Helper()
	p := &domain.Party{Name: name}
	require.NoError(t, s.Parties().Create(context.Background(), p))
	return p
}

func seedType(t *testing.T, s *MemoryStore, kind domain.TransactionKind, note string) *domain.TransactionType {
	t.Helper()
	tt := &domain.TransactionType{Kind: kind, Note: note}
	require.NoError(t, s.TransactionTypes().Create(context.Background(), tt))
	return tt
}

func seedTx(t *testing.T, s *MemoryStore, party, typ int64, date domain.Date, amount int64) *domain.Transaction {
	t.Helper()
	ctx := context.Background()
	serial, err := s.Transactions().NextSerial(ctx)
	require.NoError(t, err)
	tx := &domain.Transaction{SerialNumber: serial, Date: date, PartyID: party, TypeID: typ, Amount: amount}
	require.NoError(t, s.Transactions().Insert(ctx, tx))
	return tx
}

func TestMemoryNextSerial_StartsAtOneAndNeverReuses(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := seedParty(t, s, "Acme")
	tt := seedType(t, s, domain.KindIncrease, "Sale")

	_, ok, err := s.Transactions().MaxSerialNumber(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first := seedTx(t, s, p.ID, tt.ID, domain.NewDate(2024, 1, 1), 10)
	second := seedTx(t, s, p.ID, tt.ID, domain.NewDate(2024, 1, 2), 10)
	assert.Equal(t, int64(1), first.SerialNumber)
	assert.Equal(t, int64(2), second.SerialNumber)

	deleted, err := s.Transactions().Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	next, err := s.Transactions().NextSerial(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestMemoryNextSerial_ConcurrentUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const n = 100
	serials := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Transactions().NextSerial(ctx)
			assert.NoError(t, err)
			serials <- v
		}()
	}
	wg.Wait()
	close(serials)

	seen := make(map[int64]bool)
	for v := range serials {
		assert.False(t, seen[v], "serial %d allocated twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryInsert_Errors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := seedParty(t, s, "Acme")
	tt := seedType(t, s, domain.KindIncrease, "Sale")
	existing := seedTx(t, s, p.ID, tt.ID, domain.NewDate(2024, 1, 1), 10)

	dup := &domain.Transaction{SerialNumber: existing.SerialNumber, Date: existing.Date, PartyID: p.ID, TypeID: tt.ID, Amount: 5}
	assert.ErrorIs(t, s.Transactions().Insert(ctx, dup), xerrors.ErrSerialConflict)

	missingParty := &domain.Transaction{SerialNumber: 99, Date: existing.Date, PartyID: 404, TypeID: tt.ID, Amount: 5}
	assert.ErrorIs(t, s.Transactions().Insert(ctx, missingParty), xerrors.ErrReferenceNotFound)

	missingType := &domain.Transaction{SerialNumber: 99, Date: existing.Date, PartyID: p.ID, TypeID: 404, Amount: 5}
	assert.ErrorIs(t, s.Transactions().Insert(ctx, missingType), xerrors.ErrReferenceNotFound)

	rows, err := s.Transactions().Query(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemoryQuery_OrderAndFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	acme := seedParty(t, s, "Acme Corp")
	beta := seedParty(t, s, "Beta")
	sale := seedType(t, s, domain.KindIncrease, "Sale")

	a := seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 1), 1)
	b := seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 2, 1), 1)
	c := seedTx(t, s, beta.ID, sale.ID, domain.NewDate(2024, 2, 1), 1)

	rows, err := s.Transactions().Query(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, "Beta", rows[0].PartyName)
	assert.Equal(t, domain.KindIncrease, rows[0].TypeKind)

	start := domain.NewDate(2024, 1, 15)
	rows, err = s.Transactions().Query(ctx, domain.TransactionFilter{PartyFilter: "acme", DateStart: &start})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)
}

func TestMemorySumByKind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	inc, dec, err := s.Transactions().SumByKind(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, inc)
	assert.Zero(t, dec)

	acme := seedParty(t, s, "Acme")
	sale := seedType(t, s, domain.KindIncrease, "Sale")
	payment := seedType(t, s, domain.KindDecrease, "Payment")
	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 1), 100000)
	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 5), 150000)
	seedTx(t, s, acme.ID, payment.ID, domain.NewDate(2024, 1, 10), 60000)

	inc, dec, err = s.Transactions().SumByKind(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(250000), inc)
	assert.Equal(t, int64(60000), dec)
}

func TestMemorySumByKind_Overflow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	acme := seedParty(t, s, "Acme")
	sale := seedType(t, s, domain.KindIncrease, "Sale")
	payment := seedType(t, s, domain.KindDecrease, "Payment")
	seedTx(t, s, acme.ID, payment.ID, domain.NewDate(2024, 1, 1), math.MaxInt64)
	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 2), math.MaxInt64/2+1)

	_, dec, err := s.Transactions().SumByKind(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), dec)

	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 3), math.MaxInt64/2+1)

	_, _, err = s.Transactions().SumByKind(ctx, domain.TransactionFilter{})
	assert.ErrorIs(t, err, xerrors.ErrAmountOverflow)
}

func TestMemoryPartyDelete_Cascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	acme := seedParty(t, s, "Acme")
	beta := seedParty(t, s, "Beta")
	sale := seedType(t, s, domain.KindIncrease, "Sale")
	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)
	kept := seedTx(t, s, beta.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	deleted, err := s.Parties().Delete(ctx, acme.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	rows, err := s.Transactions().Query(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.ID, rows[0].ID)

	deleted, err = s.Parties().Delete(ctx, acme.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryTypeDelete_Cascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	acme := seedParty(t, s, "Acme")
	sale := seedType(t, s, domain.KindIncrease, "Sale")
	seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	deleted, err := s.TransactionTypes().Delete(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	inc, _, err := s.Transactions().SumByKind(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, inc)
}

func TestMemoryParties_UniqueNameAndSearch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedParty(t, s, "Zeta")
	acme := seedParty(t, s, "Acme Corp")

	assert.ErrorIs(t, s.Parties().Create(ctx, &domain.Party{Name: "Zeta"}), xerrors.ErrConflict)

	renamed := &domain.Party{ID: acme.ID, Name: "Zeta"}
	assert.ErrorIs(t, s.Parties().Update(ctx, renamed), xerrors.ErrConflict)

	all, err := s.Parties().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme Corp", all[0].Name)

	found, err := s.Parties().Search(ctx, "CORP")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, acme.ID, found[0].ID)
}

func TestMemoryTypes_OrderedByKindThenNote(t *testing.T) {
	s := NewMemoryStore()
	seedType(t, s, domain.KindIncrease, "Sale")
	seedType(t, s, domain.KindDecrease, "Refund")
	seedType(t, s, domain.KindDecrease, "Payment")

	types, err := s.TransactionTypes().List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "Payment", types[0].Note)
	assert.Equal(t, "Refund", types[1].Note)
	assert.Equal(t, "Sale", types[2].Note)
}

func TestMemoryUpdate_KeepsSerial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	acme := seedParty(t, s, "Acme")
	sale := seedType(t, s, domain.KindIncrease, "Sale")
	tx := seedTx(t, s, acme.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	changed := *tx
	changed.SerialNumber = 999
	changed.Amount = 20
	require.NoError(t, s.Transactions().Update(ctx, &changed))
	assert.Equal(t, tx.SerialNumber, changed.SerialNumber)
	require.NotNil(t, changed.UpdatedAt)
	assert.WithinDuration(t, time.Now(), *changed.UpdatedAt, time.Minute)

	got, err := s.Transactions().GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Amount)

	assert.ErrorIs(t, s.Transactions().Update(ctx, &domain.Transaction{ID: 404}), xerrors.ErrNotFound)
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestWhereTransactions(t *testing.T) {
	start, end := domain.NewDate(2024, 1, 1), domain.NewDate(2024, 1, 31)

	clause, args := whereTransactions(domain.TransactionFilter{})
	assert.Equal(t, ` WHERE 1=1`, clause)
	assert.Empty(t, args)

	clause, args = whereTransactions(domain.TransactionFilter{PartyFilter: "acme", DateStart: &start, DateEnd: &end})
	assert.Equal(t, ` WHERE 1=1 AND p.name ILIKE $1 AND t.date >= $2 AND t.date <= $3`, clause)
	assert.Equal(t, []interface{}{"%acme%", start.Time, end.Time}, args)
}

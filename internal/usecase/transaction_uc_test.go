package usecase

import (
	"context"
	"testing"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")

	for _, amount := range []int64{0, -5} {
		_, err := h.txs.Create(context.Background(), &domain.CreateTransactionRequest{
			Date: domain.NewDate(2024, 1, 1), PartyID: p.ID, TypeID: sale.ID, Amount: amount,
		})
		assert.ErrorIs(t, err, xerrors.ErrNonPositiveAmount)
	}

	rows, err := h.txs.List(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreate_MissingReferences(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	sub := h.subscribe(t, "watcher")
	sub.reset()

	_, err := h.txs.Create(context.Background(), &domain.CreateTransactionRequest{
		Date: domain.NewDate(2024, 1, 1), PartyID: 999, TypeID: sale.ID, Amount: 10,
	})
	assert.ErrorIs(t, err, xerrors.ErrReferenceNotFound)

	_, err = h.txs.Create(context.Background(), &domain.CreateTransactionRequest{
		Date: domain.NewDate(2024, 1, 1), PartyID: p.ID, TypeID: 999, Amount: 10,
	})
	assert.ErrorIs(t, err, xerrors.ErrReferenceNotFound)

	assert.Empty(t, sub.types())
	maxSerial, ok, err := h.store.Transactions().MaxSerialNumber(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, maxSerial)
}

func TestCreate_SnapshotsTypeNote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Invoice")

	tx := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)
	require.NotNil(t, tx.TransactionNote)
	assert.Equal(t, "Invoice", *tx.TransactionNote)

	renamed := "Sales invoice"
	_, err := h.types.Update(ctx, sale.ID, &domain.UpdateTransactionTypeRequest{Note: &renamed})
	require.NoError(t, err)

	got, err := h.txs.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", *got.TransactionNote)
	assert.Equal(t, "Sales invoice", got.TypeNote)
}

func TestPushOnMutation_OneTotalPerSubscriber(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	payment := h.txType(t, domain.KindDecrease, "Payment")

	a, b := h.subscribe(t, "a"), h.subscribe(t, "b")
	assert.Equal(t, []int64{0}, a.totals())

	expect := func(want int64) {
		t.Helper()
		fresh, err := h.ledger.CurrentTotal(ctx)
		require.NoError(t, err)
		require.Equal(t, want, fresh)
		for _, sub := range []*recordingSub{a, b} {
			assert.Equal(t, []int64{want}, sub.totals(), "subscriber %s", sub.id)
			sub.reset()
		}
	}
	a.reset()
	b.reset()

	tx := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 500)
	expect(500)

	h.create(t, p.ID, payment.ID, domain.NewDate(2024, 1, 2), 200)
	expect(300)

	amount := int64(800)
	_, err := h.txs.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{Amount: &amount})
	require.NoError(t, err)
	expect(600)

	require.NoError(t, h.txs.Delete(ctx, tx.ID))
	expect(-200)
}

func TestPushOnMutation_EntityEventPrecedesTotal(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	sub := h.subscribe(t, "a")
	sub.reset()

	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	assert.Equal(t, []string{domain.EventTransactionCreated, domain.EventOutstandingTotal}, sub.types())

	h.events.mu.Lock()
	defer h.events.mu.Unlock()
	last := h.events.events[len(h.events.events)-1]
	assert.Equal(t, "transaction.created", last.Type)
	assert.NotEmpty(t, last.ID)
}

func TestUpdate_KeepsSerialAndValidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.party(t, "Acme")
	other := h.party(t, "Beta")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	tx := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	_, err := h.txs.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	zero := int64(0)
	_, err = h.txs.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{Amount: &zero})
	assert.ErrorIs(t, err, xerrors.ErrNonPositiveAmount)

	missing := int64(404)
	_, err = h.txs.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{TypeID: &missing})
	assert.ErrorIs(t, err, xerrors.ErrReferenceNotFound)

	_, err = h.txs.Update(ctx, 404, &domain.UpdateTransactionRequest{Amount: &missing})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	updated, err := h.txs.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{PartyID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, tx.SerialNumber, updated.SerialNumber)
	assert.Equal(t, "Beta", updated.PartyName)
	assert.Equal(t, int64(10), updated.Amount)
}

func TestDelete_Unknown(t *testing.T) {
	h := newHarness(t)
	sub := h.subscribe(t, "a")
	sub.reset()

	assert.ErrorIs(t, h.txs.Delete(context.Background(), 42), xerrors.ErrNotFound)
	assert.Empty(t, sub.types())
}

func TestList_OrderedByDateThenSerial(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")

	older := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 1)
	sameDayFirst := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 3, 1), 1)
	sameDaySecond := h.create(t, p.ID, sale.ID, domain.NewDate(2024, 3, 1), 1)

	rows, err := h.txs.List(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, sameDaySecond.ID, rows[0].ID)
	assert.Equal(t, sameDayFirst.ID, rows[1].ID)
	assert.Equal(t, older.ID, rows[2].ID)
}

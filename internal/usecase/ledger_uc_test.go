package usecase

import (
	"context"
	"testing"

	"ledger-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOutstanding_EmptyIsZero(t *testing.T) {
	h := newHarness(t)

	out, err := h.ledger.ComputeOutstanding(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Outstanding{}, out)
}

func TestComputeOutstanding_Partitions(t *testing.T) {
	tests := []struct {
		name      string
		increases []int64
		decreases []int64
		want      int64
	}{
		{name: "only increases", increases: []int64{100, 250}, want: 350},
		{name: "only decreases", decreases: []int64{40, 60}, want: -100},
		{name: "mixed", increases: []int64{500}, decreases: []int64{125}, want: 375},
		{
			name:      "example scenario",
			increases: []int64{50000, 75000, 100000},
			decreases: []int64{30000, 5000},
			want:      190000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			p := h.party(t, "Acme")
			sale := h.txType(t, domain.KindIncrease, "Sale")
			payment := h.txType(t, domain.KindDecrease, "Payment")

			for _, a := range tt.increases {
				h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), a)
			}
			for _, a := range tt.decreases {
				h.create(t, p.ID, payment.ID, domain.NewDate(2024, 1, 1), a)
			}

			out, err := h.ledger.ComputeOutstanding(context.Background(), "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Total)
			assert.Equal(t, out.IncreaseTotal-out.DecreaseTotal, out.Total)

			total, err := h.ledger.CurrentTotal(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestComputeOutstanding_FilterComposition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acme := h.party(t, "Acme Traders")
	acmeWest := h.party(t, "ACME West")
	beta := h.party(t, "Beta Ltd")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	payment := h.txType(t, domain.KindDecrease, "Payment")

	h.create(t, acme.ID, sale.ID, domain.NewDate(2024, 1, 10), 1000)
	h.create(t, acme.ID, payment.ID, domain.NewDate(2024, 2, 10), 300)
	h.create(t, acmeWest.ID, sale.ID, domain.NewDate(2024, 1, 31), 700)
	h.create(t, acmeWest.ID, sale.ID, domain.NewDate(2024, 3, 1), 50)
	h.create(t, beta.ID, sale.ID, domain.NewDate(2024, 1, 5), 9000)

	cutoff := domain.NewDate(2024, 1, 31)

	combined, err := h.ledger.ComputeOutstanding(ctx, "acme", &cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1700), combined.Total)

	// Intersect the two independently filtered listings and sum them by hand.
	byParty, err := h.txs.List(ctx, domain.TransactionFilter{PartyFilter: "acme"})
	require.NoError(t, err)
	byDate, err := h.txs.List(ctx, domain.TransactionFilter{DateEnd: &cutoff})
	require.NoError(t, err)

	inDate := make(map[int64]bool)
	for _, tx := range byDate {
		inDate[tx.ID] = true
	}
	var manual int64
	for _, tx := range byParty {
		if !inDate[tx.ID] {
			continue
		}
		if tx.TypeKind == domain.KindIncrease {
			manual += tx.Amount
		} else {
			manual -= tx.Amount
		}
	}
	assert.Equal(t, manual, combined.Total)
}

func TestComputeOutstandingRange_InclusiveBounds(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")

	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 1)
	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 15), 10)
	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 31), 100)
	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 2, 1), 1000)

	start, end := domain.NewDate(2024, 1, 15), domain.NewDate(2024, 1, 31)
	out, err := h.ledger.ComputeOutstandingRange(context.Background(), domain.TransactionFilter{
		DateStart: &start,
		DateEnd:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(110), out.Total)
}

func TestComputeOutstanding_NoMatchIsZero(t *testing.T) {
	h := newHarness(t)
	p := h.party(t, "Acme")
	sale := h.txType(t, domain.KindIncrease, "Sale")
	h.create(t, p.ID, sale.ID, domain.NewDate(2024, 1, 1), 10)

	out, err := h.ledger.ComputeOutstanding(context.Background(), "nobody", nil)
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Zero(t, out.IncreaseTotal)
	assert.Zero(t, out.DecreaseTotal)
}

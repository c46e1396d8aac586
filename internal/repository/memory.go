package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"
)

// MemoryStore keeps every ledger table in process memory behind one lock.
// It satisfies the same repository contracts as the postgres
// implementation and is selected with STORE_DRIVER=memory.
type MemoryStore struct {
	mu sync.RWMutex

	parties      map[int64]*domain.Party
	types        map[int64]*domain.TransactionType
	transactions map[int64]*domain.Transaction
	admins       map[int64]*domain.Admin

	nextPartyID int64
	nextTypeID  int64
	nextTxID    int64
	nextAdminID int64

	// lastSerial is the counter row: the highest serial ever reserved.
	lastSerial int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		parties:      make(map[int64]*domain.Party),
		types:        make(map[int64]*domain.TransactionType),
		transactions: make(map[int64]*domain.Transaction),
		admins:       make(map[int64]*domain.Admin),
	}
}

func (s *MemoryStore) Parties() PartyRepository                   { return &memPartyRepo{s} }
func (s *MemoryStore) TransactionTypes() TransactionTypeRepository { return &memTypeRepo{s} }
func (s *MemoryStore) Transactions() TransactionRepository         { return &memTransactionRepo{s} }
func (s *MemoryStore) Admins() AdminRepository                     { return &memAdminRepo{s} }

func nowUTC() *time.Time {
	t := time.Now().UTC()
	return &t
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyParty(p *domain.Party) *domain.Party {
	c := *p
	c.BillingName = copyString(p.BillingName)
	c.Location = copyString(p.Location)
	c.UpdatedAt = copyTime(p.UpdatedAt)
	return &c
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	c.TransactionNote = copyString(t.TransactionNote)
	c.UpdatedAt = copyTime(t.UpdatedAt)
	return &c
}

// ==================== Parties ====================

type memPartyRepo struct{ s *MemoryStore }

func (r *memPartyRepo) nameTaken(name string, exceptID int64) bool {
	for _, p := range r.s.parties {
		if p.ID != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func (r *memPartyRepo) Create(_ context.Context, p *domain.Party) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(p.Name, 0) {
		return fmt.Errorf("party %q: %w", p.Name, xerrors.ErrConflict)
	}
	r.s.nextPartyID++
	p.ID = r.s.nextPartyID
	p.CreatedAt = time.Now().UTC()
	r.s.parties[p.ID] = copyParty(p)
	return nil
}

func (r *memPartyRepo) GetByID(_ context.Context, id int64) (*domain.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.parties[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return copyParty(p), nil
}

func (r *memPartyRepo) List(ctx context.Context) ([]*domain.Party, error) {
	return r.Search(ctx, "")
}

func (r *memPartyRepo) Search(_ context.Context, term string) ([]*domain.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	parties := make([]*domain.Party, 0, len(r.s.parties))
	for _, p := range r.s.parties {
		if term == "" || domain.ContainsFold(p.Name, term) {
			parties = append(parties, copyParty(p))
		}
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].Name < parties[j].Name })
	return parties, nil
}

func (r *memPartyRepo) Update(_ context.Context, p *domain.Party) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.parties[p.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return fmt.Errorf("party %q: %w", p.Name, xerrors.ErrConflict)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = nowUTC()
	r.s.parties[p.ID] = copyParty(p)
	return nil
}

func (r *memPartyRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.parties[id]; !ok {
		return false, nil
	}
	for txID, t := range r.s.transactions {
		if t.PartyID == id {
			delete(r.s.transactions, txID)
		}
	}
	delete(r.s.parties, id)
	return true, nil
}

// ==================== Transaction types ====================

type memTypeRepo struct{ s *MemoryStore }

func (r *memTypeRepo) Create(_ context.Context, t *domain.TransactionType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTypeID++
	t.ID = r.s.nextTypeID
	t.CreatedAt = time.Now().UTC()
	c := *t
	r.s.types[t.ID] = &c
	return nil
}

func (r *memTypeRepo) GetByID(_ context.Context, id int64) (*domain.TransactionType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.types[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *memTypeRepo) List(_ context.Context) ([]*domain.TransactionType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	types := make([]*domain.TransactionType, 0, len(r.s.types))
	for _, t := range r.s.types {
		c := *t
		types = append(types, &c)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Kind != types[j].Kind {
			return types[i].Kind < types[j].Kind
		}
		return types[i].Note < types[j].Note
	})
	return types, nil
}

func (r *memTypeRepo) Update(_ context.Context, t *domain.TransactionType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.types[t.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = nowUTC()
	c := *t
	r.s.types[t.ID] = &c
	return nil
}

func (r *memTypeRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.types[id]; !ok {
		return false, nil
	}
	for txID, t := range r.s.transactions {
		if t.TypeID == id {
			delete(r.s.transactions, txID)
		}
	}
	delete(r.s.types, id)
	return true, nil
}

// ==================== Transactions ====================

type memTransactionRepo struct{ s *MemoryStore }

func (r *memTransactionRepo) maxSerialLocked() (int64, bool) {
	var (
		maxSerial int64
		found     bool
	)
	for _, t := range r.s.transactions {
		if !found || t.SerialNumber > maxSerial {
			maxSerial = t.SerialNumber
			found = true
		}
	}
	return maxSerial, found
}

func (r *memTransactionRepo) NextSerial(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := r.s.lastSerial
	if maxSerial, ok := r.maxSerialLocked(); ok && maxSerial > next {
		next = maxSerial
	}
	next++
	r.s.lastSerial = next
	return next, nil
}

func (r *memTransactionRepo) MaxSerialNumber(_ context.Context) (int64, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	maxSerial, ok := r.maxSerialLocked()
	return maxSerial, ok, nil
}

func (r *memTransactionRepo) checkReferences(t *domain.Transaction) error {
	if _, ok := r.s.parties[t.PartyID]; !ok {
		return fmt.Errorf("party %d: %w", t.PartyID, xerrors.ErrReferenceNotFound)
	}
	if _, ok := r.s.types[t.TypeID]; !ok {
		return fmt.Errorf("transaction type %d: %w", t.TypeID, xerrors.ErrReferenceNotFound)
	}
	return nil
}

func (r *memTransactionRepo) Insert(_ context.Context, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.transactions {
		if existing.SerialNumber == t.SerialNumber {
			return fmt.Errorf("serial %d: %w", t.SerialNumber, xerrors.ErrSerialConflict)
		}
	}
	if err := r.checkReferences(t); err != nil {
		return err
	}

	r.s.nextTxID++
	t.ID = r.s.nextTxID
	t.CreatedAt = time.Now().UTC()
	r.s.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *memTransactionRepo) withRelations(t *domain.Transaction) *domain.TransactionWithRelations {
	out := &domain.TransactionWithRelations{Transaction: *copyTransaction(t)}
	if p, ok := r.s.parties[t.PartyID]; ok {
		out.PartyName = p.Name
	}
	if tt, ok := r.s.types[t.TypeID]; ok {
		out.TypeKind = tt.Kind
		out.TypeNote = tt.Note
	}
	return out
}

func (r *memTransactionRepo) GetByID(_ context.Context, id int64) (*domain.TransactionWithRelations, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return r.withRelations(t), nil
}

func (r *memTransactionRepo) Query(_ context.Context, f domain.TransactionFilter) ([]*domain.TransactionWithRelations, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	txs := make([]*domain.TransactionWithRelations, 0)
	for _, t := range r.s.transactions {
		row := r.withRelations(t)
		if f.Matches(row.PartyName, row.Date) {
			txs = append(txs, row)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].SerialNumber > txs[j].SerialNumber
	})
	return txs, nil
}

func (r *memTransactionRepo) Update(_ context.Context, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[t.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	if err := r.checkReferences(t); err != nil {
		return err
	}
	t.SerialNumber = existing.SerialNumber
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = nowUTC()
	r.s.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *memTransactionRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.transactions[id]; !ok {
		return false, nil
	}
	delete(r.s.transactions, id)
	return true, nil
}

func (r *memTransactionRepo) SumByKind(_ context.Context, f domain.TransactionFilter) (int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var increase, decrease int64
	for _, t := range r.s.transactions {
		party, ok := r.s.parties[t.PartyID]
		if !ok {
			continue
		}
		tt, ok := r.s.types[t.TypeID]
		if !ok || !f.Matches(party.Name, t.Date) {
			continue
		}
		var fits bool
		switch tt.Kind {
		case domain.KindIncrease:
			increase, fits = addAmount(increase, t.Amount)
		case domain.KindDecrease:
			decrease, fits = addAmount(decrease, t.Amount)
		default:
			fits = true
		}
		if !fits {
			return 0, 0, fmt.Errorf("failed to sum transactions: %w", xerrors.ErrAmountOverflow)
		}
	}
	return increase, decrease, nil
}

// addAmount adds two non-negative amounts, reporting false on int64 overflow.
func addAmount(sum, amount int64) (int64, bool) {
	if amount > math.MaxInt64-sum {
		return sum, false
	}
	return sum + amount, true
}

// ==================== Admins ====================

type memAdminRepo struct{ s *MemoryStore }

func (r *memAdminRepo) GetByLoginID(_ context.Context, loginID string) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.LoginID == loginID {
			c := *a
			return &c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *memAdminRepo) GetByID(_ context.Context, id int64) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *memAdminRepo) Create(_ context.Context, a *domain.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.admins {
		if existing.LoginID == a.LoginID {
			return fmt.Errorf("admin %q: %w", a.LoginID, xerrors.ErrConflict)
		}
	}
	r.s.nextAdminID++
	a.ID = r.s.nextAdminID
	c := *a
	r.s.admins[a.ID] = &c
	return nil
}

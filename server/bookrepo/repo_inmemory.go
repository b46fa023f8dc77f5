package bookrepo

import (
	"errors"
	"slices"
	"sort"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu           sync.RWMutex
	accounts     map[int64]*AccountRecord
	numbers      map[string]int64
	transactions []*TransactionRecord
	services     []*ServiceRecord
	lastID       int64
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		accounts: make(map[int64]*AccountRecord),
		numbers:  make(map[string]int64),
	}
}

func (r *InMemoryRepo) AddAccount(a *AccountRecord) error {
	if a == nil || a.AccountNumber == "" {
		return errors.New("account number cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.numbers[a.AccountNumber]; exists {
		return errors.New("account number already exists")
	}
	r.lastID++
	a.ID = r.lastID
	stored := *a
	r.accounts[a.ID] = &stored
	r.numbers[a.AccountNumber] = a.ID
	return nil
}

// Accounts returns matching accounts in creation order.
func (r *InMemoryRepo) Accounts(filter AccountFilter) ([]*AccountRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*AccountRecord, 0)
	for _, a := range r.accounts {
		if filter.Owners != nil && !slices.Contains(filter.Owners, a.OwnerID) {
			continue
		}
		copied := *a
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// AddTransaction records t and moves the account balance to t.BalanceMinor.
func (r *InMemoryRepo) AddTransaction(t *TransactionRecord) error {
	if t == nil {
		return errors.New("transaction cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[t.AccountID]
	if !ok {
		return errors.New("account not found")
	}
	r.lastID++
	t.ID = r.lastID
	t.AccountNumber = account.AccountNumber
	account.BalanceMinor = t.BalanceMinor
	stored := *t
	r.transactions = append(r.transactions, &stored)
	return nil
}

// Transactions returns matching transactions, newest first.
func (r *InMemoryRepo) Transactions(filter TransactionFilter) ([]*TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txns := make([]*TransactionRecord, 0)
	for _, t := range r.transactions {
		if filter.Type != "" && t.TransactionType != filter.Type {
			continue
		}
		if filter.AccountID != 0 && t.AccountID != filter.AccountID {
			continue
		}
		if filter.Owners != nil {
			account := r.accounts[t.AccountID]
			if account == nil || !slices.Contains(filter.Owners, account.OwnerID) {
				continue
			}
		}
		copied := *t
		txns = append(txns, &copied)
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Timestamp.Equal(txns[j].Timestamp) {
			return txns[i].Timestamp.After(txns[j].Timestamp)
		}
		return txns[i].ID > txns[j].ID
	})
	if filter.Limit > 0 && len(txns) > filter.Limit {
		txns = txns[:filter.Limit]
	}
	return txns, nil
}

func (r *InMemoryRepo) AddService(s *ServiceRecord) error {
	if s == nil {
		return errors.New("service request cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	s.ID = r.lastID
	stored := *s
	r.services = append(r.services, &stored)
	return nil
}

// Services returns matching service requests, newest first.
func (r *InMemoryRepo) Services(filter ServiceFilter) ([]*ServiceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]*ServiceRecord, 0)
	for _, s := range r.services {
		if filter.Owners != nil && !slices.Contains(filter.Owners, s.OwnerID) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		copied := *s
		services = append(services, &copied)
	}
	sort.SliceStable(services, func(i, j int) bool {
		if !services[i].CreatedAt.Equal(services[j].CreatedAt) {
			return services[i].CreatedAt.After(services[j].CreatedAt)
		}
		return services[i].ID > services[j].ID
	})
	return services, nil
}

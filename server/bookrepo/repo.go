// Package bookrepo keeps the development ledger's accounts, transactions and
// service requests. Amounts are held in minor units.
package bookrepo

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-bank-session/ledger"
)

type AccountRecord struct {
	ID            int64
	OwnerID       int64
	AccountNumber string
	AccountType   ledger.AccountType
	BalanceMinor  int64
	IsActive      bool
	CreatedAt     time.Time
}

type TransactionRecord struct {
	ID              int64
	AccountID       int64
	AccountNumber   string
	TransactionType ledger.TransactionType
	AmountMinor     int64
	BalanceMinor    int64
	Description     string
	ReferenceID     string
	Timestamp       time.Time
}

type ServiceRecord struct {
	ID          int64
	OwnerID     int64
	ServiceType ledger.ServiceType
	Status      ledger.ServiceStatus
	Remarks     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountFilter matches accounts owned by any of Owners. A nil Owners matches all.
type AccountFilter struct {
	Owners []int64
}

type TransactionFilter struct {
	Owners    []int64
	Type      ledger.TransactionType
	AccountID int64
	Limit     int
}

type ServiceFilter struct {
	Owners []int64
	Status ledger.ServiceStatus
}

type Repo interface {
	AddAccount(a *AccountRecord) error
	Accounts(filter AccountFilter) ([]*AccountRecord, error)
	AddTransaction(t *TransactionRecord) error
	Transactions(filter TransactionFilter) ([]*TransactionRecord, error)
	AddService(s *ServiceRecord) error
	Services(filter ServiceFilter) ([]*ServiceRecord, error)
}

// FormatMinor renders minor units the way the ledger serializes decimals.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func (a *AccountRecord) View() ledger.Account {
	return ledger.Account{
		ID:                 a.ID,
		AccountNumber:      a.AccountNumber,
		AccountType:        a.AccountType,
		AccountTypeDisplay: a.AccountType.Display(),
		Balance:            FormatMinor(a.BalanceMinor),
		IsActive:           a.IsActive,
		CreatedAt:          a.CreatedAt,
	}
}

func (t *TransactionRecord) View() ledger.Transaction {
	return ledger.Transaction{
		ID:              t.ID,
		AccountNumber:   t.AccountNumber,
		TransactionType: t.TransactionType,
		Amount:          FormatMinor(t.AmountMinor),
		BalanceAfter:    FormatMinor(t.BalanceMinor),
		Description:     t.Description,
		ReferenceID:     t.ReferenceID,
		Timestamp:       t.Timestamp,
	}
}

func (s *ServiceRecord) View() ledger.ServiceRequest {
	return ledger.ServiceRequest{
		ID:                 s.ID,
		ServiceType:        s.ServiceType,
		ServiceTypeDisplay: s.ServiceType.Display(),
		Status:             s.Status,
		StatusDisplay:      s.Status.Display(),
		Remarks:            s.Remarks,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

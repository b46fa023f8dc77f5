package ledger

import (
	"time"

	"github.com/jrsteele09/go-bank-session/users"
)

type AccountType string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
	AccountSalary  AccountType = "salary"
)

func (t AccountType) Display() string {
	switch t {
	case AccountSavings:
		return "Savings Account"
	case AccountCurrent:
		return "Current Account"
	case AccountSalary:
		return "Salary Account"
	}
	return string(t)
}

type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type ServiceType string

const (
	ServiceChequeBook       ServiceType = "cheque_book"
	ServiceAddressChange    ServiceType = "address_change"
	ServiceLoanEnquiry      ServiceType = "loan_enquiry"
	ServiceCardBlock        ServiceType = "card_block"
	ServiceFDOpening        ServiceType = "fd_opening"
	ServiceStatementRequest ServiceType = "statement_request"
)

var ServiceTypes = []ServiceType{
	ServiceChequeBook, ServiceAddressChange, ServiceLoanEnquiry,
	ServiceCardBlock, ServiceFDOpening, ServiceStatementRequest,
}

func (t ServiceType) Valid() bool {
	for _, st := range ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}

func (t ServiceType) Display() string {
	switch t {
	case ServiceChequeBook:
		return "New Cheque Book"
	case ServiceAddressChange:
		return "Address Change"
	case ServiceLoanEnquiry:
		return "Loan Enquiry"
	case ServiceCardBlock:
		return "Block Debit Card"
	case ServiceFDOpening:
		return "Fixed Deposit Opening"
	case ServiceStatementRequest:
		return "Physical Statement Request"
	}
	return string(t)
}

type ServiceStatus string

const (
	StatusPending    ServiceStatus = "pending"
	StatusInProgress ServiceStatus = "in_progress"
	StatusCompleted  ServiceStatus = "completed"
	StatusRejected   ServiceStatus = "rejected"
)

func (s ServiceStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

// Amounts are decimal strings as the ledger sends them.

type Account struct {
	ID                 int64       `json:"id"`
	AccountNumber      string      `json:"account_number"`
	AccountType        AccountType `json:"account_type"`
	AccountTypeDisplay string      `json:"account_type_display"`
	Balance            string      `json:"balance"`
	IsActive           bool        `json:"is_active"`
	CreatedAt          time.Time   `json:"created_at"`
}

type Transaction struct {
	ID              int64           `json:"id"`
	AccountNumber   string          `json:"account_number"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          string          `json:"amount"`
	BalanceAfter    string          `json:"balance_after"`
	Description     string          `json:"description"`
	ReferenceID     string          `json:"reference_id"`
	Timestamp       time.Time       `json:"timestamp"`
}

type ServiceRequest struct {
	ID                 int64         `json:"id"`
	ServiceType        ServiceType   `json:"service_type"`
	ServiceTypeDisplay string        `json:"service_type_display"`
	Status             ServiceStatus `json:"status"`
	StatusDisplay      string        `json:"status_display"`
	Remarks            string        `json:"remarks"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewUser is the create payload for managers and customers. The ledger
// forces the role from the endpoint, so Role is informational.
type NewUser struct {
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Password  string     `json:"password,omitempty"`
	Role      users.Role `json:"role,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
}

type NewServiceRequest struct {
	ServiceType ServiceType `json:"service_type"`
	Remarks     string      `json:"remarks,omitempty"`
}

type Movement struct {
	AccountID   int64  `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type MovementResult struct {
	Detail      string      `json:"detail"`
	Transaction Transaction `json:"transaction"`
	NewBalance  string      `json:"new_balance"`
}

type TransactionFilter struct {
	Type    TransactionType
	Account int64
}

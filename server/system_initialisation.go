package server

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/ledger"
	"github.com/jrsteele09/go-bank-session/server/bookrepo"
	"github.com/jrsteele09/go-bank-session/users"
)

const (
	DefaultSuperAdminUsername = "admin"
	DefaultSuperAdminPassword = "admin123"
	SeedRMPassword            = "rm123"
	SeedCustomerPassword      = "cust123"

	seedRandomSeed = 2025
)

type seedUser struct {
	username, firstName, lastName, email, phone, address string
	rm                                                   int // index into the seeded RMs
}

var seedRMs = []seedUser{
	{username: "rm_priya", firstName: "Priya", lastName: "Sharma", email: "priya@subbubank.com", phone: "9876543210"},
	{username: "rm_kiran", firstName: "Kiran", lastName: "Reddy", email: "kiran@subbubank.com", phone: "9876543211"},
}

var seedCustomers = []seedUser{
	{username: "cust_ravi", firstName: "Ravi", lastName: "Kumar", email: "ravi@email.com", phone: "9001234567", address: "12, MG Road, Bangalore", rm: 0},
	{username: "cust_anita", firstName: "Anita", lastName: "Desai", email: "anita@email.com", phone: "9001234568", address: "45, Jubilee Hills, Hyderabad", rm: 0},
	{username: "cust_arjun", firstName: "Arjun", lastName: "Nair", email: "arjun@email.com", phone: "9001234569", address: "78, Anna Nagar, Chennai", rm: 0},
	{username: "cust_meera", firstName: "Meera", lastName: "Patel", email: "meera@email.com", phone: "9001234570", address: "23, SG Highway, Ahmedabad", rm: 1},
	{username: "cust_rahul", firstName: "Rahul", lastName: "Verma", email: "rahul@email.com", phone: "9001234571", address: "56, Connaught Place, Delhi", rm: 1},
}

var (
	seedAccountTypes = []ledger.AccountType{ledger.AccountSavings, ledger.AccountCurrent, ledger.AccountSalary}
	seedBalances     = []int64{25000, 150000, 48000, 320000, 12000}

	seedCreditDescriptions = []string{
		"Salary Credit", "NEFT from John", "UPI Credit", "Cash Deposit",
		"Interest Credit", "Refund - Amazon", "Transfer from FD",
		"Cashback Reward", "Dividend Credit",
	}
	seedDebitDescriptions = []string{
		"ATM Withdrawal", "Online Purchase - Flipkart", "Electricity Bill",
		"Mobile Recharge", "UPI to Swiggy", "EMI Payment", "Insurance Premium",
		"Grocery - BigBasket", "Petrol Pump", "Netflix Subscription",
	}
	seedStatuses = []ledger.ServiceStatus{ledger.StatusPending, ledger.StatusInProgress, ledger.StatusCompleted, ledger.StatusRejected}
)

// InitialiseSystem seeds the demo bank: a super admin, two relationship
// managers, five customers with accounts, transactions and service requests.
// It does nothing when the super admin already exists.
func (s *Server) InitialiseSystem() error {
	if _, err := s.repos.Users.GetByUsername(DefaultSuperAdminUsername); err == nil {
		s.logger.Info().Msg("⏩ Seed data already present")
		return nil
	} else if !errors.Is(err, errors.ErrUserNotFound) {
		return fmt.Errorf("[Server InitialiseSystem] failed to look up super admin: %w", err)
	}

	rng := rand.New(rand.NewPCG(seedRandomSeed, seedRandomSeed))
	joined := NowTimeFunc().Add(-time.Duration(len(seedRMs)+len(seedCustomers)+1) * time.Minute)
	nextJoined := func() time.Time {
		joined = joined.Add(time.Minute)
		return joined
	}

	admin, err := s.seedUser(seedUser{username: DefaultSuperAdminUsername, firstName: "Subbu", lastName: "Admin", email: "admin@subbubank.com"},
		users.RoleSuperAdmin, DefaultSuperAdminPassword, nil, nextJoined())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to create super admin: %w", err)
	}

	rms := make([]*users.User, 0, len(seedRMs))
	for _, su := range seedRMs {
		rm, err := s.seedUser(su, users.RoleRM, SeedRMPassword, &admin.ID, nextJoined())
		if err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to create RM %s: %w", su.username, err)
		}
		rms = append(rms, rm)
	}

	txnCount, svcCount := 0, 0
	for i, su := range seedCustomers {
		cust, err := s.seedUser(su, users.RoleCustomer, SeedCustomerPassword, &rms[su.rm].ID, nextJoined())
		if err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to create customer %s: %w", su.username, err)
		}

		accounts := []*bookrepo.AccountRecord{{
			OwnerID:       cust.ID,
			AccountNumber: fmt.Sprintf("SB20250%05d", i+1),
			AccountType:   seedAccountTypes[i%len(seedAccountTypes)],
			BalanceMinor:  seedBalances[i] * 100,
		}}
		if i < 2 {
			accounts = append(accounts, &bookrepo.AccountRecord{
				OwnerID:       cust.ID,
				AccountNumber: fmt.Sprintf("SB20250%05d", i+10),
				AccountType:   ledger.AccountCurrent,
				BalanceMinor:  rng.Int64N(45001)*100 + 500000,
			})
		}
		for _, acc := range accounts {
			acc.IsActive = true
			acc.CreatedAt = cust.DateJoined
			if err := s.repos.Book.AddAccount(acc); err != nil {
				return fmt.Errorf("[Server InitialiseSystem] failed to open account %s: %w", acc.AccountNumber, err)
			}
			n, err := s.seedTransactions(rng, acc)
			if err != nil {
				return err
			}
			txnCount += n
		}

		if i < 3 {
			n, err := s.seedServices(rng, cust.ID)
			if err != nil {
				return err
			}
			svcCount += n
		}
	}

	s.logger.Info().Msg("📋 Seeded development ledger:")
	s.logger.Info().Msgf("   Users:        %d", 1+len(seedRMs)+len(seedCustomers))
	s.logger.Info().Msgf("   Transactions: %d", txnCount)
	s.logger.Info().Msgf("   Services:     %d", svcCount)
	s.logger.Info().Msg("👤 Login credentials:")
	s.logger.Info().Msgf("   Super Admin  → %s / %s", DefaultSuperAdminUsername, DefaultSuperAdminPassword)
	for _, su := range seedRMs {
		s.logger.Info().Msgf("   RM           → %s / %s", su.username, SeedRMPassword)
	}
	for _, su := range seedCustomers {
		s.logger.Info().Msgf("   Customer     → %s / %s", su.username, SeedCustomerPassword)
	}
	return nil
}

func (s *Server) seedUser(su seedUser, role users.Role, password string, createdBy *int64, joined time.Time) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		Principal: users.Principal{
			Username:   su.username,
			Email:      su.email,
			FirstName:  su.firstName,
			LastName:   su.lastName,
			Role:       role,
			Phone:      su.phone,
			Address:    su.address,
			IsActive:   true,
			DateJoined: joined,
			CreatedBy:  createdBy,
		},
		PasswordHash: hash,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Server) seedTransactions(rng *rand.Rand, acc *bookrepo.AccountRecord) (int, error) {
	balance := acc.BalanceMinor
	now := NowTimeFunc()
	count := 0
	for range 8 + rng.IntN(8) {
		amount := (200 + rng.Int64N(14801)) * 100
		txn := &bookrepo.TransactionRecord{
			AccountID:   acc.ID,
			AmountMinor: amount,
			ReferenceID: newReferenceID(),
			Timestamp:   now.Add(-time.Duration(rng.IntN(91)) * 24 * time.Hour),
		}
		if rng.IntN(2) == 0 {
			balance += amount
			txn.TransactionType = ledger.Credit
			txn.Description = seedCreditDescriptions[rng.IntN(len(seedCreditDescriptions))]
		} else {
			if balance < amount {
				continue
			}
			balance -= amount
			txn.TransactionType = ledger.Debit
			txn.Description = seedDebitDescriptions[rng.IntN(len(seedDebitDescriptions))]
		}
		txn.BalanceMinor = balance
		if err := s.repos.Book.AddTransaction(txn); err != nil {
			return count, fmt.Errorf("[Server InitialiseSystem] failed to record transaction: %w", err)
		}
		count++
	}
	return count, nil
}

func (s *Server) seedServices(rng *rand.Rand, ownerID int64) (int, error) {
	n := 1 + rng.IntN(3)
	for range n {
		created := NowTimeFunc().Add(-time.Duration(rng.IntN(30*24)) * time.Hour)
		if err := s.repos.Book.AddService(&bookrepo.ServiceRecord{
			OwnerID:     ownerID,
			ServiceType: ledger.ServiceTypes[rng.IntN(len(ledger.ServiceTypes))],
			Status:      seedStatuses[rng.IntN(len(seedStatuses))],
			Remarks:     "Auto-generated dummy request",
			CreatedAt:   created,
			UpdatedAt:   created,
		}); err != nil {
			return 0, fmt.Errorf("[Server InitialiseSystem] failed to record service request: %w", err)
		}
	}
	return n, nil
}

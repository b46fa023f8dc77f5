package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-bank-session/ledger"
	"github.com/jrsteele09/go-bank-session/server/bookrepo"
	"github.com/jrsteele09/go-bank-session/users"
)

const recentTransactionsLimit = 5

func (s *Server) DashboardStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		var (
			stats any
			err   error
		)
		switch user.Role {
		case users.RoleSuperAdmin:
			stats, err = s.adminStats()
		case users.RoleRM:
			stats, err = s.rmStats(user.ID)
		case users.RoleCustomer:
			stats, err = s.customerStats(user.ID)
		default:
			writeDetail(w, http.StatusBadRequest, "Unknown role")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to compute dashboard stats")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) AccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())
		s.writeAccounts(w, []int64{user.ID})
	}
}

// TransactionsHandler lists the caller's transactions, filtered by the
// optional type (credit or debit) and account id query parameters.
func (s *Server) TransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		filter := bookrepo.TransactionFilter{Owners: []int64{user.ID}}
		switch txnType := ledger.TransactionType(r.URL.Query().Get("type")); txnType {
		case ledger.Credit, ledger.Debit:
			filter.Type = txnType
		}
		if account := r.URL.Query().Get("account"); account != "" {
			id, err := strconv.ParseInt(account, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, fieldErrors{"account": {"A valid integer is required."}})
				return
			}
			filter.AccountID = id
		}

		txns, err := s.repos.Book.Transactions(filter)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		writeJSON(w, http.StatusOK, transactionViews(txns))
	}
}

func (s *Server) ServicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())
		services, err := s.repos.Book.Services(bookrepo.ServiceFilter{Owners: []int64{user.ID}})
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		views := make([]ledger.ServiceRequest, 0, len(services))
		for _, svc := range services {
			views = append(views, svc.View())
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func (s *Server) CreateServiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		var req ledger.NewServiceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		fe := fieldErrors{}
		fe.required("service_type", string(req.ServiceType))
		if req.ServiceType != "" && !req.ServiceType.Valid() {
			fe.add("service_type", fmt.Sprintf("%q is not a valid choice.", req.ServiceType))
		}
		if fe.write(w) {
			return
		}

		now := NowTimeFunc()
		svc := &bookrepo.ServiceRecord{
			OwnerID:     user.ID,
			ServiceType: req.ServiceType,
			Status:      ledger.StatusPending,
			Remarks:     req.Remarks,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repos.Book.AddService(svc); err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		writeJSON(w, http.StatusCreated, svc.View())
	}
}

// MovementHandler answers deposit and withdraw. Posting is not modelled here.
func (s *Server) MovementHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotImplemented, fmt.Sprintf("The development ledger does not post %s requests.", kind))
	}
}

func (s *Server) writeAccounts(w http.ResponseWriter, owners []int64) {
	accounts, err := s.repos.Book.Accounts(bookrepo.AccountFilter{Owners: owners})
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	views := make([]ledger.Account, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) adminStats() (*ledger.AdminStats, error) {
	rms, err := s.repos.Users.List(users.ListFilter{Role: users.RoleRM})
	if err != nil {
		return nil, err
	}
	customers, err := s.repos.Users.List(users.ListFilter{Role: users.RoleCustomer})
	if err != nil {
		return nil, err
	}
	accounts, err := s.repos.Book.Accounts(bookrepo.AccountFilter{})
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Book.Services(bookrepo.ServiceFilter{Status: ledger.StatusPending})
	if err != nil {
		return nil, err
	}
	return &ledger.AdminStats{
		TotalRMs:        len(rms),
		TotalCustomers:  len(customers),
		TotalAccounts:   len(accounts),
		TotalBalance:    bookrepo.FormatMinor(sumBalances(accounts)),
		PendingServices: len(pending),
	}, nil
}

func (s *Server) rmStats(rmID int64) (*ledger.RMStats, error) {
	customers, err := s.repos.Users.List(users.ListFilter{Role: users.RoleCustomer, CreatedBy: &rmID})
	if err != nil {
		return nil, err
	}
	owners := make([]int64, 0, len(customers))
	for _, c := range customers {
		owners = append(owners, c.ID)
	}
	accounts, err := s.repos.Book.Accounts(bookrepo.AccountFilter{Owners: owners})
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Book.Services(bookrepo.ServiceFilter{Owners: owners, Status: ledger.StatusPending})
	if err != nil {
		return nil, err
	}
	return &ledger.RMStats{
		TotalCustomers:  len(customers),
		TotalAccounts:   len(accounts),
		TotalBalance:    bookrepo.FormatMinor(sumBalances(accounts)),
		PendingServices: len(pending),
	}, nil
}

func (s *Server) customerStats(customerID int64) (*ledger.CustomerStats, error) {
	owners := []int64{customerID}
	accounts, err := s.repos.Book.Accounts(bookrepo.AccountFilter{Owners: owners})
	if err != nil {
		return nil, err
	}
	recent, err := s.repos.Book.Transactions(bookrepo.TransactionFilter{Owners: owners, Limit: recentTransactionsLimit})
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Book.Services(bookrepo.ServiceFilter{Owners: owners, Status: ledger.StatusPending})
	if err != nil {
		return nil, err
	}
	return &ledger.CustomerStats{
		TotalAccounts:      len(accounts),
		TotalBalance:       bookrepo.FormatMinor(sumBalances(accounts)),
		RecentTransactions: transactionViews(recent),
		PendingServices:    len(pending),
	}, nil
}

func sumBalances(accounts []*bookrepo.AccountRecord) int64 {
	var total int64
	for _, a := range accounts {
		total += a.BalanceMinor
	}
	return total
}

func transactionViews(txns []*bookrepo.TransactionRecord) []ledger.Transaction {
	views := make([]ledger.Transaction, 0, len(txns))
	for _, t := range txns {
		views = append(views, t.View())
	}
	return views
}

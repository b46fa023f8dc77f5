package ledger

import (
	"encoding/json"

	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/users"
)

type AdminStats struct {
	TotalRMs        int    `json:"total_rms"`
	TotalCustomers  int    `json:"total_customers"`
	TotalAccounts   int    `json:"total_accounts"`
	TotalBalance    string `json:"total_balance"`
	PendingServices int    `json:"pending_services"`
}

type RMStats struct {
	TotalCustomers  int    `json:"total_customers"`
	TotalAccounts   int    `json:"total_accounts"`
	TotalBalance    string `json:"total_balance"`
	PendingServices int    `json:"pending_services"`
}

type CustomerStats struct {
	TotalAccounts      int           `json:"total_accounts"`
	TotalBalance       string        `json:"total_balance"`
	RecentTransactions []Transaction `json:"recent_transactions"`
	PendingServices    int           `json:"pending_services"`
}

// DashboardStats holds exactly one variant, chosen by Role.
type DashboardStats struct {
	Role     users.Role
	Admin    *AdminStats
	RM       *RMStats
	Customer *CustomerStats
}

func decodeDashboardStats(role users.Role, body []byte) (*DashboardStats, error) {
	stats := &DashboardStats{Role: role}
	var target any
	switch role {
	case users.RoleSuperAdmin:
		stats.Admin = &AdminStats{}
		target = stats.Admin
	case users.RoleRM:
		stats.RM = &RMStats{}
		target = stats.RM
	case users.RoleCustomer:
		stats.Customer = &CustomerStats{}
		target = stats.Customer
	default:
		return nil, errors.Wrapf(errors.ErrUnsupported, "dashboard for role %q", role)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "decode dashboard stats: %v", err)
	}
	return stats, nil
}

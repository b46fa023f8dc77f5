package cmd

import (
	"strconv"

	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const recentTimeFormat = "02 Jan 2006 15:04"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the landing summary for the signed-in role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		principal, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		board := access.DashboardFor(principal.Role)
		pterm.DefaultSection.Printf("Welcome back, %s\n", principal.DisplayName())
		pterm.Info.Println(board.Subtitle)

		if board.Variant == access.DashboardNone {
			return nil
		}
		lc, err := clientProvider.Ledger()
		if err != nil {
			return err
		}
		stats, err := lc.DashboardStats(cmd.Context(), principal.Role)
		if err != nil {
			return err
		}
		if err := renderStats(stats); err != nil {
			return err
		}

		if len(board.QuickActions) > 0 {
			pterm.DefaultSection.Println("Quick actions")
			return renderNavItems(board.QuickActions)
		}
		return nil
	},
}

func renderStats(stats *ledger.DashboardStats) error {
	data := pterm.TableData{{"METRIC", "VALUE"}}
	switch {
	case stats.Admin != nil:
		s := stats.Admin
		data = append(data,
			[]string{"Relationship Managers", strconv.Itoa(s.TotalRMs)},
			[]string{"Total Customers", strconv.Itoa(s.TotalCustomers)},
			[]string{"Total Accounts", strconv.Itoa(s.TotalAccounts)},
			[]string{"Total Balance", s.TotalBalance},
			[]string{"Pending Services", strconv.Itoa(s.PendingServices)},
		)
	case stats.RM != nil:
		s := stats.RM
		data = append(data,
			[]string{"My Customers", strconv.Itoa(s.TotalCustomers)},
			[]string{"Total Accounts", strconv.Itoa(s.TotalAccounts)},
			[]string{"Total Balance", s.TotalBalance},
			[]string{"Pending Services", strconv.Itoa(s.PendingServices)},
		)
	case stats.Customer != nil:
		s := stats.Customer
		data = append(data,
			[]string{"My Accounts", strconv.Itoa(s.TotalAccounts)},
			[]string{"Total Balance", s.TotalBalance},
			[]string{"Pending Services", strconv.Itoa(s.PendingServices)},
		)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	if stats.Customer == nil || len(stats.Customer.RecentTransactions) == 0 {
		return nil
	}
	pterm.DefaultSection.Println("Recent transactions")
	recent := pterm.TableData{{"DATE", "ACCOUNT", "TYPE", "AMOUNT", "DESCRIPTION"}}
	for _, txn := range stats.Customer.RecentTransactions {
		recent = append(recent, []string{
			txn.Timestamp.Format(recentTimeFormat),
			txn.AccountNumber,
			string(txn.TransactionType),
			txn.Amount,
			txn.Description,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(recent).Render()
}

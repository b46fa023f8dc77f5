package server

// Route path constants
// All API routes are defined here to ensure consistency and prevent typos
const (
	RouteAPIPrefix = "/api"

	// Token contract
	RouteToken        = "/api/token/"
	RouteTokenRefresh = "/api/token/refresh/"

	// Identity and summary, any role
	RouteMe             = "/api/me/"
	RouteDashboardStats = "/api/dashboard-stats/"

	// Super admin
	RouteManagers     = "/api/managers/"
	RouteAllCustomers = "/api/all-customers/"

	// Relationship manager
	RouteCustomers        = "/api/customers/"
	RouteCustomerAccounts = "/api/customers/{customerID}/accounts/"

	// Customer
	RouteAccounts     = "/api/accounts/"
	RouteTransactions = "/api/transactions/"
	RouteServices     = "/api/services/"
	RouteDeposit      = "/api/deposit/"
	RouteWithdraw     = "/api/withdraw/"
)

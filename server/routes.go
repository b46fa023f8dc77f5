package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-bank-session/users"
)

func (s *Server) initRoutes() {
	s.router.Use(s.StdMiddleware()...)
	s.router.NotFound(s.NotFoundHandler())
	s.router.MethodNotAllowed(s.MethodNotAllowedHandler())

	// Token contract, no bearer credential
	s.RegisterRouteFunc("POST "+RouteToken, s.TokenHandler())
	s.RegisterRouteFunc("POST "+RouteTokenRefresh, s.TokenRefreshHandler())

	// Any authenticated role
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("GET "+RouteDashboardStats, ChainMiddleware(s.DashboardStatsHandler(), s.RequireAuth()))

	// Super admin
	s.RegisterRouteHandler("GET "+RouteManagers, ChainMiddleware(s.ListUsersHandler(users.RoleRM, false), s.RequireRole(users.RoleSuperAdmin)...))
	s.RegisterRouteHandler("POST "+RouteManagers, ChainMiddleware(s.CreateUserHandler(users.RoleRM), s.RequireRole(users.RoleSuperAdmin)...))
	s.RegisterRouteHandler("GET "+RouteAllCustomers, ChainMiddleware(s.ListUsersHandler(users.RoleCustomer, false), s.RequireRole(users.RoleSuperAdmin)...))

	// Relationship manager
	s.RegisterRouteHandler("GET "+RouteCustomers, ChainMiddleware(s.ListUsersHandler(users.RoleCustomer, true), s.RequireRole(users.RoleRM)...))
	s.RegisterRouteHandler("POST "+RouteCustomers, ChainMiddleware(s.CreateUserHandler(users.RoleCustomer), s.RequireRole(users.RoleRM)...))
	s.RegisterRouteHandler("GET "+RouteCustomerAccounts, ChainMiddleware(s.CustomerAccountsHandler(), s.RequireRole(users.RoleRM)...))

	// Customer
	s.RegisterRouteHandler("GET "+RouteAccounts, ChainMiddleware(s.AccountsHandler(), s.RequireRole(users.RoleCustomer)...))
	s.RegisterRouteHandler("GET "+RouteTransactions, ChainMiddleware(s.TransactionsHandler(), s.RequireRole(users.RoleCustomer)...))
	s.RegisterRouteHandler("GET "+RouteServices, ChainMiddleware(s.ServicesHandler(), s.RequireRole(users.RoleCustomer)...))
	s.RegisterRouteHandler("POST "+RouteServices, ChainMiddleware(s.CreateServiceHandler(), s.RequireRole(users.RoleCustomer)...))
	s.RegisterRouteHandler("POST "+RouteDeposit, ChainMiddleware(s.MovementHandler("deposit"), s.RequireRole(users.RoleCustomer)...))
	s.RegisterRouteHandler("POST "+RouteWithdraw, ChainMiddleware(s.MovementHandler("withdraw"), s.RequireRole(users.RoleCustomer)...))
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	}
}

func (s *Server) MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
	}
}

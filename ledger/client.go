// Package ledger is a typed client for the bank back-office resources. Every
// call goes through the gateway, so credentials and renewal are handled there.
package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/users"
)

const (
	DashboardStatsPath = "/dashboard-stats/"
	ManagersPath       = "/managers/"
	CustomersPath      = "/customers/"
	AllCustomersPath   = "/all-customers/"
	AccountsPath       = "/accounts/"
	TransactionsPath   = "/transactions/"
	ServicesPath       = "/services/"
	DepositPath        = "/deposit/"
	WithdrawPath       = "/withdraw/"
)

func CustomerAccountsPath(customerID int64) string {
	return fmt.Sprintf("/customers/%d/accounts/", customerID)
}

type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

func (c *Client) Profile(ctx context.Context) (*users.Principal, error) {
	return call[*users.Principal](ctx, c.gw, http.MethodGet, gateway.MePath, nil, nil)
}

// DashboardStats fetches the summary and decodes it as the variant for role.
func (c *Client) DashboardStats(ctx context.Context, role users.Role) (*DashboardStats, error) {
	body, err := c.gw.Get(ctx, DashboardStatsPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeDashboardStats(role, body)
}

func (c *Client) Managers(ctx context.Context) ([]users.Principal, error) {
	return call[[]users.Principal](ctx, c.gw, http.MethodGet, ManagersPath, nil, nil)
}

func (c *Client) CreateManager(ctx context.Context, u NewUser) (*users.Principal, error) {
	u.Role = users.RoleRM
	return call[*users.Principal](ctx, c.gw, http.MethodPost, ManagersPath, nil, u)
}

func (c *Client) Customers(ctx context.Context) ([]users.Principal, error) {
	return call[[]users.Principal](ctx, c.gw, http.MethodGet, CustomersPath, nil, nil)
}

func (c *Client) CreateCustomer(ctx context.Context, u NewUser) (*users.Principal, error) {
	u.Role = users.RoleCustomer
	return call[*users.Principal](ctx, c.gw, http.MethodPost, CustomersPath, nil, u)
}

func (c *Client) AllCustomers(ctx context.Context) ([]users.Principal, error) {
	return call[[]users.Principal](ctx, c.gw, http.MethodGet, AllCustomersPath, nil, nil)
}

func (c *Client) CustomerAccounts(ctx context.Context, customerID int64) ([]Account, error) {
	return call[[]Account](ctx, c.gw, http.MethodGet, CustomerAccountsPath(customerID), nil, nil)
}

func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	return call[[]Account](ctx, c.gw, http.MethodGet, AccountsPath, nil, nil)
}

func (c *Client) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", string(filter.Type))
	}
	if filter.Account != 0 {
		query.Set("account", strconv.FormatInt(filter.Account, 10))
	}
	return call[[]Transaction](ctx, c.gw, http.MethodGet, TransactionsPath, query, nil)
}

func (c *Client) Services(ctx context.Context) ([]ServiceRequest, error) {
	return call[[]ServiceRequest](ctx, c.gw, http.MethodGet, ServicesPath, nil, nil)
}

func (c *Client) CreateService(ctx context.Context, req NewServiceRequest) (*ServiceRequest, error) {
	return call[*ServiceRequest](ctx, c.gw, http.MethodPost, ServicesPath, nil, req)
}

func (c *Client) Deposit(ctx context.Context, m Movement) (*MovementResult, error) {
	return call[*MovementResult](ctx, c.gw, http.MethodPost, DepositPath, nil, m)
}

func (c *Client) Withdraw(ctx context.Context, m Movement) (*MovementResult, error) {
	return call[*MovementResult](ctx, c.gw, http.MethodPost, WithdrawPath, nil, m)
}

func call[T any](ctx context.Context, gw *gateway.Client, method, path string, query url.Values, body any) (T, error) {
	return gateway.Call[T](ctx, gw, gateway.Request{Method: method, Path: path, Query: query, Body: body})
}

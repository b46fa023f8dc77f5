// Package access decides which views a session may open and which menu it sees.
//
// The role check here keeps users from wandering into views they cannot use.
// It is not a security boundary: the ledger authorizes every request itself.
package access

import (
	"slices"
	"sort"

	"github.com/jrsteele09/go-bank-session/users"
)

const (
	// EntryPoint is the unauthenticated login view.
	EntryPoint = "/"
	// Landing is the default view for an authenticated session.
	Landing = "/dashboard"
)

// NavItem is one entry of a role's navigation menu.
type NavItem struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// commonViews are open to every authenticated session, whatever its role.
var commonViews = []NavItem{
	{Icon: "📊", Label: "Dashboard", Path: Landing},
}

// capabilities is the role to view table. It drives both the gate and the
// menus; slice order is menu order.
var capabilities = map[users.Role][]NavItem{
	users.RoleSuperAdmin: {
		{Icon: "👔", Label: "Manage RMs", Path: "/manage-users"},
		{Icon: "👥", Label: "All Customers", Path: "/all-customers"},
	},
	users.RoleRM: {
		{Icon: "👤", Label: "My Customers", Path: "/manage-users"},
	},
	users.RoleCustomer: {
		{Icon: "🏦", Label: "My Accounts", Path: "/accounts"},
		{Icon: "💸", Label: "Transact", Path: "/transactions"},
		{Icon: "📜", Label: "Statements", Path: "/statements"},
		{Icon: "🛎️", Label: "Services", Path: "/services"},
	},
}

// NavigationFor returns the ordered menu for role. Unknown roles get the
// common menu only.
func NavigationFor(role users.Role) []NavItem {
	items := slices.Clone(commonViews)
	return append(items, capabilities[role]...)
}

// Route is a protected view and the roles that may open it. A nil Roles
// slice means any authenticated session.
type Route struct {
	Path  string
	Roles []users.Role
}

// Routes lists every protected view, derived from the capability table.
func Routes() []Route {
	byPath := make(map[string][]users.Role)
	for _, item := range commonViews {
		byPath[item.Path] = nil
	}
	for _, role := range users.Roles {
		for _, item := range capabilities[role] {
			if isCommon(item.Path) {
				continue
			}
			byPath[item.Path] = append(byPath[item.Path], role)
		}
	}

	routes := make([]Route, 0, len(byPath))
	for path, roles := range byPath {
		routes = append(routes, Route{Path: path, Roles: roles})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// IsProtected reports whether path is a known view that requires a session.
func IsProtected(path string) bool {
	if isCommon(path) {
		return true
	}
	for _, items := range capabilities {
		for _, item := range items {
			if item.Path == path {
				return true
			}
		}
	}
	return false
}

func isCommon(path string) bool {
	for _, item := range commonViews {
		if item.Path == path {
			return true
		}
	}
	return false
}

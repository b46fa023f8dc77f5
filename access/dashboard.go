package access

import "github.com/jrsteele09/go-bank-session/users"

// DashboardVariant selects which summary the landing view shows.
type DashboardVariant string

const (
	DashboardNone     DashboardVariant = ""
	DashboardAdmin    DashboardVariant = "admin"
	DashboardRM       DashboardVariant = "rm"
	DashboardCustomer DashboardVariant = "customer"
)

// Dashboard describes the landing view for a role.
type Dashboard struct {
	Variant      DashboardVariant
	Subtitle     string
	QuickActions []NavItem
}

func DashboardFor(role users.Role) Dashboard {
	switch role {
	case users.RoleSuperAdmin:
		return Dashboard{
			Variant:  DashboardAdmin,
			Subtitle: "Here's your system overview",
			QuickActions: []NavItem{
				{Icon: "➕", Label: "Add Relationship Manager", Path: "/manage-users"},
				{Icon: "👥", Label: "View All Customers", Path: "/all-customers"},
			},
		}
	case users.RoleRM:
		return Dashboard{
			Variant:  DashboardRM,
			Subtitle: "Here's your customer portfolio overview",
			QuickActions: []NavItem{
				{Icon: "➕", Label: "Add New Customer", Path: "/manage-users"},
			},
		}
	case users.RoleCustomer:
		return Dashboard{
			Variant:      DashboardCustomer,
			Subtitle:     "Welcome to your banking dashboard",
			QuickActions: []NavItem{{Icon: "📜", Label: "View All", Path: "/statements"}},
		}
	}
	return Dashboard{Variant: DashboardNone, Subtitle: "Welcome to your banking dashboard"}
}

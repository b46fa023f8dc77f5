package cmd

import (
	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var navCmd = &cobra.Command{
	Use:   "nav [role]",
	Short: "Show the navigation menu for the signed-in role, or for the given role",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var role users.Role
		if len(args) == 1 {
			role = users.Role(args[0])
		} else {
			principal, err := signedIn(cmd.Context())
			if err != nil {
				return err
			}
			role = principal.Role
		}

		pterm.DefaultSection.Printf("Menu for %s\n", role.Display())
		return renderNavItems(access.NavigationFor(role))
	},
}

func renderNavItems(items []access.NavItem) error {
	data := pterm.TableData{{"", "VIEW", "PATH"}}
	for _, item := range items {
		data = append(data, []string{item.Icon, item.Label, item.Path})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

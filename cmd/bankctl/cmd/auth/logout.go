package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Long: `Clears the stored credentials and profile. The ledger is not contacted, so
an already issued refresh credential stays valid until it expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := provider()
		if err != nil {
			return err
		}
		svc, err := p.Auth()
		if err != nil {
			return err
		}
		if err := svc.Logout(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Signed out")
		return nil
	},
}

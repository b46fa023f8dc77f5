package auth

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-bank-session/token/jwt"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := provider()
		if err != nil {
			return err
		}
		store, err := p.Store()
		if err != nil {
			return err
		}
		creds := store.GetCredentials()
		if !creds.HasAccess() {
			return fmt.Errorf("not logged in")
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("Ledger: %s\n", p.BaseURL())
		if claims, err := jwt.Inspect(creds.Access); err == nil && !claims.ExpiresAt.IsZero() {
			state := "valid"
			if claims.Expired() {
				state = "expired, renewed on the next call"
			}
			pterm.Info.Printf("Access credential expires at: %s (%s)\n", claims.ExpiresAt.Format(time.RFC1123), state)
		} else {
			pterm.Info.Println("Access credential: present")
		}
		if creds.HasRefresh() {
			pterm.Info.Println("Refresh credential: present")
		} else {
			pterm.Warning.Println("Refresh credential: missing, the session ends when the access credential expires")
		}

		principal := store.GetPrincipal()
		if principal == nil {
			pterm.Warning.Println("No profile cached (it is fetched on the next command)")
			return nil
		}
		pterm.DefaultSection.Println("Signed in user")
		pterm.Info.Printf("Name: %s (%s)\n", principal.DisplayName(), principal.Initials())
		pterm.Info.Printf("Username: %s\n", principal.Username)
		pterm.Info.Printf("Role: %s\n", principal.Role.Display())
		return nil
	},
}

package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "BANK_PASSWORD"

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the ledger",
	Long: `Exchanges a username and password for a credential pair and caches the
signed-in user's profile in the session store.

The password is read from --password, then from BANK_PASSWORD, and finally
from a masked prompt unless --non-interactive is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := provider()
		if err != nil {
			return err
		}

		if strings.TrimSpace(username) == "" {
			if NonInteractive {
				return fmt.Errorf("--username is required in non-interactive mode")
			}
			username, err = pterm.DefaultInteractiveTextInput.Show("Username")
			if err != nil {
				return fmt.Errorf("failed to read username: %w", err)
			}
		}
		if password == "" {
			password = os.Getenv(passwordEnvVar)
		}
		if password == "" {
			if NonInteractive {
				return fmt.Errorf("--password or %s is required in non-interactive mode", passwordEnvVar)
			}
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		svc, err := p.Auth()
		if err != nil {
			return err
		}
		principal, err := svc.Login(cmd.Context(), username, password)
		if err != nil {
			store, storeErr := p.Store()
			if storeErr == nil && store.IsAuthenticated() {
				pterm.Warning.Println("Signed in, but your profile could not be loaded. It will be fetched on the next command.")
			}
			return err
		}

		pterm.Success.Printf("Signed in as %s (%s)\n", principal.DisplayName(), principal.Role.Display())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Ledger username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Ledger password (prefer the prompt or "+passwordEnvVar+")")
}

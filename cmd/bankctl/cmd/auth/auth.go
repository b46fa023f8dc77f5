package auth

import (
	"fmt"

	"github.com/jrsteele09/go-bank-session/cmd/bankctl/internal/client"
	"github.com/spf13/cobra"
)

var (
	// NonInteractive disables prompts, set by the root command
	NonInteractive bool

	clientProvider *client.Provider
)

// AuthCmd is the parent command for session operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the ledger session",
	Long:  `Commands for signing in to the ledger, signing out and inspecting the stored session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(exportCmd)
}

// SetNonInteractive sets the non-interactive mode for all auth commands
func SetNonInteractive(value bool) {
	NonInteractive = value
}

// SetClientProvider injects the shared client provider.
func SetClientProvider(provider *client.Provider) {
	clientProvider = provider
}

func provider() (*client.Provider, error) {
	if clientProvider == nil {
		return nil, fmt.Errorf("client provider not configured")
	}
	return clientProvider, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jrsteele09/go-bank-session/auth"
	authcmd "github.com/jrsteele09/go-bank-session/cmd/bankctl/cmd/auth"
	"github.com/jrsteele09/go-bank-session/cmd/bankctl/internal/client"
	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/internal/logging"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	serverURL      string
	nonInteractive bool

	clientProvider *client.Provider
)

var rootCmd = &cobra.Command{
	Use:   "bankctl",
	Short: "Bank back-office CLI",
	Long: `bankctl signs in to the bank back-office ledger, keeps the session between
runs and shows the views and data available to the signed-in role.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("BANK_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		cfg, err := config.New()
		if err != nil {
			return err
		}
		clientProvider = client.NewProvider(cfg, logging.New(cfg, os.Stderr))
		clientProvider.SetServerURL(serverURL)
		clientProvider.SetNavigator(auth.NavigatorFunc(announceRedirect))

		authcmd.SetClientProvider(clientProvider)
		authcmd.SetNonInteractive(nonInteractive)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if clientProvider != nil {
		if closeErr := clientProvider.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Ledger server URL (overrides BANK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via BANK_NON_INTERACTIVE=1)")
	rootCmd.AddCommand(authcmd.AuthCmd)
	rootCmd.AddCommand(navCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(getCmd)
}

func announceRedirect(_ context.Context, path string) {
	pterm.Info.Printf("Redirected to %s\n", path)
}

// errorMessage renders ledger errors the way the ledger phrased them.
func errorMessage(err error) string {
	if gateway.IsSessionEnded(err) {
		return "Your session has ended. Run 'bankctl auth login' to sign in again."
	}
	if apiErr, ok := gateway.AsAPIError(err); ok {
		return apiErr.Message()
	}
	return err.Error()
}

// signedIn returns the cached profile, fetching it after a partial login.
func signedIn(ctx context.Context) (*users.Principal, error) {
	svc, err := clientProvider.Auth()
	if err != nil {
		return nil, err
	}
	principal, err := svc.EnsurePrincipal(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		return nil, fmt.Errorf("not logged in: run 'bankctl auth login'")
	}
	return principal, err
}

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Check which view a navigation to path ends up on",
	Long: `Runs the access gate for path against the stored session. The gate keeps
signed-out users on the sign-in view and sends roles to the dashboard when a
view is not theirs. The ledger still authorizes every request on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := clientProvider.Store()
		if err != nil {
			return err
		}
		if store.IsAuthenticated() && store.GetPrincipal() == nil {
			if _, err := signedIn(cmd.Context()); err != nil {
				pterm.Warning.Printf("Profile unavailable: %s\n", errorMessage(err))
			}
		}

		gate, err := clientProvider.Gate()
		if err != nil {
			return err
		}
		decision := gate.Decide(args[0])
		if decision.Allowed() {
			pterm.Success.Printf("Opening %s\n", decision.Target())
			return nil
		}
		pterm.Warning.Printf("%s redirects to %s (%s)\n", decision.Path, decision.Target(), decision.Reason)
		return nil
	},
}

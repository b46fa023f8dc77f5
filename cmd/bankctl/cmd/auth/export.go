package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/jrsteele09/go-bank-session/token/jwt"
	"github.com/spf13/cobra"
)

const accessTokenEnvVar = "BANK_ACCESS_TOKEN"

var (
	shellFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the access credential as an environment variable",
	Long: `Prints shell commands that set BANK_ACCESS_TOKEN to the stored access
credential, for scripts that call the ledger API directly. An expired access
credential is renewed first.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(bankctl auth export)

  # Fish shell
  eval (bankctl auth export --shell fish)

  # PowerShell
  bankctl auth export --shell powershell | Invoke-Expression`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := provider()
	if err != nil {
		return err
	}
	store, err := p.Store()
	if err != nil {
		return err
	}

	token, err := sessions.TokenSource(store).Token()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w\n\nPlease run 'bankctl auth login' first", err)
	}
	accessToken := token.AccessToken
	if claims, err := jwt.Inspect(accessToken); err == nil && claims.Expired() {
		gw, err := p.Gateway()
		if err != nil {
			return err
		}
		if accessToken, err = gw.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("access credential has expired and could not be renewed: %w\n\nPlease run 'bankctl auth login'", err)
		}
	}

	if shellFormat == "" {
		shellFormat = detectShell()
	}

	switch strings.ToLower(shellFormat) {
	case "posix", "bash", "zsh", "sh":
		printExport("eval $(bankctl auth export)", "export %s=\"%s\"\n", accessToken)
	case "fish":
		printExport("eval (bankctl auth export --shell fish)", "set -x %s \"%s\"\n", accessToken)
	case "powershell", "pwsh", "ps1":
		printExport("bankctl auth export --shell powershell | Invoke-Expression", "$env:%s=\"%s\"\n", accessToken)
	default:
		return fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", shellFormat)
	}
	return nil
}

// detectShell guesses the shell from SHELL, defaulting to POSIX
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "posix"
	}
	switch filepath.Base(shell) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

// printExport writes the assignment to stdout and, on a terminal, a usage hint to stderr
func printExport(usage, format, accessToken string) {
	if isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, "# Run this command to configure your environment:")
		fmt.Fprintf(os.Stderr, "#   %s\n\n", usage)
	}
	fmt.Printf(format, accessTokenEnvVar, accessToken)
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var queryParams []string

var getCmd = &cobra.Command{
	Use:   "get <endpoint>",
	Short: "Call a ledger endpoint with the stored session and print the JSON response",
	Example: `  bankctl get /accounts/
  bankctl get /transactions/ --query type=credit --query account=3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		for _, param := range queryParams {
			key, value, ok := strings.Cut(param, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid --query %q, expected key=value", param)
			}
			query.Add(key, value)
		}

		gw, err := clientProvider.Gateway()
		if err != nil {
			return err
		}
		body, err := gw.Get(cmd.Context(), args[0], query)
		if err != nil {
			return err
		}

		var out bytes.Buffer
		if err := json.Indent(&out, body, "", "  "); err != nil {
			out.Reset()
			out.Write(body)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

func init() {
	getCmd.Flags().StringArrayVarP(&queryParams, "query", "q", nil, "Query parameter as key=value (repeatable)")
}

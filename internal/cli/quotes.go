package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "quotes [file]",
		Short: "Print the normalized quote list",
		Args:  cobra.MaximumNArgs(1),
		Run:   runQuotes,
	}

	addInputFlags(cmd)
	cmd.Flags().Bool("lines", false, "One quote per line instead of JSON")

	RootCmd.AddCommand(cmd)
}

func runQuotes(cmd *cobra.Command, args []string) {
	lines, _ := cmd.Flags().GetBool("lines")
	quotes := readQuotes(cmd, args)

	if lines {
		for _, q := range quotes {
			fmt.Println(q)
		}
		return
	}
	b, _ := json.MarshalIndent(quotes, "", "  ")
	fmt.Println(string(b))
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/vela/internal/store"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage stored input batches",
	Long:  "Store quote text under a name so it can be regenerated later with --batch. Only the input is stored, never the reels.",
}

func init() {
	put := &cobra.Command{
		Use:   "put <name> [file]",
		Short: "Store input text as a new batch version",
		Long:  "Store input text under name. Text comes from a file, '-' or piped stdin.",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runBatchPut,
	}
	put.Flags().StringP("tags", "t", "", "Comma-separated tags")

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Retrieve a batch",
		Args:  cobra.ExactArgs(1),
		Run:   runBatchGet,
	}
	get.Flags().Bool("history", false, "Return all versions (newest first)")
	get.Flags().Int("version", 0, "Specific version number")
	get.Flags().Bool("text", false, "Print only the stored text")

	list := &cobra.Command{
		Use:   "list",
		Short: "List batches",
		Args:  cobra.NoArgs,
		Run:   runBatchList,
	}
	list.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated)")
	list.Flags().IntP("limit", "l", 20, "Max results")
	list.Flags().Bool("names-only", false, "Only output names")

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a batch",
		Args:  cobra.ExactArgs(1),
		Run:   runBatchRm,
	}
	rm.Flags().Bool("all-versions", false, "Delete all versions")
	rm.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	batchCmd.AddCommand(put, get, list, rm)
	RootCmd.AddCommand(batchCmd)
}

func runBatchPut(cmd *cobra.Command, args []string) {
	tagsStr, _ := cmd.Flags().GetString("tags")

	text := readInput(cmd, args[1:])
	if strings.TrimSpace(text) == "" {
		exitErr("put", fmt.Errorf("text is required (file arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	b, err := s.Put(cmd.Context(), store.PutParams{
		Name: args[0],
		Text: text,
		Tags: parseTags(tagsStr),
	})
	if err != nil {
		exitErr("put", err)
	}

	out, _ := json.Marshal(b)
	fmt.Println(string(out))
}

func runBatchGet(cmd *cobra.Command, args []string) {
	history, _ := cmd.Flags().GetBool("history")
	version, _ := cmd.Flags().GetInt("version")
	textOnly, _ := cmd.Flags().GetBool("text")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	batches, err := s.Get(cmd.Context(), store.GetParams{
		Name:    args[0],
		History: history,
		Version: version,
	})
	if err != nil {
		exitErr("get", err)
	}

	if textOnly {
		fmt.Print(batches[0].Text)
		return
	}
	if history || len(batches) > 1 {
		b, _ := json.MarshalIndent(batches, "", "  ")
		fmt.Println(string(b))
	} else {
		b, _ := json.MarshalIndent(batches[0], "", "  ")
		fmt.Println(string(b))
	}
}

func runBatchList(cmd *cobra.Command, args []string) {
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")
	namesOnly, _ := cmd.Flags().GetBool("names-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	batches, err := s.List(cmd.Context(), store.ListParams{
		Tags:  parseTags(tagsStr),
		Limit: limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if namesOnly {
		for _, b := range batches {
			fmt.Println(b.Name)
		}
		return
	}

	b, _ := json.MarshalIndent(batches, "", "  ")
	fmt.Println(string(b))
}

func runBatchRm(cmd *cobra.Command, args []string) {
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		Name:        args[0],
		AllVersions: allVersions,
		Hard:        hard,
	})
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"name":%q}`+"\n", args[0])
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search batch names, text and quotes",
		Args:  cobra.ExactArgs(1),
		Run:   runBatchSearch,
	}
	search.Flags().IntP("limit", "l", 20, "Max results")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show batch database statistics",
		Args:  cobra.NoArgs,
		Run:   runBatchStats,
	}

	exp := &cobra.Command{
		Use:   "export",
		Short: "Export all batches as JSON",
		Args:  cobra.NoArgs,
		Run:   runBatchExport,
	}

	imp := &cobra.Command{
		Use:   "import",
		Short: "Import batches from JSON",
		Long:  "Import batches from JSON on stdin. Expects the format produced by export.",
		Args:  cobra.NoArgs,
		Run:   runBatchImport,
	}

	batchCmd.AddCommand(search, stats, exp, imp)
}

func runBatchSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{Query: args[0], Limit: limit})
	if err != nil {
		exitErr("search", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

func runBatchStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}

func runBatchExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	batches, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(batches, "", "  ")
	fmt.Println(string(b))
}

func runBatchImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var batches []model.Batch
	if err := json.Unmarshal(data, &batches); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), batches)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}

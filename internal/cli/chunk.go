package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/vela/internal/generator"
	"github.com/rcliao/vela/internal/normalize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chunk [quote]",
		Short: "Print the fallback layout for one quote",
		Long:  "Print the deterministic chunker layout for a quote, exactly as used when AI is off or fails.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChunk,
	}

	cmd.Flags().String("accent", "", "Accent color (default from config)")

	RootCmd.AddCommand(cmd)
}

func runChunk(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	q := normalize.Line(strings.Join(args, " "))
	reel := generator.Fallback(q, cfg.Accent)

	b, _ := json.MarshalIndent(reel, "", "  ")
	fmt.Println(string(b))
}

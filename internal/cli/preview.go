package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rcliao/vela/internal/export"
	"github.com/rcliao/vela/internal/generator"
	"github.com/rcliao/vela/internal/render"
	"github.com/rcliao/vela/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Write each reel as an HTML page or print terminal cards",
		Long:  "Generate reels and write the HTML document the rasterizer captures, one file per reel. With --terminal, print cards instead.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runPreview,
	}

	addInputFlags(cmd)
	addStyleFlags(cmd)
	cmd.Flags().StringP("out", "o", ".", "Directory for HTML files")
	cmd.Flags().BoolP("terminal", "t", false, "Print terminal cards instead of writing HTML")

	RootCmd.AddCommand(cmd)
}

func runPreview(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	out, _ := cmd.Flags().GetString("out")
	terminal, _ := cmd.Flags().GetBool("terminal")

	quotes := readQuotes(cmd, args)
	if len(quotes) == 0 {
		fmt.Fprintln(os.Stderr, "no quotes")
		return
	}

	gen := generator.New(session.New(), newDesigner(cfg))
	gen.Logger = logger()
	reels, err := gen.Run(cmd.Context(), quotes, generator.Options{
		Accent: cfg.Accent,
		Preset: cfg.Preset,
		UseAI:  cfg.AI.Enabled,
	})
	if err != nil {
		exitErr("generate", err)
	}

	if terminal {
		for i, r := range reels {
			fmt.Println(render.Card(r))
			fmt.Printf("%d/%d %s\n\n", i+1, len(reels), render.Quote(r.Quote))
		}
		return
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		exitErr("create out dir", err)
	}
	opts := renderOptions(cfg)
	for i, r := range reels {
		doc, err := render.HTML(r, opts)
		if err != nil {
			exitErr("render", err)
		}
		path := filepath.Join(out, fmt.Sprintf("vela-%d-%s.html", i+1, export.Slug(r.Quote)))
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			exitErr("write preview", err)
		}
		fmt.Println(path)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rcliao/vela/internal/config"
	"github.com/rcliao/vela/internal/export"
	"github.com/rcliao/vela/internal/generator"
	"github.com/rcliao/vela/internal/playback"
	"github.com/rcliao/vela/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate reels for every quote",
		Long:  "Generate one reel per quote line. Input is a file, '-' or piped stdin, or a stored batch. Prints the reels as JSON.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runGenerate,
	}

	addInputFlags(cmd)
	addStyleFlags(cmd)
	cmd.Flags().StringP("export", "e", "", "Export every reel as PNG into this directory")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	exportDir, _ := cmd.Flags().GetString("export")

	quotes := readQuotes(cmd, args)
	if len(quotes) == 0 {
		fmt.Fprintln(os.Stderr, "no quotes")
		return
	}

	log := logger()
	sess := session.New()
	sess.Subscribe(func(snap session.Snapshot) {
		if snap.Status != "" {
			log.Printf("%s (%d%%)", snap.Status, snap.Progress)
		}
	})

	gen := generator.New(sess, newDesigner(cfg))
	gen.Logger = log
	reels, err := gen.Run(cmd.Context(), quotes, generator.Options{
		Accent: cfg.Accent,
		Preset: cfg.Preset,
		UseAI:  cfg.AI.Enabled,
	})
	if err != nil {
		exitErr("generate", err)
	}

	if exportDir != "" {
		paths := exportAll(cmd, cfg, sess, exportDir)
		log.Printf("exported %d files", len(paths))
	}

	b, _ := json.MarshalIndent(reels, "", "  ")
	fmt.Println(string(b))
}

func newExporter(cfg config.Config, sess *session.Session, ctrl *playback.Controller, ras export.Rasterizer, dir string) *export.Exporter {
	return &export.Exporter{
		Session:      sess,
		Selector:     ctrl,
		Rasterizer:   ras,
		Dir:          dir,
		Render:       renderOptions(cfg),
		SettleBefore: cfg.Export.SettleBefore,
		SettleAfter:  cfg.Export.SettleAfter,
		Logger:       logger(),
	}
}

func exportAll(cmd *cobra.Command, cfg config.Config, sess *session.Session, dir string) []string {
	ras := export.NewRodRasterizer()
	defer ras.Close()

	e := newExporter(cfg, sess, playback.New(sess, nil), ras, dir)
	paths, err := e.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export failed", err)
	}
	return paths
}

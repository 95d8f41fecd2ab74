package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rcliao/vela/internal/export"
	"github.com/rcliao/vela/internal/generator"
	"github.com/rcliao/vela/internal/playback"
	"github.com/rcliao/vela/internal/session"
	"github.com/rcliao/vela/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Generate reels and play them in an interactive shell",
		Long:  "Generate reels and cycle through them every 5 seconds. Type help inside the shell for commands.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runPlay,
	}

	addInputFlags(cmd)
	addStyleFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "PNG export directory (default from config)")

	RootCmd.AddCommand(cmd)
}

// inputLoader returns a func that re-reads the play source each call, so
// `edit` picks up changes to the file or batch.
func inputLoader(cmd *cobra.Command, args []string) func() (string, error) {
	batch, _ := cmd.Flags().GetString("batch")
	switch {
	case batch != "":
		return func() (string, error) {
			s, err := openStore()
			if err != nil {
				return "", err
			}
			defer s.Close()
			batches, err := s.Get(cmd.Context(), store.GetParams{Name: batch})
			if err != nil {
				return "", err
			}
			return batches[0].Text, nil
		}
	case len(args) > 0 && args[0] != "-":
		path := args[0]
		return func() (string, error) {
			b, err := os.ReadFile(path)
			return string(b), err
		}
	default:
		// stdin can only be read once
		text := readInput(cmd, args)
		return func() (string, error) { return text, nil }
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Export.Dir = out
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := session.New()
	gen := generator.New(sess, newDesigner(cfg))
	gen.Logger = logger()
	ctrl := playback.New(sess, nil)

	ras := export.NewRodRasterizer()
	defer ras.Close()
	exp := newExporter(cfg, sess, ctrl, ras, cfg.Export.Dir)

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "vela> ",
		HistoryFile:  filepath.Join(home, ".vela_history"),
		AutoComplete: playCompleter(),
	})
	if err != nil {
		exitErr("init readline", err)
	}
	defer rl.Close()

	sh := newPlayShell(ctx, cfg, gen, ctrl, exp, inputLoader(cmd, args), rl.Stdout())

	sh.printf("=== vela ===\n")
	sh.showHelp()
	go ctrl.Run(ctx)
	sh.generate(true)

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(rl.Stdout(), "\nbye")
				break
			}
			break
		}

		if !sh.handleCommand(strings.TrimSpace(input)) {
			break
		}
	}

	cancel()
	sh.wait()
}

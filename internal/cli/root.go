// Package cli implements the vela CLI commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/vela/internal/config"
	"github.com/rcliao/vela/internal/layout"
	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/normalize"
	"github.com/rcliao/vela/internal/render"
	"github.com/rcliao/vela/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "vela",
	Short: "Turn quotes into animated reel cards",
	Long:  "Paste quotes, get one kinetic text reel per line. AI layouts with a deterministic fallback, terminal playback, PNG export.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Batch database path (default: $VELA_DB or ~/.vela/vela.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $VELA_CONFIG or ~/.vela/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log AI fallbacks and export progress to stderr")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("VELA_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vela", "vela.db")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("VELA_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vela", "config.yaml")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func logger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "vela: ", 0)
}

// addStyleFlags registers the flags that override config style settings.
func addStyleFlags(cmd *cobra.Command) {
	cmd.Flags().String("accent", "", "Accent color (#d4f73c, #ff6b4a, #38bdf8, #a78bfa, #ffffff)")
	cmd.Flags().String("preset", "", "Style preset: Kinetic Type, Stamp, Minimal")
	cmd.Flags().String("ratio", "", "Aspect ratio: 9:16, 16:9, 1:1")
	cmd.Flags().String("font", "", "Font: Bebas Neue, Impact, Georgia")
	cmd.Flags().String("ai", "", "AI layouts: on or off")
}

// loadConfig reads the config file and applies any style flags set on cmd.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		exitErr("load config", err)
	}
	if f := cmd.Flags().Lookup("accent"); f != nil && f.Changed {
		cfg.Accent = f.Value.String()
	}
	if f := cmd.Flags().Lookup("preset"); f != nil && f.Changed {
		cfg.Preset = f.Value.String()
	}
	if f := cmd.Flags().Lookup("ratio"); f != nil && f.Changed {
		cfg.Ratio = f.Value.String()
	}
	if f := cmd.Flags().Lookup("font"); f != nil && f.Changed {
		cfg.Font = f.Value.String()
	}
	if f := cmd.Flags().Lookup("ai"); f != nil && f.Changed {
		switch strings.ToLower(f.Value.String()) {
		case "on", "true", "1":
			cfg.AI.Enabled = true
		case "off", "false", "0":
			cfg.AI.Enabled = false
		default:
			exitErr("ai", fmt.Errorf("want on or off, got %q", f.Value.String()))
		}
	}
	if err := cfg.Validate(); err != nil {
		exitErr("config", err)
	}
	return cfg
}

func renderOptions(cfg config.Config) render.Options {
	return render.Options{Font: cfg.Font, Ratio: cfg.RatioValue()}
}

// newDesigner returns nil when AI is disabled in cfg.
func newDesigner(cfg config.Config) layout.Designer {
	if !cfg.AI.Enabled {
		return nil
	}
	d, err := layout.New(cfg.DesignerOptions())
	if err != nil {
		exitErr("ai provider", err)
	}
	return d
}

// addInputFlags registers --batch for commands that read quote text.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("batch", "b", "", "Read input from a stored batch")
}

// readInput returns the raw input text: a stored batch, a file argument,
// "-" for stdin, or piped stdin.
func readInput(cmd *cobra.Command, args []string) string {
	if name, _ := cmd.Flags().GetString("batch"); name != "" {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		batches, err := s.Get(cmd.Context(), store.GetParams{Name: name})
		if err != nil {
			exitErr("get batch", err)
		}
		return batches[0].Text
	}

	if len(args) > 0 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		if err != nil {
			exitErr("read input", err)
		}
		return string(b)
	}

	if len(args) > 0 || isPiped(os.Stdin) {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

// isPiped reports whether f is a pipe or file rather than a terminal.
// A file that cannot be stat'ed counts as not piped.
func isPiped(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func readQuotes(cmd *cobra.Command, args []string) []model.Quote {
	return normalize.Quotes(readInput(cmd, args))
}

func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

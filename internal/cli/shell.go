package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/rcliao/vela/internal/config"
	"github.com/rcliao/vela/internal/export"
	"github.com/rcliao/vela/internal/generator"
	"github.com/rcliao/vela/internal/layout"
	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/normalize"
	"github.com/rcliao/vela/internal/playback"
	"github.com/rcliao/vela/internal/render"
	"github.com/rcliao/vela/internal/session"
)

// playShell is the interactive player behind `vela play`.
type playShell struct {
	ctx  context.Context
	cfg  config.Config
	sess *session.Session
	gen  *generator.Generator
	ctrl *playback.Controller
	exp  *export.Exporter
	load func() (string, error)
	text string
	// newDesigner builds the AI designer when `set ai on` runs without one.
	newDesigner func(layout.Options) (layout.Designer, error)
	log  *log.Logger

	outMu sync.Mutex
	out   io.Writer

	wg      sync.WaitGroup
	idxMu   sync.Mutex
	lastIdx int
}

func newPlayShell(ctx context.Context, cfg config.Config, gen *generator.Generator, ctrl *playback.Controller, exp *export.Exporter, load func() (string, error), out io.Writer) *playShell {
	sh := &playShell{
		ctx:     ctx,
		cfg:     cfg,
		sess:    gen.Session,
		gen:     gen,
		ctrl:    ctrl,
		exp:     exp,
		load:    load,
		log:     gen.Logger,
		out:     out,
		lastIdx: -1,

		newDesigner: layout.New,
	}
	if sh.log == nil {
		sh.log = log.New(io.Discard, "", 0)
	}
	ctrl.OnTick(sh.onTick)
	return sh
}

func (sh *playShell) printf(format string, a ...any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintf(sh.out, format, a...)
}

// onTick announces the reel whenever autoplay moves the selection.
func (sh *playShell) onTick(st playback.State) {
	sh.idxMu.Lock()
	changed := st.Playing && st.Index != sh.lastIdx
	sh.lastIdx = st.Index
	sh.idxMu.Unlock()
	if changed {
		sh.printLine()
	}
}

func (sh *playShell) printLine() {
	reel, idx, ok := sh.sess.Current()
	if !ok {
		return
	}
	st := sh.ctrl.State()
	sh.printf("%s  %s\n", render.StatusLine(st.Playing, st.Elapsed, idx, sh.sess.Len()), reel.Quote)
}

func playCompleter() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("toggle"),
		readline.PcItem("next"),
		readline.PcItem("prev"),
		readline.PcItem("pick"),
		readline.PcItem("show"),
		readline.PcItem("list"),
		readline.PcItem("save"),
		readline.PcItem("save-all"),
		readline.PcItem("edit"),
		readline.PcItem("regen"),
		readline.PcItem("set",
			readline.PcItem("accent", items(model.Accents)...),
			readline.PcItem("preset", items(model.Presets)...),
			readline.PcItem("ratio",
				readline.PcItem("9:16"),
				readline.PcItem("16:9"),
				readline.PcItem("1:1"),
			),
			readline.PcItem("font", items(model.Fonts)...),
			readline.PcItem("ai",
				readline.PcItem("on"),
				readline.PcItem("off"),
			),
		),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func items(names []string) []readline.PrefixCompleterInterface {
	out := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, n := range names {
		out = append(out, readline.PcItem(n))
	}
	return out
}

func (sh *playShell) showHelp() {
	sh.printf("\nCommands:\n")
	sh.printf("  toggle               Play or pause autoplay\n")
	sh.printf("  next / prev          Move to the next or previous reel\n")
	sh.printf("  pick <n>             Select reel n (1-based) and pause\n")
	sh.printf("  show                 Draw the current reel\n")
	sh.printf("  list                 List all reels\n")
	sh.printf("  save                 Export the current reel as PNG\n")
	sh.printf("  save-all             Export every reel as PNG\n")
	sh.printf("  edit                 Reload the input and regenerate\n")
	sh.printf("  regen                Regenerate with the current settings\n")
	sh.printf("  set <key> <value>    Change accent, preset, ratio, font or ai\n")
	sh.printf("  status               Show generation and playback state\n")
	sh.printf("  help                 Show this help\n")
	sh.printf("  exit                 Exit the player\n\n")
}

// generate starts a generation run in the background, reloading the
// input first when reload is set. Autoplay starts when the run completes
// with reels.
func (sh *playShell) generate(reload bool) {
	if reload {
		text, err := sh.load()
		if err != nil {
			sh.printf("error: load input: %v\n", err)
			return
		}
		sh.text = text
	}
	quotes := normalize.Quotes(sh.text)
	if len(quotes) == 0 {
		sh.printf("no quotes\n")
		return
	}

	sh.ctrl.Reset()
	sh.idxMu.Lock()
	sh.lastIdx = -1
	sh.idxMu.Unlock()

	opts := generator.Options{Accent: sh.cfg.Accent, Preset: sh.cfg.Preset, UseAI: sh.cfg.AI.Enabled}
	sh.printf("generating %d reels...\n", len(quotes))
	sh.wg.Add(1)
	go func() {
		defer sh.wg.Done()
		reels, err := sh.gen.Run(sh.ctx, quotes, opts)
		if err != nil {
			sh.log.Printf("generation stopped: %v", err)
			return
		}
		sh.printf("generated %d reels\n", len(reels))
		if err := sh.ctrl.Play(); err == nil {
			sh.printLine()
		}
	}()
}

// wait blocks until background generation runs finish.
func (sh *playShell) wait() {
	sh.wg.Wait()
}

func (sh *playShell) showStatus() {
	snap := sh.sess.Snapshot()
	st := sh.ctrl.State()
	if snap.Generating {
		sh.printf("%s  %s\n", snap.Status, render.ProgressBar(float64(snap.Progress), 20))
	}
	sh.printf("%s\n", render.StatusLine(st.Playing, st.Elapsed, snap.CurrentIndex, len(snap.Reels)))
	ai := "off"
	if sh.cfg.AI.Enabled {
		ai = sh.cfg.AI.Provider
	}
	sh.printf("accent %s  preset %s  ratio %s  font %s  ai %s\n",
		sh.cfg.Accent, sh.cfg.Preset, sh.cfg.Ratio, sh.cfg.Font, ai)
}

func (sh *playShell) show() {
	reel, idx, ok := sh.sess.Current()
	if !ok {
		sh.printf("no reels yet\n")
		return
	}
	st := sh.ctrl.State()
	sh.printf("%s\n%s\n%s\n", render.Card(reel), render.Quote(reel.Quote),
		render.StatusLine(st.Playing, st.Elapsed, idx, sh.sess.Len()))
}

func (sh *playShell) list() {
	snap := sh.sess.Snapshot()
	if len(snap.Reels) == 0 {
		sh.printf("no reels yet\n")
		return
	}
	for i, r := range snap.Reels {
		mark := " "
		if i == snap.CurrentIndex {
			mark = ">"
		}
		sh.printf("%s %2d  %s\n", mark, i+1, r.Quote)
	}
}

func (sh *playShell) set(key, value string) {
	next := sh.cfg
	switch key {
	case "accent":
		next.Accent = value
	case "preset":
		next.Preset = value
	case "ratio":
		next.Ratio = value
	case "font":
		next.Font = value
	case "ai":
		switch value {
		case "on":
			next.AI.Enabled = true
		case "off":
			next.AI.Enabled = false
		default:
			sh.printf("usage: set ai on|off\n")
			return
		}
	default:
		sh.printf("unknown setting %q (accent, preset, ratio, font, ai)\n", key)
		return
	}
	if err := next.Validate(); err != nil {
		sh.printf("error: %v\n", err)
		return
	}
	if next.AI.Enabled && sh.gen.Designer == nil {
		d, err := sh.newDesigner(next.DesignerOptions())
		if err != nil {
			sh.printf("error: %v\n", err)
			return
		}
		// generation runs read gen.Designer
		sh.wait()
		sh.gen.Designer = d
	}
	sh.cfg = next
	sh.exp.Render = renderOptions(next)
	sh.printf("%s = %s\n", key, value)
}

func (sh *playShell) save() {
	path, err := sh.exp.ExportCurrent(sh.ctx)
	if err != nil {
		sh.printf("export failed: %v\n", err)
		return
	}
	sh.printf("saved %s\n", path)
}

func (sh *playShell) saveAll() {
	if sh.sess.Len() == 0 {
		sh.printf("no reels yet\n")
		return
	}
	playing := sh.ctrl.State().Playing
	sh.ctrl.Stop()
	paths, err := sh.exp.ExportAll(sh.ctx)
	for _, p := range paths {
		sh.printf("saved %s\n", p)
	}
	if err != nil {
		sh.printf("export failed: %v\n", err)
	}
	if playing {
		sh.ctrl.Play()
	}
}

// handleCommand runs one shell line and reports whether to keep going.
func (sh *playShell) handleCommand(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "toggle", "t":
		if err := sh.ctrl.Toggle(); errors.Is(err, playback.ErrNoReels) {
			sh.printf("nothing to play\n")
			return true
		}
		sh.printLine()
	case "next", "n":
		if _, ok := sh.ctrl.Next(); ok {
			sh.printLine()
		}
	case "prev", "p":
		if _, ok := sh.ctrl.Prev(); ok {
			sh.printLine()
		}
	case "pick":
		if len(fields) != 2 {
			sh.printf("usage: pick <n>\n")
			return true
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > sh.sess.Len() {
			sh.printf("pick: want a reel number between 1 and %d\n", sh.sess.Len())
			return true
		}
		sh.ctrl.Pick(n - 1)
		sh.printLine()
	case "show":
		sh.show()
	case "list", "ls":
		sh.list()
	case "save":
		sh.save()
	case "save-all":
		sh.saveAll()
	case "edit":
		sh.generate(true)
	case "regen":
		sh.generate(false)
	case "set":
		if len(fields) < 3 {
			sh.printf("usage: set <key> <value>\n")
			return true
		}
		sh.set(fields[1], strings.Join(fields[2:], " "))
	case "status":
		sh.showStatus()
	case "help", "?":
		sh.showHelp()
	case "exit", "quit", "q":
		return false
	default:
		sh.printf("unknown command %q, type help\n", fields[0])
	}
	return true
}

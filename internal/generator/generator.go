// Package generator builds one reel per quote, asking the layout designer
// first when AI is enabled and falling back to the chunker otherwise.
package generator

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/rcliao/vela/internal/chunker"
	"github.com/rcliao/vela/internal/layout"
	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/session"
)

// Options configures a generation run.
type Options struct {
	Accent string
	Preset string
	UseAI  bool
}

// Generator runs generation against a session. Starting a run cancels
// the previous one.
type Generator struct {
	Session  *session.Session
	Designer layout.Designer // nil disables the AI path
	Logger   *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a generator writing into s.
func New(s *session.Session, d layout.Designer) *Generator {
	return &Generator{Session: s, Designer: d}
}

func (g *Generator) logger() *log.Logger {
	if g.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return g.Logger
}

// Run produces a reel for every quote in order and returns them. An
// empty quote list is a no-op. Run only fails when ctx is cancelled or a
// newer run took over the session; reels appended before that stay.
func (g *Generator) Run(ctx context.Context, quotes []model.Quote, opts Options) ([]model.Reel, error) {
	if len(quotes) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.cancel = cancel
	g.mu.Unlock()
	defer cancel()

	s := g.Session
	run := s.Begin()
	n := len(quotes)
	reels := make([]model.Reel, 0, n)

	for i, q := range quotes {
		if err := ctx.Err(); err != nil {
			return reels, err
		}
		if !s.Active(run) {
			return reels, fmt.Errorf("run %d superseded", run)
		}
		s.SetStatus(run, fmt.Sprintf("Reel %d of %d", i+1, n))

		reel, ok := g.design(ctx, q, opts)
		if !ok {
			reel = Fallback(q, opts.Accent)
		}
		reel.Quote = q

		if !s.Append(run, reel, Progress(i+1, n)) {
			return reels, fmt.Errorf("run %d superseded", run)
		}
		reels = append(reels, reel)
	}

	s.Finish(run)
	return reels, nil
}

// design makes the single AI attempt for q. Every failure is logged and
// reported as !ok.
func (g *Generator) design(ctx context.Context, q model.Quote, opts Options) (model.Reel, bool) {
	if !opts.UseAI || g.Designer == nil {
		return model.Reel{}, false
	}
	raw, err := g.Designer.Design(ctx, layout.Request{Quote: q, Accent: opts.Accent, Preset: opts.Preset})
	if err != nil {
		g.logger().Printf("design %q: %v (using fallback)", q, err)
		return model.Reel{}, false
	}
	reel, err := layout.Parse(raw)
	if err != nil {
		g.logger().Printf("design %q: %v (using fallback)", q, err)
		return model.Reel{}, false
	}
	return reel, true
}

// Fallback is the deterministic reel for q.
func Fallback(q model.Quote, accent string) model.Reel {
	return model.Reel{
		Background: model.DefaultBackground,
		Layout:     model.LayoutKinetic,
		Lines:      chunker.Chunk(q, accent),
		Quote:      q,
	}
}

// Progress is round(100 * done / total).
func Progress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

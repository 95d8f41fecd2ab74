// Package export writes reels to PNG files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/render"
	"github.com/rcliao/vela/internal/session"
)

const (
	// DefaultSettleBefore is the wait between selecting a reel and capturing it.
	DefaultSettleBefore = 700 * time.Millisecond
	// DefaultSettleAfter is the wait after each file in ExportAll.
	DefaultSettleAfter = 500 * time.Millisecond
	// MinSettle is the shortest allowed settle delay.
	MinSettle = 500 * time.Millisecond

	slugLen = 30
)

// ErrNoReel is returned by ExportCurrent when nothing is selected.
var ErrNoReel = errors.New("no reel to export")

// Rasterizer turns a reel into PNG bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, reel model.Reel, opts render.Options) ([]byte, error)
}

// Selector moves the current selection. playback.Controller satisfies it.
type Selector interface {
	Select(i int) (int, bool)
}

// Exporter writes the session's reels into Dir.
type Exporter struct {
	Session      *session.Session
	Selector     Selector
	Rasterizer   Rasterizer
	Dir          string
	Render       render.Options
	SettleBefore time.Duration
	SettleAfter  time.Duration
	Logger       *log.Logger

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return e.Logger
}

func (e *Exporter) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Exporter) settleBefore() time.Duration {
	if e.SettleBefore == 0 {
		return DefaultSettleBefore
	}
	return max(e.SettleBefore, MinSettle)
}

func (e *Exporter) settleAfter() time.Duration {
	if e.SettleAfter == 0 {
		return DefaultSettleAfter
	}
	return max(e.SettleAfter, MinSettle)
}

// ExportCurrent writes the selected reel and returns the file path.
func (e *Exporter) ExportCurrent(ctx context.Context) (string, error) {
	reel, idx, ok := e.Session.Current()
	if !ok {
		return "", ErrNoReel
	}
	return e.write(ctx, idx, reel)
}

// ExportAll selects each reel in order, lets it settle and writes it.
// The first failure stops the export; files already written are kept.
func (e *Exporter) ExportAll(ctx context.Context) ([]string, error) {
	n := e.Session.Len()
	if n == 0 {
		return nil, nil
	}

	var paths []string
	for i := range n {
		if _, ok := e.Selector.Select(i); !ok {
			return paths, ErrNoReel
		}
		if err := e.sleep(ctx, e.settleBefore()); err != nil {
			return paths, err
		}
		reel, ok := e.Session.Reel(i)
		if !ok {
			return paths, ErrNoReel
		}
		path, err := e.write(ctx, i, reel)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
		if err := e.sleep(ctx, e.settleAfter()); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

func (e *Exporter) write(ctx context.Context, idx int, reel model.Reel) (string, error) {
	png, err := e.Rasterizer.Rasterize(ctx, reel, e.Render)
	if err != nil {
		return "", fmt.Errorf("rasterize reel %d: %w", idx+1, err)
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(idx, reel.Quote))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	e.logger().Printf("exported %s (%d bytes)", path, len(png))
	return path, nil
}

// Filename is the PNG name for the reel at idx: vela-<idx+1>-<slug>.png.
func Filename(idx int, quote model.Quote) string {
	return fmt.Sprintf("vela-%d-%s.png", idx+1, Slug(quote))
}

// Slug lower-cases the first 30 characters of quote and replaces every
// character outside [a-zA-Z0-9] with '-'. An empty quote gives "reel".
func Slug(quote model.Quote) string {
	if quote == "" {
		return "reel"
	}
	r := []rune(quote)
	if len(r) > slugLen {
		r = r[:slugLen]
	}
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		case c >= 'A' && c <= 'Z':
			return c + ('a' - 'A')
		}
		return '-'
	}, string(r))
}

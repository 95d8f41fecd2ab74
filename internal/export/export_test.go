package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/playback"
	"github.com/rcliao/vela/internal/render"
	"github.com/rcliao/vela/internal/session"
)

type fakeRasterizer struct {
	calls  []model.Quote
	failAt int // 1-based call that fails, 0 never
}

func (f *fakeRasterizer) Rasterize(_ context.Context, reel model.Reel, _ render.Options) ([]byte, error) {
	f.calls = append(f.calls, reel.Quote)
	if f.failAt == len(f.calls) {
		return nil, errors.New("boom")
	}
	return []byte("png:" + reel.Quote), nil
}

type selectSpy struct {
	*playback.Controller
	selected []int
}

func (s *selectSpy) Select(i int) (int, bool) {
	idx, ok := s.Controller.Select(i)
	s.selected = append(s.selected, idx)
	return idx, ok
}

func newTestExporter(t *testing.T, quotes ...string) (*Exporter, *fakeRasterizer, *selectSpy, *[]time.Duration) {
	t.Helper()
	sess := session.New()
	run := sess.Begin()
	for i, q := range quotes {
		sess.Append(run, model.Reel{Background: "#000", Layout: model.LayoutKinetic, Quote: q}, (i+1)*100/len(quotes))
	}
	sess.Finish(run)

	ras := &fakeRasterizer{}
	spy := &selectSpy{Controller: playback.New(sess, nil)}
	var waits []time.Duration
	e := &Exporter{
		Session:    sess,
		Selector:   spy,
		Rasterizer: ras,
		Dir:        t.TempDir(),
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	return e, ras, spy, &waits
}

func TestSlug(t *testing.T) {
	tests := []struct {
		quote, want string
	}{
		{"", "reel"},
		{"Start now.", "start-now-"},
		{"Don't wait.", "don-t-wait-"},
		{"The best time to plant a tree was twenty years ago", "the-best-time-to-plant-a-tree-"},
		{"ABC123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.quote, func(t *testing.T) {
			if got := Slug(tt.quote); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.quote, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(0, "Start now."); got != "vela-1-start-now-.png" {
		t.Errorf("got %q", got)
	}
	if got := Filename(2, ""); got != "vela-3-reel.png" {
		t.Errorf("got %q", got)
	}
}

func TestExportCurrent(t *testing.T) {
	e, _, _, _ := newTestExporter(t, "Start now.", "Don't wait.")
	e.Session.Select(1)

	path, err := e.ExportCurrent(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "vela-2-don-t-wait-.png" {
		t.Errorf("unexpected file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png:Don't wait." {
		t.Errorf("unexpected content %q", data)
	}
}

func TestExportCurrent_Empty(t *testing.T) {
	e, _, _, _ := newTestExporter(t)
	if _, err := e.ExportCurrent(context.Background()); !errors.Is(err, ErrNoReel) {
		t.Fatalf("expected ErrNoReel, got %v", err)
	}
}

func TestExportAll_Empty(t *testing.T) {
	e, ras, _, _ := newTestExporter(t)
	paths, err := e.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if len(paths) != 0 || len(ras.calls) != 0 {
		t.Errorf("expected no files, got %v", paths)
	}
	entries, _ := os.ReadDir(e.Dir)
	if len(entries) != 0 {
		t.Errorf("expected empty dir, got %d entries", len(entries))
	}
}

func TestExportAll_Order(t *testing.T) {
	e, ras, spy, waits := newTestExporter(t, "one two", "three four", "five six")
	paths, err := e.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %d", len(paths))
	}
	for i, want := range []string{"vela-1-one-two.png", "vela-2-three-four.png", "vela-3-five-six.png"} {
		if filepath.Base(paths[i]) != want {
			t.Errorf("file %d: got %s, want %s", i, filepath.Base(paths[i]), want)
		}
	}
	if got := ras.calls; got[0] != "one two" || got[2] != "five six" {
		t.Errorf("unexpected raster order %v", got)
	}
	if len(spy.selected) != 3 || spy.selected[2] != 2 {
		t.Errorf("unexpected selections %v", spy.selected)
	}
	if e.Session.Index() != 2 {
		t.Errorf("expected last reel selected, got %d", e.Session.Index())
	}
	if len(*waits) != 6 || (*waits)[0] != DefaultSettleBefore || (*waits)[1] != DefaultSettleAfter {
		t.Errorf("unexpected waits %v", *waits)
	}
}

func TestExportAll_AbortsOnError(t *testing.T) {
	e, ras, _, _ := newTestExporter(t, "one", "two", "three")
	ras.failAt = 2

	paths, err := e.ExportAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 file before failure, got %d", len(paths))
	}
	if len(ras.calls) != 2 {
		t.Errorf("expected export to stop after failure, got %d calls", len(ras.calls))
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("first file should remain: %v", err)
	}
}

func TestExportAll_SettleFloor(t *testing.T) {
	e, _, _, waits := newTestExporter(t, "one")
	e.SettleBefore = 100 * time.Millisecond
	e.SettleAfter = 10 * time.Millisecond

	if _, err := e.ExportAll(context.Background()); err != nil {
		t.Fatalf("export all: %v", err)
	}
	for _, w := range *waits {
		if w < MinSettle {
			t.Errorf("wait %v below floor", w)
		}
	}
}

func TestExportAll_Cancelled(t *testing.T) {
	e, ras, _, _ := newTestExporter(t, "one", "two")
	e.Sleep = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ExportAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(ras.calls) != 0 {
		t.Errorf("expected no rasterization, got %d", len(ras.calls))
	}
}

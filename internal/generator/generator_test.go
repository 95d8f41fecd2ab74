package generator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rcliao/vela/internal/chunker"
	"github.com/rcliao/vela/internal/layout"
	"github.com/rcliao/vela/internal/model"
	"github.com/rcliao/vela/internal/normalize"
	"github.com/rcliao/vela/internal/session"
)

const accent = "#d4f73c"

var quotes = []model.Quote{
	"A year from today, you'll regret not starting now.",
	"Start now.",
	"Future you is begging you to start today.",
}

func TestRun_AIDisabled(t *testing.T) {
	s := session.New()
	calls := 0
	g := New(s, layout.Func(func(ctx context.Context, r layout.Request) (string, error) {
		calls++
		return "", nil
	}))

	reels, err := g.Run(context.Background(), normalize.Quotes("Start now.\nDon't wait."), Options{Accent: accent})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 0 {
		t.Errorf("designer called %d times with AI disabled", calls)
	}
	if len(reels) != 2 {
		t.Fatalf("expected 2 reels, got %d", len(reels))
	}
	if reels[0].Lines[0].Text != "START" || reels[0].Lines[1].Text != "NOW." {
		t.Errorf("unexpected first reel %+v", reels[0].Lines)
	}
	if reels[1].Quote != "Don't wait." {
		t.Errorf("expected source quote attached, got %q", reels[1].Quote)
	}
}

func TestRun_AllAIFailuresEqualsChunker(t *testing.T) {
	s := session.New()
	g := New(s, layout.Func(func(ctx context.Context, r layout.Request) (string, error) {
		return "", errors.New("connection refused")
	}))

	reels, err := g.Run(context.Background(), quotes, Options{Accent: accent, UseAI: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reels) != len(quotes) {
		t.Fatalf("expected %d reels, got %d", len(quotes), len(reels))
	}
	for i, q := range quotes {
		want := model.Reel{Background: "#000", Layout: model.LayoutKinetic, Lines: chunker.Chunk(q, accent), Quote: q}
		if !reflect.DeepEqual(reels[i], want) {
			t.Errorf("reel %d: expected %+v, got %+v", i, want, reels[i])
		}
	}
}

func TestRun_MixedAIResults(t *testing.T) {
	s := session.New()
	var seen []string
	g := New(s, layout.Func(func(ctx context.Context, r layout.Request) (string, error) {
		seen = append(seen, r.Quote)
		if r.Preset != model.PresetStamp || r.Accent != accent {
			t.Errorf("unexpected request %+v", r)
		}
		switch {
		case strings.HasPrefix(r.Quote, "A year"):
			return `Here you go: {"bg":"#101010","layout":"stamp","lines":[{"text":"A YEAR","color":"#d4f73c","size":"large","delay":0.1},],}`, nil
		case r.Quote == "Start now.":
			return `{"lines":[]}`, nil
		default:
			return "not json", nil
		}
	}))

	reels, err := g.Run(context.Background(), quotes, Options{Accent: accent, Preset: model.PresetStamp, UseAI: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(seen, quotes) {
		t.Errorf("expected one request per quote in order, got %q", seen)
	}
	if reels[0].Layout != model.LayoutStamp || reels[0].Background != "#101010" || len(reels[0].Lines) != 1 {
		t.Errorf("expected AI reel, got %+v", reels[0])
	}
	for i := 1; i < 3; i++ {
		if !reflect.DeepEqual(reels[i], Fallback(quotes[i], accent)) {
			t.Errorf("reel %d: expected fallback, got %+v", i, reels[i])
		}
	}
	for i, r := range reels {
		if r.Quote != quotes[i] {
			t.Errorf("reel %d: expected quote %q, got %q", i, quotes[i], r.Quote)
		}
	}
}

func TestRun_ProgressAndStatus(t *testing.T) {
	s := session.New()
	var statuses []string
	var progress []int
	s.Subscribe(func(snap session.Snapshot) {
		if snap.Status != "" && (len(statuses) == 0 || statuses[len(statuses)-1] != snap.Status) {
			statuses = append(statuses, snap.Status)
		}
		progress = append(progress, snap.Progress)
	})

	g := New(s, nil)
	if _, err := g.Run(context.Background(), quotes, Options{Accent: accent}); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"Reel 1 of 3", "Reel 2 of 3", "Reel 3 of 3"}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("expected statuses %q, got %q", want, statuses)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress decreased: %v", progress)
		}
	}
	snap := s.Snapshot()
	if snap.Generating || snap.Status != "" || snap.Progress != 100 || len(snap.Reels) != 3 {
		t.Errorf("unexpected final snapshot %+v", snap)
	}
}

func TestRun_EmptyIsNoop(t *testing.T) {
	s := session.New()
	g := New(s, nil)
	reels, err := g.Run(context.Background(), nil, Options{})
	if err != nil || reels != nil {
		t.Errorf("expected no-op, got %v, %v", reels, err)
	}
	if s.Snapshot().Run != 0 {
		t.Error("empty run must not reset the session")
	}
}

func TestRun_NewRunSupersedesOld(t *testing.T) {
	s := session.New()
	g := New(s, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	g.Designer = layout.Func(func(ctx context.Context, r layout.Request) (string, error) {
		if r.Quote == "slow quote here" {
			close(started)
			<-release
			return "", ctx.Err()
		}
		return "", errors.New("offline")
	})

	done := make(chan error, 1)
	go func() {
		_, err := g.Run(context.Background(), []model.Quote{"slow quote here", "second"}, Options{UseAI: true})
		done <- err
	}()
	<-started

	reels, err := g.Run(context.Background(), []model.Quote{"fresh run"}, Options{UseAI: true})
	close(release)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(reels) != 1 {
		t.Fatalf("expected 1 reel, got %d", len(reels))
	}
	if err := <-done; err == nil {
		t.Error("expected superseded run to report an error")
	}
	snap := s.Snapshot()
	if len(snap.Reels) != 1 || snap.Reels[0].Quote != "fresh run" {
		t.Errorf("stale run leaked into session: %+v", snap.Reels)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct{ done, total, want int }{
		{1, 3, 33}, {2, 3, 67}, {3, 3, 100}, {1, 8, 13}, {0, 0, 0},
	}
	for _, tt := range tests {
		if got := Progress(tt.done, tt.total); got != tt.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

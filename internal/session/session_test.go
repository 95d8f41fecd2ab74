package session

import (
	"testing"

	"github.com/rcliao/vela/internal/model"
)

func reel(q string) model.Reel {
	return model.Reel{Background: "#000", Layout: model.LayoutKinetic, Quote: q,
		Lines: []model.LineSegment{{Text: q, Color: "#fff", Size: model.SizeLarge, Delay: 0.08}}}
}

func TestBeginResets(t *testing.T) {
	s := New()
	run := s.Begin()
	s.Append(run, reel("a"), 50)
	s.Append(run, reel("b"), 100)
	s.Select(1)

	s.Begin()
	snap := s.Snapshot()
	if len(snap.Reels) != 0 || snap.CurrentIndex != 0 || snap.Progress != 0 || !snap.Generating {
		t.Errorf("expected reset session, got %+v", snap)
	}
}

func TestStaleRunDiscarded(t *testing.T) {
	s := New()
	old := s.Begin()
	cur := s.Begin()

	if s.Append(old, reel("stale"), 100) {
		t.Error("expected stale append to be rejected")
	}
	if s.SetStatus(old, "Reel 1 of 1") || s.Finish(old) {
		t.Error("expected stale status/finish to be rejected")
	}
	if !s.Append(cur, reel("fresh"), 100) {
		t.Error("expected current append to succeed")
	}
	snap := s.Snapshot()
	if len(snap.Reels) != 1 || snap.Reels[0].Quote != "fresh" {
		t.Errorf("unexpected reels %+v", snap.Reels)
	}
	if !snap.Generating {
		t.Error("stale finish must not clear generating flag")
	}
}

func TestSelectWraps(t *testing.T) {
	s := New()
	if _, ok := s.Select(2); ok {
		t.Error("expected select on empty session to fail")
	}
	run := s.Begin()
	for _, q := range []string{"a", "b", "c"} {
		s.Append(run, reel(q), 0)
	}
	tests := []struct {
		in, want int
	}{
		{0, 0}, {2, 2}, {3, 0}, {-1, 2}, {7, 1},
	}
	for _, tt := range tests {
		if got, _ := s.Select(tt.in); got != tt.want {
			t.Errorf("Select(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	s.Select(0)
	if got, _ := s.Step(-1); got != 2 {
		t.Errorf("Step(-1) from 0 = %d, want 2", got)
	}
}

func TestProgressMonotonic(t *testing.T) {
	s := New()
	run := s.Begin()
	s.Append(run, reel("a"), 60)
	s.Append(run, reel("b"), 40)
	if p := s.Snapshot().Progress; p != 60 {
		t.Errorf("expected progress to stay at 60, got %d", p)
	}
}

func TestSubscribe(t *testing.T) {
	s := New()
	var counts []int
	s.Subscribe(func(snap Snapshot) { counts = append(counts, len(snap.Reels)) })
	run := s.Begin()
	s.Append(run, reel("a"), 100)
	s.Finish(run)
	want := []int{0, 1, 1}
	if len(counts) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("notification %d: expected %d reels, got %d", i, want[i], counts[i])
		}
	}
}

func TestSubscribe_Multiple(t *testing.T) {
	s := New()
	var first, second []bool
	s.Subscribe(func(snap Snapshot) { first = append(first, snap.Generating) })
	s.Subscribe(func(snap Snapshot) {
		second = append(second, snap.Generating)
		if len(second) == 1 {
			// subscribing from a callback must not deadlock or join the current round
			s.Subscribe(func(Snapshot) {})
		}
	})
	run := s.Begin()
	s.Finish(run)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 notifications each, got %d and %d", len(first), len(second))
	}
	if !first[0] || first[1] || !second[0] || second[1] {
		t.Errorf("unexpected generating flags %v / %v", first, second)
	}
}

func TestReelsAreCopies(t *testing.T) {
	s := New()
	run := s.Begin()
	s.Append(run, reel("a"), 100)
	r, _, _ := s.Current()
	r.Lines[0].Text = "mutated"
	again, _ := s.Reel(0)
	if again.Lines[0].Text != "a" {
		t.Error("session reel was mutated through a returned copy")
	}
}

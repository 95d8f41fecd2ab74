// Package session holds the state of one generation run: the reels built
// so far, the selected index and progress.
package session

import (
	"slices"
	"sync"

	"github.com/rcliao/vela/internal/model"
)

// Run identifies one generation run. Writes carrying a run that is no
// longer current are dropped.
type Run uint64

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Reels        []model.Reel `json:"reels"`
	CurrentIndex int          `json:"current_index"`
	Generating   bool         `json:"generating"`
	Progress     int          `json:"progress"`
	Status       string       `json:"status,omitempty"`
	Run          Run          `json:"run"`
}

// Session is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	reels      []model.Reel
	current    int
	generating bool
	progress   int
	status     string
	run        Run
	onChange   []func(Snapshot)
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Subscribe registers fn to be called after every change. Calls happen
// outside the session lock, in change order per goroutine.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Begin resets the session for a new run and returns its token.
func (s *Session) Begin() Run {
	s.mu.Lock()
	s.run++
	s.reels = nil
	s.current = 0
	s.progress = 0
	s.status = ""
	s.generating = true
	r := s.run
	s.mu.Unlock()
	s.notify()
	return r
}

// Active reports whether run is the current run.
func (s *Session) Active(run Run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return run == s.run
}

// SetStatus publishes a status message for run.
func (s *Session) SetStatus(run Run, msg string) bool {
	return s.update(run, func() { s.status = msg })
}

// Append adds reel for run and sets progress. It returns false and
// changes nothing when run is stale.
func (s *Session) Append(run Run, reel model.Reel, progress int) bool {
	return s.update(run, func() {
		s.reels = append(s.reels, reel.Clone())
		if progress > s.progress {
			s.progress = progress
		}
	})
}

// Finish clears the generating flag and status for run.
func (s *Session) Finish(run Run) bool {
	return s.update(run, func() {
		s.generating = false
		s.status = ""
	})
}

func (s *Session) update(run Run, fn func()) bool {
	s.mu.Lock()
	if run != s.run {
		s.mu.Unlock()
		return false
	}
	fn()
	s.mu.Unlock()
	s.notify()
	return true
}

// Len returns the number of reels.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reels)
}

// Index returns the selected index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Select sets the selected index, wrapped modulo the current number of
// reels. It returns the new index and false when there are no reels.
func (s *Session) Select(i int) (int, bool) {
	s.mu.Lock()
	n := len(s.reels)
	if n == 0 {
		s.mu.Unlock()
		return 0, false
	}
	s.current = wrap(i, n)
	idx := s.current
	s.mu.Unlock()
	s.notify()
	return idx, true
}

// Step moves the selection by delta, wrapping.
func (s *Session) Step(delta int) (int, bool) {
	s.mu.Lock()
	n := len(s.reels)
	if n == 0 {
		s.mu.Unlock()
		return 0, false
	}
	s.current = wrap(s.current+delta, n)
	idx := s.current
	s.mu.Unlock()
	s.notify()
	return idx, true
}

// Current returns the selected reel.
func (s *Session) Current() (model.Reel, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reels) == 0 {
		return model.Reel{}, 0, false
	}
	s.current = wrap(s.current, len(s.reels))
	return s.reels[s.current].Clone(), s.current, true
}

// Reel returns the reel at i.
func (s *Session) Reel(i int) (model.Reel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.reels) {
		return model.Reel{}, false
	}
	return s.reels[i].Clone(), true
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	reels := make([]model.Reel, len(s.reels))
	for i, r := range s.reels {
		reels[i] = r.Clone()
	}
	return Snapshot{
		Reels:        reels,
		CurrentIndex: s.current,
		Generating:   s.generating,
		Progress:     s.progress,
		Status:       s.status,
		Run:          s.run,
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	if len(s.onChange) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := slices.Clone(s.onChange)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Package playback cycles the selected reel on a fixed timer.
//
// The controller is a two-state machine (Stopped, Playing) driven by a
// single tick source. It never touches the reel list; it only moves the
// session's selected index.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rcliao/vela/internal/session"
)

const (
	// CycleDuration is how long each reel stays selected while playing.
	CycleDuration = 5000 * time.Millisecond
	// TickInterval is the period of the tick source started by Run.
	TickInterval = 40 * time.Millisecond
)

// ErrNoReels is returned when playback is started with nothing to play.
var ErrNoReels = errors.New("no reels to play")

// State is the playback state.
type State struct {
	Playing bool    `json:"playing"`
	Elapsed float64 `json:"elapsed"` // percent of the current cycle, 0-100
	Index   int     `json:"index"`
}

// Controller is safe for concurrent use.
type Controller struct {
	sess *session.Session
	now  func() time.Time

	mu         sync.Mutex
	playing    bool
	elapsed    float64
	cycleStart time.Time
	onTick     func(State)
}

// New returns a stopped controller for s. A nil now uses time.Now.
func New(s *session.Session, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{sess: s, now: now}
}

// OnTick registers fn to receive the state after every tick and change.
func (c *Controller) OnTick(fn func(State)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{Playing: c.playing, Elapsed: c.elapsed, Index: c.sess.Index()}
}

// Play starts autoplay from the current reel.
func (c *Controller) Play() error {
	if c.sess.Len() == 0 {
		return ErrNoReels
	}
	c.mu.Lock()
	if !c.playing {
		c.playing = true
		c.restartLocked()
	}
	c.mu.Unlock()
	c.emit()
	return nil
}

// Stop halts autoplay. The selection and elapsed percentage are kept.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
	c.emit()
}

// Reset stops playback and clears the cycle, for use when the reel list
// is replaced by a new generation run.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.playing = false
	c.elapsed = 0
	c.mu.Unlock()
	c.emit()
}

// Toggle switches between Playing and Stopped.
func (c *Controller) Toggle() error {
	if c.State().Playing {
		c.Stop()
		return nil
	}
	return c.Play()
}

// Tick advances the machine to now. While playing, a completed cycle
// moves to the next reel. It reports whether the selection changed.
func (c *Controller) Tick() bool {
	empty := c.sess.Len() == 0
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return false
	}
	if empty {
		c.playing = false
		c.elapsed = 0
		c.mu.Unlock()
		c.emit()
		return false
	}
	now := c.now()
	pct := float64(now.Sub(c.cycleStart)) / float64(CycleDuration) * 100
	if pct < 100 {
		c.elapsed = pct
		c.mu.Unlock()
		c.emit()
		return false
	}
	c.cycleStart = now
	c.elapsed = 0
	c.mu.Unlock()

	_, moved := c.sess.Step(1)
	c.emit()
	return moved
}

// Next selects the following reel, wrapping. Playback state is kept.
func (c *Controller) Next() (int, bool) { return c.move(func() (int, bool) { return c.sess.Step(1) }) }

// Prev selects the preceding reel, wrapping. Playback state is kept.
func (c *Controller) Prev() (int, bool) { return c.move(func() (int, bool) { return c.sess.Step(-1) }) }

// Select selects reel i, wrapped to the current list length. Playback
// state is kept.
func (c *Controller) Select(i int) (int, bool) {
	return c.move(func() (int, bool) { return c.sess.Select(i) })
}

// Pick selects reel i from the reel list and stops playback.
func (c *Controller) Pick(i int) (int, bool) {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
	return c.Select(i)
}

func (c *Controller) move(step func() (int, bool)) (int, bool) {
	idx, ok := step()
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	c.restartLocked()
	c.mu.Unlock()
	c.emit()
	return idx, true
}

// restartLocked resets the cycle. Must hold c.mu.
func (c *Controller) restartLocked() {
	c.elapsed = 0
	c.cycleStart = c.now()
}

func (c *Controller) emit() {
	c.mu.Lock()
	fn := c.onTick
	st := c.stateLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// Run drives Tick every TickInterval until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

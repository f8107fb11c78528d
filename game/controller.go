// Package game owns the running snake game and serializes every change to it.
package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hoshinonyaruko/snake-grid/clock"
	"github.com/hoshinonyaruko/snake-grid/input"
	"github.com/hoshinonyaruko/snake-grid/snake"
	"github.com/hoshinonyaruko/snake-grid/structs"
	"github.com/rs/zerolog"
)

// Controller is the single owner of a GameState. Ticks, direction changes and
// resets may come from different goroutines; they are applied one at a time.
type Controller struct {
	mu    sync.Mutex
	state *snake.GameState

	// notifyMu is taken before mu is released so subscribers see snapshots
	// in mutation order.
	notifyMu sync.Mutex
	subsMu   sync.RWMutex
	subs     map[int]func(structs.Snapshot)
	nextSub  int

	sched  clock.Scheduler
	period time.Duration
	log    zerolog.Logger
}

func New(state *snake.GameState, sched clock.Scheduler, period time.Duration, log zerolog.Logger) *Controller {
	return &Controller{
		state:  state,
		subs:   make(map[int]func(structs.Snapshot)),
		sched:  sched,
		period: period,
		log:    log.With().Str("component", "game").Logger(),
	}
}

// Tick advances the game one step.
func (c *Controller) Tick() snake.Outcome {
	c.mu.Lock()
	outcome := c.state.Tick()
	if outcome == snake.Frozen {
		c.mu.Unlock()
		return outcome
	}
	snap := c.state.Snapshot()
	c.publish(snap)

	switch outcome {
	case snake.Ate:
		c.log.Debug().Int("score", snap.Score).Int("length", len(snap.Snake)).
			Interface("food", snap.Food).Msg("food eaten")
	case snake.Collided:
		c.log.Info().Int("score", snap.Score).Msg("game over")
	}
	return outcome
}

// SetDirection queues d for the next tick.
func (c *Controller) SetDirection(d structs.Direction) {
	c.mu.Lock()
	if c.state.GameOver() {
		c.mu.Unlock()
		return
	}
	c.state.SetDirection(d)
	c.publish(c.state.Snapshot())
}

// Reset starts a new game (Play Again).
func (c *Controller) Reset() structs.Snapshot {
	c.mu.Lock()
	c.state.Reset()
	snap := c.state.Snapshot()
	c.publish(snap)
	c.log.Info().Msg("game reset")
	return snap
}

func (c *Controller) Snapshot() structs.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Subscribe registers fn to receive the snapshot after every change. fn runs
// on the mutating goroutine and must not call back into the Controller's
// mutators.
func (c *Controller) Subscribe(fn func(structs.Snapshot)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// publish must be called with mu held; it releases mu.
func (c *Controller) publish(snap structs.Snapshot) {
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.subsMu.RLock()
	fns := make([]func(structs.Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Binding is a running game: the tick timer and the key listener, acquired
// and released together.
type Binding struct {
	closed     atomic.Bool
	once       sync.Once
	cancelTick clock.Cancel
	stopInput  func()
}

// Start begins ticking every period and applies key presses from src. src
// may be nil when directions arrive only through SetDirection.
func (c *Controller) Start(src input.Source) *Binding {
	b := &Binding{stopInput: func() {}}
	if src != nil {
		b.stopInput = src.Listen(func(d structs.Direction) {
			if b.closed.Load() {
				return
			}
			c.SetDirection(d)
		})
	}
	b.cancelTick = c.sched.Every(c.period, func() {
		if b.closed.Load() {
			return
		}
		c.Tick()
	})
	c.log.Info().Dur("period", c.period).Msg("game started")
	return b
}

// Close stops the timer and the key listener. It is idempotent; once it
// returns neither fires again.
func (b *Binding) Close() {
	b.once.Do(func() {
		b.closed.Store(true)
		b.stopInput()
		b.cancelTick()
	})
}

// Package session runs one play session: it applies actions and decay
// through the store, asks the narrator for text and holds what the
// presentation layer shows.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mrwolf/kocicka/internal/models"
	"github.com/mrwolf/kocicka/internal/pet"
	"github.com/mrwolf/kocicka/internal/store"
)

// Fixed texts shown without a remote call.
const (
	WelcomeMessage = "Vítejte!"
	AckMessage     = "Mňau!"
	StorageNotice  = "Stav se nepodařilo uložit, zkus to prosím znovu."
)

var (
	// ErrParentalAuth is returned when the parental PIN does not match.
	ErrParentalAuth = errors.New("incorrect parental PIN")
	// ErrInvalidSettings is returned for settings that cannot be stored.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Narrator produces reaction and story text. It never fails.
type Narrator interface {
	ReactToAction(ctx context.Context, state pet.State, actionLabel string) string
	GenerateStory(ctx context.Context, mood int, style string) string
}

// Timer is the decay timer owned by the session.
type Timer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Display is what the presentation layer renders besides the pet state.
type Display struct {
	Message  string
	Story    string
	HasStory bool
	Notice   string
}

// Controller orchestrates a session. The zero value is not usable; use New.
type Controller struct {
	store    *store.Store
	engine   *pet.Engine
	narrator Narrator
	timer    Timer
	clock    clockwork.Clock

	display *store.Feed[Display]

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time
	msgSeq    uint64
	storySeq  uint64
	// inflight tracks narration of the current session; Start replaces it.
	inflight *sync.WaitGroup
}

// New creates a stopped controller. clock may be nil for the real clock.
func New(st *store.Store, n Narrator, timer Timer, clock clockwork.Clock) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{
		store:    st,
		engine:   pet.NewEngine(clock.Now),
		narrator: n,
		timer:    timer,
		clock:    clock,
		display:  store.NewFeed(Display{Message: WelcomeMessage}),
		inflight: &sync.WaitGroup{},
	}
}

// Start begins the session and its decay timer.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx != nil {
		return nil
	}
	sessCtx, cancel := context.WithCancel(ctx)
	if c.timer != nil {
		if err := c.timer.Start(sessCtx); err != nil {
			cancel()
			return fmt.Errorf("starting decay timer: %w", err)
		}
	}
	c.ctx, c.cancel = sessCtx, cancel
	c.inflight = &sync.WaitGroup{}
	c.startedAt = c.clock.Now()
	log.Println("session: started")
	return nil
}

// Stop ends the session: the timer is stopped and in-flight narration is
// cancelled, its results discarded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.ctx == nil {
		c.mu.Unlock()
		return nil
	}
	c.cancel()
	c.ctx, c.cancel = nil, nil
	inflight := c.inflight
	c.mu.Unlock()

	var err error
	if c.timer != nil {
		err = c.timer.Stop()
	}
	inflight.Wait()
	log.Println("session: stopped")
	return err
}

// Act applies the named action, persists the result and requests a reaction.
// An unknown name is a programming error and leaves everything untouched.
func (c *Controller) Act(ctx context.Context, name pet.Action) (pet.State, error) {
	label := pet.Label(name)
	if label == "" {
		current := c.store.PetState()
		_, _, err := c.engine.Apply(name, current)
		return current, err
	}
	next, err := c.store.Update(ctx, func(s pet.State) pet.State {
		ns, _, _ := c.engine.Apply(name, s)
		return ns
	})
	if err != nil {
		log.Printf("session: %s not saved: %v", name, err)
		c.setNotice(StorageNotice)
		return next, err
	}
	c.setNotice("")

	if !c.store.Settings().AIEnabled {
		c.acknowledge()
		return next, nil
	}

	c.mu.Lock()
	sessCtx, done, ok := c.beginLocked()
	if !ok {
		c.acknowledgeLocked()
		c.mu.Unlock()
		return next, nil
	}
	c.msgSeq++
	seq := c.msgSeq
	c.mu.Unlock()

	go func() {
		defer done()
		text := c.narrator.ReactToAction(sessCtx, next, label)

		c.mu.Lock()
		defer c.mu.Unlock()
		if sessCtx.Err() != nil || seq != c.msgSeq {
			return
		}
		c.publishLocked(func(d *Display) { d.Message = text })
	}()
	return next, nil
}

// RequestStory asks for a story when stories are enabled; otherwise it does nothing.
func (c *Controller) RequestStory(ctx context.Context) {
	if !c.store.Settings().StoriesEnabled {
		return
	}
	mood := c.store.PetState().Mood

	c.mu.Lock()
	sessCtx, done, ok := c.beginLocked()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.storySeq++
	seq := c.storySeq
	c.mu.Unlock()

	go func() {
		defer done()
		text := c.narrator.GenerateStory(sessCtx, mood, models.StyleRegular)

		c.mu.Lock()
		defer c.mu.Unlock()
		if sessCtx.Err() != nil || seq != c.storySeq {
			return
		}
		c.publishLocked(func(d *Display) {
			d.Story = text
			d.HasStory = true
		})
	}()
}

// DismissStory clears the current story, including one still being generated.
func (c *Controller) DismissStory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storySeq++
	c.publishLocked(func(d *Display) {
		d.Story = ""
		d.HasStory = false
	})
}

// VerifyPIN checks pin against the stored parental PIN.
func (c *Controller) VerifyPIN(pin string) error {
	if pin != c.store.Settings().ParentalPIN {
		return ErrParentalAuth
	}
	return nil
}

// UpdateSettings stores s after checking the parental PIN.
// An empty s.ParentalPIN keeps the current PIN.
func (c *Controller) UpdateSettings(ctx context.Context, pin string, s pet.Settings) error {
	if err := c.VerifyPIN(pin); err != nil {
		return err
	}
	if s.PlayTimeLimitMinutes < 0 {
		return fmt.Errorf("%w: play time limit %d", ErrInvalidSettings, s.PlayTimeLimitMinutes)
	}
	if s.ParentalPIN == "" {
		s.ParentalPIN = c.store.Settings().ParentalPIN
	}
	if err := c.store.PutSettings(ctx, s); err != nil {
		c.setNotice(StorageNotice)
		return err
	}
	return nil
}

// PlayTimeRemaining returns how much of the play time limit is left.
// A zero limit means unlimited and reports ok=false.
func (c *Controller) PlayTimeRemaining() (remaining time.Duration, ok bool) {
	limit := c.store.Settings().PlayTimeLimitMinutes
	c.mu.Lock()
	started := c.startedAt
	active := c.ctx != nil
	c.mu.Unlock()
	if limit <= 0 || !active {
		return 0, false
	}
	remaining = time.Duration(limit)*time.Minute - c.clock.Since(started)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// PlayTimeExceeded reports whether the session ran past its limit.
func (c *Controller) PlayTimeExceeded() bool {
	remaining, ok := c.PlayTimeRemaining()
	return ok && remaining == 0
}

// State returns the current pet state.
func (c *Controller) State() pet.State { return c.store.PetState() }

// Settings returns the current settings.
func (c *Controller) Settings() pet.Settings { return c.store.Settings() }

// Message returns the latest narrator or acknowledgement text.
func (c *Controller) Message() string { return c.display.Get().Message }

// Story returns the current story, if any.
func (c *Controller) Story() (string, bool) {
	d := c.display.Get()
	return d.Story, d.HasStory
}

// Display returns a snapshot of the transient presentation state.
func (c *Controller) Display() Display { return c.display.Get() }

// Subscribe follows display changes until ctx is done.
func (c *Controller) Subscribe(ctx context.Context) <-chan Display {
	return c.display.Subscribe(ctx)
}

// SubscribeState follows the pet state until ctx is done.
func (c *Controller) SubscribeState(ctx context.Context) <-chan pet.State {
	return c.store.Subscribe(ctx)
}

// Wait blocks until all in-flight narration has finished.
func (c *Controller) Wait() {
	c.mu.Lock()
	inflight := c.inflight
	c.mu.Unlock()
	inflight.Wait()
}

// beginLocked registers one narration with the live session. ok is false when
// the session is stopped or its parent context is done. Callers hold c.mu.
func (c *Controller) beginLocked() (ctx context.Context, done func(), ok bool) {
	if c.ctx == nil || c.ctx.Err() != nil {
		return nil, nil, false
	}
	inflight := c.inflight
	inflight.Add(1)
	return c.ctx, inflight.Done, true
}

// acknowledge shows the fixed reply and supersedes any pending reaction.
func (c *Controller) acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acknowledgeLocked()
}

func (c *Controller) acknowledgeLocked() {
	c.msgSeq++
	c.publishLocked(func(d *Display) { d.Message = AckMessage })
}

func (c *Controller) setNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.display.Get().Notice == text {
		return
	}
	c.publishLocked(func(d *Display) { d.Notice = text })
}

// publishLocked edits and republishes the display. Callers hold c.mu so
// concurrent edits do not clobber each other.
func (c *Controller) publishLocked(fn func(*Display)) {
	d := c.display.Get()
	fn(&d)
	c.display.Publish(d)
}

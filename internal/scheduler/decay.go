package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mrwolf/kocicka/internal/pet"
)

// DefaultInterval is the real-time period between two decay steps.
const DefaultInterval = 60 * time.Second

// ErrRunning is returned by Start when the timer is already active.
var ErrRunning = errors.New("decay scheduler already running")

// Updater is the serialized state path the scheduler writes through.
type Updater interface {
	Update(ctx context.Context, fn func(pet.State) pet.State) (pet.State, error)
}

// Config holds scheduler configuration
type Config struct {
	Interval time.Duration
	Clock    clockwork.Clock
}

// Decay ages the pet once per interval while started.
// Missed ticks are not replayed: one step per tick actually delivered.
type Decay struct {
	store    Updater
	interval time.Duration
	clock    clockwork.Clock

	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

// NewDecay creates a stopped decay scheduler.
func NewDecay(store Updater, cfg Config) *Decay {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Decay{
		store:    store,
		interval: cfg.Interval,
		clock:    cfg.Clock,
	}
}

// Start registers the decay job and starts the timer.
// The job runs in singleton mode, so a slow write never overlaps the next tick.
func (d *Decay) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		return ErrRunning
	}

	s, err := gocron.NewScheduler(
		gocron.WithClock(d.clock),
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					log.Printf("scheduler: %s (%s) failed: %v", jobName, jobID, err)
				}),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	tickCtx, cancel := context.WithCancel(ctx)
	_, err = s.NewJob(
		gocron.DurationJob(d.interval),
		gocron.NewTask(func() error { return d.Tick(tickCtx) }),
		gocron.WithName("pet-decay"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		s.Shutdown()
		return fmt.Errorf("registering decay job: %w", err)
	}

	s.Start()
	d.scheduler = s
	d.cancel = cancel
	log.Printf("scheduler: decay started (every %s)", d.interval)
	return nil
}

// Stop cancels the running tick, if any, and shuts the timer down. Safe to call twice.
func (d *Decay) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler == nil {
		return nil
	}
	d.cancel()
	err := d.scheduler.Shutdown()
	d.scheduler = nil
	d.cancel = nil
	log.Println("scheduler: decay stopped")
	return err
}

// Running reports whether the timer is active.
func (d *Decay) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scheduler != nil
}

// Tick applies a single decay step.
func (d *Decay) Tick(ctx context.Context) error {
	now := d.clock.Now()
	if _, err := d.store.Update(ctx, func(s pet.State) pet.State { return pet.Decay(s, now) }); err != nil {
		return fmt.Errorf("decay tick: %w", err)
	}
	return nil
}

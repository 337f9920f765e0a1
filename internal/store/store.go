// Package store owns the durable pet state and settings, serializes every
// read-modify-write of them and lets observers follow their latest values.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mrwolf/kocicka/internal/pet"
)

// Repository persists the two singleton records.
// internal/db.DB is the production implementation.
type Repository interface {
	LoadPetState(ctx context.Context) (pet.State, bool, error)
	SavePetState(ctx context.Context, s pet.State) error
	LoadSettings(ctx context.Context) (pet.Settings, bool, error)
	SaveSettings(ctx context.Context, s pet.Settings) error
}

// Store is the StateStore. A single mutex guards every write path so a decay
// tick and a user action can never lose each other's update.
type Store struct {
	repo Repository

	mu       sync.Mutex
	state    *Feed[pet.State]
	settings *Feed[pet.Settings]
}

// Open loads the persisted records, falling back to defaults when none exist yet.
func Open(ctx context.Context, repo Repository, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}

	state, ok, err := repo.LoadPetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pet state: %w", err)
	}
	if !ok {
		state = pet.NewState(now())
	}

	settings, ok, err := repo.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if !ok {
		settings = pet.DefaultSettings()
	}

	return &Store{
		repo:     repo,
		state:    NewFeed(state.Clamped()),
		settings: NewFeed(settings),
	}, nil
}

// PetState returns the latest pet state.
func (s *Store) PetState() pet.State {
	return s.state.Get()
}

// Subscribe follows the pet state until ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan pet.State {
	return s.state.Subscribe(ctx)
}

// Put persists state before returning and then publishes it.
// On failure the previous value stays current.
func (s *Store) Put(ctx context.Context, state pet.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(ctx, state)
}

// Update applies fn to the current state and persists the result as one serialized step.
func (s *Store) Update(ctx context.Context, fn func(pet.State) pet.State) (pet.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state.Get())
	if err := s.putLocked(ctx, next); err != nil {
		return s.state.Get(), err
	}
	return s.state.Get(), nil
}

func (s *Store) putLocked(ctx context.Context, state pet.State) error {
	state = state.Clamped()
	if err := s.repo.SavePetState(ctx, state); err != nil {
		return err
	}
	s.state.Publish(state)
	return nil
}

// Settings returns the latest settings.
func (s *Store) Settings() pet.Settings {
	return s.settings.Get()
}

// SubscribeSettings follows the settings until ctx is done.
func (s *Store) SubscribeSettings(ctx context.Context) <-chan pet.Settings {
	return s.settings.Subscribe(ctx)
}

// PutSettings persists settings before returning and then publishes them.
func (s *Store) PutSettings(ctx context.Context, settings pet.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.settings.Publish(settings)
	return nil
}

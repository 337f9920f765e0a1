package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mrwolf/kocicka/internal/db"
	"github.com/mrwolf/kocicka/internal/pet"
)

// Compile-time checks that both repositories satisfy Repository.
var (
	_ Repository = (*db.DB)(nil)
	_ Repository = (*MemoryRepository)(nil)
)

// ErrInjected is the cause wrapped by MemoryRepository when writes are set to fail.
var ErrInjected = errors.New("injected write failure")

// MemoryRepository keeps the records in memory. Used by tests and ephemeral runs.
type MemoryRepository struct {
	mu         sync.Mutex
	state      *pet.State
	settings   *pet.Settings
	failWrites bool
	saves      int
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// FailWrites makes every later save return a *db.StorageError.
func (m *MemoryRepository) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Saves counts successful pet state saves.
func (m *MemoryRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryRepository) LoadPetState(ctx context.Context) (pet.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return pet.State{}, false, nil
	}
	return *m.state, true, nil
}

func (m *MemoryRepository) SavePetState(ctx context.Context, s pet.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return &db.StorageError{Op: "save pet state", Err: ErrInjected}
	}
	m.state = &s
	m.saves++
	return nil
}

func (m *MemoryRepository) LoadSettings(ctx context.Context) (pet.Settings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return pet.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *MemoryRepository) SaveSettings(ctx context.Context, s pet.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return &db.StorageError{Op: "save settings", Err: ErrInjected}
	}
	m.settings = &s
	return nil
}

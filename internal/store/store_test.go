package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mrwolf/kocicka/internal/db"
	"github.com/mrwolf/kocicka/internal/pet"
)

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func openMemory(t *testing.T) (*Store, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	s, err := Open(context.Background(), repo, fixedClock)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return s, repo
}

func TestOpenDefaults(t *testing.T) {
	s, _ := openMemory(t)

	if got := s.PetState(); got != pet.NewState(testNow) {
		t.Errorf("default state = %+v", got)
	}
	if got := s.Settings(); got != pet.DefaultSettings() {
		t.Errorf("default settings = %+v", got)
	}
}

func TestOpenLoadsPersisted(t *testing.T) {
	repo := NewMemoryRepository()
	stored := pet.State{Hunger: 1, Energy: 2, Hygiene: 3, Mood: 4, Health: 5, LastUpdated: testNow}
	repo.SavePetState(context.Background(), stored)

	s, err := Open(context.Background(), repo, fixedClock)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if got := s.PetState(); got != stored {
		t.Errorf("PetState() = %+v, want %+v", got, stored)
	}
}

func TestSubscribeReplaysLatest(t *testing.T) {
	s, _ := openMemory(t)
	ctx := context.Background()

	next := pet.State{Hunger: 42, Energy: 42, Hygiene: 42, Mood: 42, Health: 100, LastUpdated: testNow}
	if err := s.Put(ctx, next); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// a late subscriber still sees the last value
	subCtx, cancel := context.WithCancel(ctx)
	ch := s.Subscribe(subCtx)
	if got := receive(t, ch); got != next {
		t.Errorf("replayed %+v, want %+v", got, next)
	}

	updated, err := s.Update(ctx, func(st pet.State) pet.State { return pet.Feed(st, testNow) })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := receive(t, ch); got != updated {
		t.Errorf("received %+v, want %+v", got, updated)
	}

	cancel()
	waitClosed(t, ch)

	// subscribing again restarts from the current value
	ch2 := s.Subscribe(ctx)
	if got := receive(t, ch2); got.Hunger != 62 {
		t.Errorf("restarted subscription hunger = %d, want 62", got.Hunger)
	}
}

func TestUpdateFailureKeepsPriorState(t *testing.T) {
	s, repo := openMemory(t)
	before := s.PetState()

	repo.FailWrites(true)
	got, err := s.Update(context.Background(), func(st pet.State) pet.State { return pet.Decay(st, testNow) })

	var storageErr *db.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, ErrInjected) {
		t.Errorf("expected injected cause, got %v", err)
	}
	if got != before || s.PetState() != before {
		t.Errorf("state changed after failed write: %+v", s.PetState())
	}

	repo.FailWrites(false)
	if _, err := s.Update(context.Background(), func(st pet.State) pet.State { return pet.Decay(st, testNow) }); err != nil {
		t.Fatalf("Update after recovery: %v", err)
	}
	if s.PetState().Hunger != 98 {
		t.Errorf("hunger = %d, want 98", s.PetState().Hunger)
	}
}

func TestPutClamps(t *testing.T) {
	s, _ := openMemory(t)
	if err := s.Put(context.Background(), pet.State{Hunger: 400, Energy: -3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := s.PetState(); got.Hunger != 100 || got.Energy != 0 {
		t.Errorf("Put did not clamp: %+v", got)
	}
}

func TestConcurrentActionAndDecay(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, _ := openMemory(t)
		start := pet.State{Hunger: 40, Energy: 50, Hygiene: 50, Mood: 50, Health: 100, LastUpdated: testNow}
		if err := s.Put(context.Background(), start); err != nil {
			t.Fatalf("Put: %v", err)
		}

		var wg sync.WaitGroup
		begin := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-begin
			s.Update(context.Background(), func(st pet.State) pet.State { return pet.Feed(st, testNow) })
		}()
		go func() {
			defer wg.Done()
			<-begin
			s.Update(context.Background(), func(st pet.State) pet.State { return pet.Decay(st, testNow) })
		}()
		close(begin)
		wg.Wait()

		// +20 feed and -2 decay on hunger, -1 decay on the rest
		want := pet.State{Hunger: 58, Energy: 49, Hygiene: 49, Mood: 49, Health: 100, LastUpdated: testNow}
		if got := s.PetState(); got != want {
			t.Fatalf("run %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestConcurrentDecaysAllApplied(t *testing.T) {
	s, repo := openMemory(t)

	const ticks = 30
	var wg sync.WaitGroup
	for i := 0; i < ticks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(context.Background(), func(st pet.State) pet.State { return pet.Decay(st, testNow) })
		}()
	}
	wg.Wait()

	got := s.PetState()
	if got.Hygiene != 100-ticks || got.Hunger != 100-2*ticks {
		t.Errorf("lost updates: %+v", got)
	}
	if repo.Saves() != ticks {
		t.Errorf("saves = %d, want %d", repo.Saves(), ticks)
	}
}

func TestSettingsFeed(t *testing.T) {
	s, repo := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.SubscribeSettings(ctx)
	if got := receive(t, ch); got != pet.DefaultSettings() {
		t.Errorf("initial settings = %+v", got)
	}

	next := pet.Settings{ParentalPIN: "9999", AIEnabled: false, StoriesEnabled: false, PlayTimeLimitMinutes: 10}
	if err := s.PutSettings(ctx, next); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	if got := receive(t, ch); got != next {
		t.Errorf("received %+v, want %+v", got, next)
	}

	repo.FailWrites(true)
	if err := s.PutSettings(ctx, pet.DefaultSettings()); err == nil {
		t.Error("expected error from failing repository")
	}
	if s.Settings() != next {
		t.Errorf("settings changed after failed write")
	}
}

func TestStoreWithSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pet.db")

	database, err := db.Open(db.DriverPureGo, path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	s, err := Open(context.Background(), database, fixedClock)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if _, err := s.Update(context.Background(), func(st pet.State) pet.State { return pet.Play(st, testNow) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	database.Close()

	// reopen and observe the persisted value
	database, err = db.Open(db.DriverPureGo, path)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer database.Close()
	s, err = Open(context.Background(), database, fixedClock)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	if got := s.PetState(); got.Energy != 85 || got.Mood != 100 {
		t.Errorf("reloaded %+v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

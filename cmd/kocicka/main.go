package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrwolf/kocicka/internal/config"
	"github.com/mrwolf/kocicka/internal/db"
	"github.com/mrwolf/kocicka/internal/narrator"
	"github.com/mrwolf/kocicka/internal/scheduler"
	"github.com/mrwolf/kocicka/internal/session"
	"github.com/mrwolf/kocicka/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, database, time.Now)
	if err != nil {
		log.Fatalf("Failed to load pet: %v", err)
	}

	transport := narrator.NewHTTPTransport(cfg.BackendURL, cfg.ClientToken, &http.Client{})
	n := narrator.New(transport, cfg.NarrationTimeout)
	decay := scheduler.NewDecay(st, scheduler.Config{Interval: cfg.DecayInterval})

	ctrl := session.New(st, n, decay, nil)
	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	if err := newConsole(ctrl, os.Stdout).run(ctx, os.Stdin); err != nil {
		log.Printf("Input error: %v", err)
	}

	if err := ctrl.Stop(); err != nil {
		log.Printf("Session stop error: %v", err)
	}
	if err := database.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
}

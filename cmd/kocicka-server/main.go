package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrwolf/kocicka/internal/api"
	"github.com/mrwolf/kocicka/internal/config"
	"github.com/mrwolf/kocicka/internal/llm"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting kocicka-server...")

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gen, closer, err := newGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to create %s client: %v", cfg.Provider, err)
	}
	defer closer.Close()

	router := api.NewRouter(cfg, gen)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s (provider %s)", addr, gen.Name())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newGenerator(cfg *config.Server) (llm.Generator, io.Closer, error) {
	switch cfg.Provider {
	case llm.ProviderOllama:
		client := llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel)

		log.Println("Validating Ollama connection...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.HealthCheck(ctx); err != nil {
			log.Printf("WARNING: Ollama health check failed: %v", err)
			log.Println("Server will start but replies will be fallbacks")
		} else {
			log.Printf("Ollama connected: %s (model %s)", cfg.OllamaURL, cfg.OllamaModel)
		}
		return client, nopCloser{}, nil
	default:
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Gemini model: %s", cfg.GeminiModel)
		return client, client, nil
	}
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrwolf/kocicka/internal/config"
	"github.com/mrwolf/kocicka/internal/llm"
	"github.com/mrwolf/kocicka/internal/models"
	"github.com/mrwolf/kocicka/internal/prompts"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Banner is the plain-text body of GET /
const Banner = "AI Kočička Backend (Powered by %s)"

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

type Handlers struct {
	cfg *config.Server
	gen llm.Generator
}

func NewHandlers(cfg *config.Server, gen llm.Generator) *Handlers {
	return &Handlers{cfg: cfg, gen: gen}
}

// Root handles GET /
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, Banner, providerTitle(h.gen.Name()))
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, models.HealthResponse{
		Status:   "ok",
		Provider: h.gen.Name(),
		Version:  Version,
	})
}

// CatRespond handles POST /cat/respond
func (h *Handlers) CatRespond(w http.ResponseWriter, r *http.Request) {
	var req models.CatStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", models.CodeInvalidBody)
		return
	}

	text, err := h.generate(r.Context(), "cat", prompts.CatReaction(req))
	writeJSON(w, models.CatResponse{
		Message: prompts.Reply(text, err, prompts.ErrorMessage, prompts.EmptyMessage),
	})
}

// StoryGenerate handles POST /story/generate
func (h *Handlers) StoryGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", models.CodeInvalidBody)
		return
	}

	text, err := h.generate(r.Context(), "story", prompts.Story(req))
	writeJSON(w, models.StoryResponse{
		StoryText: prompts.Reply(text, err, prompts.ErrorStory, prompts.EmptyStory),
	})
}

// generate runs one provider call under the configured timeout. Failures are
// logged here and turned into fallback text by the caller.
func (h *Handlers) generate(ctx context.Context, kind, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.GenerationTimeout)
	defer cancel()

	id := middleware.GetReqID(ctx)
	text, err := h.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("api: %s generation %s failed: %v", kind, id, err)
		return "", err
	}
	log.Printf("api: %s generation %s ok (%d bytes)", kind, id, len(text))
	return text, nil
}

func providerTitle(name string) string {
	switch name {
	case llm.ProviderGemini:
		return "Gemini"
	case llm.ProviderOllama:
		return "Ollama"
	}
	return name
}

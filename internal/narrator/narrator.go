// Package narrator talks to the narration backend. Every call ends in a
// string: failures are kept as a Result for logging and replaced by a fixed
// fallback text one level up.
package narrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mrwolf/kocicka/internal/models"
	"github.com/mrwolf/kocicka/internal/pet"
)

// Fallback texts used whenever the backend cannot be reached or answers nothing useful.
const (
	FallbackMessage = "Mňau!"
	FallbackStory   = "Byl jednou jeden..."
)

// DefaultTimeout bounds a single narration call.
const DefaultTimeout = 10 * time.Second

// ErrEmptyText is the failure reason for a blank reply.
var ErrEmptyText = errors.New("empty narration text")

// Result is the outcome of one remote call: either Text or a failure reason.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the call produced usable text.
func (r Result) OK() bool {
	return r.Err == nil && strings.TrimSpace(r.Text) != ""
}

// Transport performs the two remote calls.
// Implement this to connect to the narration backend.
type Transport interface {
	RespondToStatus(ctx context.Context, req models.CatStatusRequest) Result
	GenerateStory(ctx context.Context, req models.StoryRequest) Result
}

// Narrator produces reactions and stories. It knows nothing about parental settings.
type Narrator struct {
	transport Transport
	timeout   time.Duration
}

// New creates a narrator. A non-positive timeout selects DefaultTimeout.
func New(t Transport, timeout time.Duration) *Narrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Narrator{transport: t, timeout: timeout}
}

// React asks for an in-character reaction to the action that produced state.
func (n *Narrator) React(ctx context.Context, state pet.State, actionLabel string) Result {
	req := models.CatStatusRequest{
		Hunger:     state.Hunger,
		Energy:     state.Energy,
		Hygiene:    state.Hygiene,
		Mood:       state.Mood,
		Health:     state.Health,
		LastAction: actionLabel,
	}
	return n.call(ctx, func(ctx context.Context) Result {
		return n.transport.RespondToStatus(ctx, req)
	})
}

// Story asks for a short tale themed by mood.
func (n *Narrator) Story(ctx context.Context, mood int, style string) Result {
	req := models.StoryRequest{Mood: mood, Style: style}
	return n.call(ctx, func(ctx context.Context) Result {
		return n.transport.GenerateStory(ctx, req)
	})
}

// ReactToAction is React with the fallback applied. It never returns "".
func (n *Narrator) ReactToAction(ctx context.Context, state pet.State, actionLabel string) string {
	return orFallback(n.React(ctx, state, actionLabel), FallbackMessage, "reaction")
}

// GenerateStory is Story with the fallback applied. It never returns "".
func (n *Narrator) GenerateStory(ctx context.Context, mood int, style string) string {
	return orFallback(n.Story(ctx, mood, style), FallbackStory, "story")
}

// call runs fn under the narration timeout. A transport that ignores its
// context is abandoned once the deadline passes.
func (n *Narrator) call(ctx context.Context, fn func(context.Context) Result) Result {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case r := <-done:
		if r.Err == nil && strings.TrimSpace(r.Text) == "" {
			r.Err = ErrEmptyText
		}
		r.Text = strings.TrimSpace(r.Text)
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

func orFallback(r Result, fallback, kind string) string {
	if r.OK() {
		return r.Text
	}
	if !errors.Is(r.Err, context.Canceled) {
		log.Printf("narrator: %s failed, using fallback: %v", kind, r.Err)
	}
	return fallback
}

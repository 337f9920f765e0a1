package pet

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Action is a discrete user-triggered transition.
type Action string

const (
	ActionFeed  Action = "feed"
	ActionPlay  Action = "play"
	ActionSleep Action = "sleep"
	ActionWash  Action = "wash"
	ActionPet   Action = "pet"
)

// Actions lists every valid action in display order.
var Actions = []Action{ActionFeed, ActionPlay, ActionSleep, ActionWash, ActionPet}

// Per-action deltas
const (
	FeedHunger  = 20
	PlayMood    = 20
	PlayEnergy  = -15
	SleepEnergy = 30
	PetMood     = 10
)

// Per-tick decay
const (
	DecayHunger  = -2
	DecayEnergy  = -1
	DecayHygiene = -1
	DecayMood    = -1
)

// Transition maps a state to its successor at the given wall-clock time.
type Transition func(s State, now time.Time) State

// Feed raises hunger.
func Feed(s State, now time.Time) State {
	s.Hunger += FeedHunger
	return stamp(s, now)
}

// Play raises mood at the cost of energy.
func Play(s State, now time.Time) State {
	s.Mood += PlayMood
	s.Energy += PlayEnergy
	return stamp(s, now)
}

// Sleep restores energy.
func Sleep(s State, now time.Time) State {
	s.Energy += SleepEnergy
	return stamp(s, now)
}

// Wash sets hygiene to the maximum; it is not additive.
func Wash(s State, now time.Time) State {
	s.Hygiene = MaxStat
	return stamp(s, now)
}

// Pet raises mood a little.
func Pet(s State, now time.Time) State {
	s.Mood += PetMood
	return stamp(s, now)
}

// Decay is one time step of neglect. Health is left alone.
func Decay(s State, now time.Time) State {
	s.Hunger += DecayHunger
	s.Energy += DecayEnergy
	s.Hygiene += DecayHygiene
	s.Mood += DecayMood
	return stamp(s, now)
}

func stamp(s State, now time.Time) State {
	s = s.Clamped()
	s.LastUpdated = now
	return s
}

type actionSpec struct {
	transition Transition
	label      string
}

// Labels are passed to the narration prompt verbatim.
var actionSpecs = map[Action]actionSpec{
	ActionFeed:  {Feed, "nakrmení"},
	ActionPlay:  {Play, "hraní"},
	ActionSleep: {Sleep, "spaní"},
	ActionWash:  {Wash, "mytí"},
	ActionPet:   {Pet, "pohlazení"},
}

// Label returns the prompt label of a, or "" if a is not a known action.
func Label(a Action) string {
	return actionSpecs[a].label
}

// InvalidActionError reports an action name outside the fixed set.
type InvalidActionError struct {
	Name       string
	Suggestion Action // closest known action, empty if none is close
}

func (e *InvalidActionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid action %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("invalid action %q", e.Name)
}

// Engine applies named actions. It has no side effects.
type Engine struct {
	clock func() time.Time
}

// NewEngine creates an engine stamping transitions with now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{clock: now}
}

// Apply runs the named action against current and returns the new state and its label.
func (e *Engine) Apply(name Action, current State) (State, string, error) {
	spec, ok := actionSpecs[name]
	if !ok {
		return current, "", &InvalidActionError{Name: string(name), Suggestion: closest(string(name))}
	}
	return spec.transition(current, e.clock()), spec.label, nil
}

// ParseAction normalizes free-form input into an Action.
func ParseAction(input string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	if _, ok := actionSpecs[Action(name)]; ok {
		return Action(name), nil
	}
	return "", &InvalidActionError{Name: input, Suggestion: closest(name)}
}

// maxSuggestDistance bounds how far a typo may be from a known action name.
const maxSuggestDistance = 2

func closest(name string) Action {
	if name == "" {
		return ""
	}
	var best Action
	bestDist := maxSuggestDistance + 1
	for _, a := range Actions {
		if d := levenshtein.ComputeDistance(name, string(a)); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

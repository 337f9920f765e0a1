package pet

import "time"

// Stat bounds. Every stat of a State lives in [MinStat, MaxStat].
const (
	MinStat = 0
	MaxStat = 100
)

// State is the pet's condition. Treat it as a value: transitions return a new State.
type State struct {
	Hunger      int       `json:"hunger"`
	Energy      int       `json:"energy"`
	Hygiene     int       `json:"hygiene"`
	Mood        int       `json:"mood"`
	Health      int       `json:"health"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewState returns the first-access state: every stat full.
func NewState(now time.Time) State {
	return State{
		Hunger:      MaxStat,
		Energy:      MaxStat,
		Hygiene:     MaxStat,
		Mood:        MaxStat,
		Health:      MaxStat,
		LastUpdated: now,
	}
}

// Clamped returns s with every stat forced into [MinStat, MaxStat].
func (s State) Clamped() State {
	s.Hunger = clamp(s.Hunger)
	s.Energy = clamp(s.Energy)
	s.Hygiene = clamp(s.Hygiene)
	s.Mood = clamp(s.Mood)
	s.Health = clamp(s.Health)
	return s
}

func clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// DefaultPIN is the parental PIN of a fresh installation.
const DefaultPIN = "0000"

// Settings holds the parental controls.
type Settings struct {
	ParentalPIN          string `json:"parentPin"`
	AIEnabled            bool   `json:"aiEnabled"`
	StoriesEnabled       bool   `json:"storiesEnabled"`
	PlayTimeLimitMinutes int    `json:"playTimeLimitMinutes"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		ParentalPIN:          DefaultPIN,
		AIEnabled:            true,
		StoriesEnabled:       true,
		PlayTimeLimitMinutes: 30,
	}
}

// MoodFace picks the face shown for a mood value.
func MoodFace(mood int) string {
	switch {
	case mood > 80:
		return "😺"
	case mood > 60:
		return "🐱"
	case mood > 40:
		return "😿"
	default:
		return "😾"
	}
}

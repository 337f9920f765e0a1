package pet

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func TestActionsStayInBounds(t *testing.T) {
	values := []int{0, 1, 5, 14, 15, 50, 70, 80, 85, 95, 99, 100}

	// changed lists the only fields each action may touch
	changed := map[Action][]string{
		ActionFeed:  {"hunger"},
		ActionPlay:  {"mood", "energy"},
		ActionSleep: {"energy"},
		ActionWash:  {"hygiene"},
		ActionPet:   {"mood"},
	}

	engine := NewEngine(fixedClock)
	for _, action := range Actions {
		for _, v := range values {
			before := State{Hunger: v, Energy: v, Hygiene: v, Mood: v, Health: v}
			after, label, err := engine.Apply(action, before)
			if err != nil {
				t.Fatalf("Apply(%s): %v", action, err)
			}
			if label == "" {
				t.Errorf("Apply(%s) returned empty label", action)
			}

			fields := map[string][2]int{
				"hunger":  {before.Hunger, after.Hunger},
				"energy":  {before.Energy, after.Energy},
				"hygiene": {before.Hygiene, after.Hygiene},
				"mood":    {before.Mood, after.Mood},
				"health":  {before.Health, after.Health},
			}
			allowed := map[string]bool{}
			for _, f := range changed[action] {
				allowed[f] = true
			}
			for name, pair := range fields {
				if pair[1] < MinStat || pair[1] > MaxStat {
					t.Errorf("%s from %d: %s = %d out of bounds", action, v, name, pair[1])
				}
				if !allowed[name] && pair[0] != pair[1] {
					t.Errorf("%s from %d changed %s: %d -> %d", action, v, name, pair[0], pair[1])
				}
			}
			if !after.LastUpdated.Equal(testNow) {
				t.Errorf("%s did not stamp LastUpdated: %v", action, after.LastUpdated)
			}
		}
	}
}

func TestActionDeltas(t *testing.T) {
	start := State{Hunger: 50, Energy: 50, Hygiene: 50, Mood: 50, Health: 50}

	tests := []struct {
		action Action
		want   State
		label  string
	}{
		{ActionFeed, State{Hunger: 70, Energy: 50, Hygiene: 50, Mood: 50, Health: 50}, "nakrmení"},
		{ActionPlay, State{Hunger: 50, Energy: 35, Hygiene: 50, Mood: 70, Health: 50}, "hraní"},
		{ActionSleep, State{Hunger: 50, Energy: 80, Hygiene: 50, Mood: 50, Health: 50}, "spaní"},
		{ActionWash, State{Hunger: 50, Energy: 50, Hygiene: 100, Mood: 50, Health: 50}, "mytí"},
		{ActionPet, State{Hunger: 50, Energy: 50, Hygiene: 50, Mood: 60, Health: 50}, "pohlazení"},
	}

	engine := NewEngine(fixedClock)
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got, label, err := engine.Apply(tt.action, start)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			tt.want.LastUpdated = testNow
			if got != tt.want {
				t.Errorf("Apply(%s) = %+v, want %+v", tt.action, got, tt.want)
			}
			if label != tt.label {
				t.Errorf("label = %q, want %q", label, tt.label)
			}
		})
	}
}

func TestWashAlwaysSetsFullHygiene(t *testing.T) {
	for _, v := range []int{0, 1, 42, 99, 100} {
		got := Wash(State{Hygiene: v}, testNow)
		if got.Hygiene != MaxStat {
			t.Errorf("Wash from %d = %d, want %d", v, got.Hygiene, MaxStat)
		}
		if again := Wash(got, testNow); again != got {
			t.Errorf("Wash is not idempotent: %+v -> %+v", got, again)
		}
	}
}

func TestDecayNeverBelowZero(t *testing.T) {
	s := NewState(testNow)
	for i := 0; i < 200; i++ {
		s = Decay(s, testNow)
		if s.Hunger < 0 || s.Energy < 0 || s.Hygiene < 0 || s.Mood < 0 {
			t.Fatalf("tick %d went negative: %+v", i, s)
		}
	}
	if s.Hunger != 0 || s.Energy != 0 || s.Hygiene != 0 || s.Mood != 0 {
		t.Errorf("expected drained stats after 200 ticks, got %+v", s)
	}
	if s.Health != MaxStat {
		t.Errorf("decay touched health: %d", s.Health)
	}
}

func TestDecayAtZeroIsNoop(t *testing.T) {
	zero := State{LastUpdated: testNow}
	got := Decay(zero, testNow)
	if got != zero {
		t.Errorf("Decay(zero) = %+v, want %+v", got, zero)
	}
}

func TestDecayDeltas(t *testing.T) {
	got := Decay(State{Hunger: 50, Energy: 50, Hygiene: 50, Mood: 50, Health: 50}, testNow)
	want := State{Hunger: 48, Energy: 49, Hygiene: 49, Mood: 49, Health: 50, LastUpdated: testNow}
	if got != want {
		t.Errorf("Decay = %+v, want %+v", got, want)
	}
}

func TestClampOrderSensitivity(t *testing.T) {
	start := State{Hunger: 95, Energy: 50, Hygiene: 50, Mood: 50, Health: 50}

	// feed -> decay -> feed: 95 -> 100 -> 98 -> 100
	a := Feed(Decay(Feed(start, testNow), testNow), testNow)
	// feed -> feed -> decay: 95 -> 100 -> 100 -> 98
	b := Decay(Feed(Feed(start, testNow), testNow), testNow)

	if a.Hunger != 100 {
		t.Errorf("feed,decay,feed hunger = %d, want 100", a.Hunger)
	}
	if b.Hunger != 98 {
		t.Errorf("feed,feed,decay hunger = %d, want 98", b.Hunger)
	}

	// away from the boundary the two orders agree
	mid := State{Hunger: 50}
	if x, y := Decay(Feed(mid, testNow), testNow), Feed(Decay(mid, testNow), testNow); x.Hunger != 68 || y.Hunger != 68 {
		t.Errorf("mid-range orders = %d, %d, want 68, 68", x.Hunger, y.Hunger)
	}
}

func TestApplyInvalidAction(t *testing.T) {
	engine := NewEngine(fixedClock)
	start := NewState(testNow)

	got, label, err := engine.Apply("dance", start)
	var invalid *InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidActionError, got %v", err)
	}
	if got != start || label != "" {
		t.Errorf("invalid action changed state or label: %+v %q", got, label)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input      string
		want       Action
		suggestion Action
	}{
		{"feed", ActionFeed, ""},
		{"  FEED ", ActionFeed, ""},
		{"Wash", ActionWash, ""},
		{"fed", "", ActionFeed},
		{"slep", "", ActionSleep},
		{"xyzzy", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if tt.want != "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var invalid *InvalidActionError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidActionError, got %v", err)
			}
			if invalid.Suggestion != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", invalid.Suggestion, tt.suggestion)
			}
		})
	}
}

func TestMoodFace(t *testing.T) {
	tests := []struct {
		mood int
		want string
	}{
		{100, "😺"},
		{81, "😺"},
		{80, "🐱"},
		{61, "🐱"},
		{60, "😿"},
		{41, "😿"},
		{40, "😾"},
		{0, "😾"},
	}
	for _, tt := range tests {
		if got := MoodFace(tt.mood); got != tt.want {
			t.Errorf("MoodFace(%d) = %q, want %q", tt.mood, got, tt.want)
		}
	}
}

func TestNewStateAndClamp(t *testing.T) {
	s := NewState(testNow)
	if s.Hunger != 100 || s.Energy != 100 || s.Hygiene != 100 || s.Mood != 100 || s.Health != 100 {
		t.Errorf("NewState not full: %+v", s)
	}

	c := State{Hunger: -5, Energy: 150, Hygiene: 50, Mood: 101, Health: -1}.Clamped()
	if c.Hunger != 0 || c.Energy != 100 || c.Hygiene != 50 || c.Mood != 100 || c.Health != 0 {
		t.Errorf("Clamped = %+v", c)
	}
}

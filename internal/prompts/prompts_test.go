package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/mrwolf/kocicka/internal/models"
)

func TestCatReaction(t *testing.T) {
	p := CatReaction(models.CatStatusRequest{Hunger: 70, Energy: 45, Mood: 33, LastAction: "nakrmení"})

	for _, want := range []string{
		"Dítě právě udělalo: nakrmení.",
		"Hlad=70/100",
		"Energie=45/100",
		"Nálada=33/100",
		"max 2 věty",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestStoryPromptDependsOnMood(t *testing.T) {
	happy := Story(models.StoryRequest{Mood: 90, Style: models.StyleRegular})
	sad := Story(models.StoryRequest{Mood: 10, Style: models.StyleRegular})

	if happy == sad {
		t.Fatal("mood 90 and mood 10 produced the same prompt")
	}
	if !strings.Contains(happy, "Nálada kočky je: 90/100.") {
		t.Errorf("happy prompt missing mood:\n%s", happy)
	}
	if !strings.Contains(sad, "Nálada kočky je: 10/100.") {
		t.Errorf("sad prompt missing mood:\n%s", sad)
	}
}

func TestStoryDefaultStyle(t *testing.T) {
	p := Story(models.StoryRequest{Mood: 50})
	if !strings.Contains(p, "Styl: regular.") {
		t.Errorf("expected default style:\n%s", p)
	}
}

func TestReply(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{"success", "  Předu!  ", nil, "Předu!"},
		{"failure", "ignored", errors.New("quota"), ErrorMessage},
		{"empty", "", nil, EmptyMessage},
		{"blank", " \n\t", nil, EmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reply(tt.text, tt.err, ErrorMessage, EmptyMessage); got != tt.want {
				t.Errorf("Reply() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Package prompts builds the generation prompts sent by the relay and holds
// the texts it answers with when generation fails.
package prompts

import (
	"fmt"
	"strings"

	"github.com/mrwolf/kocicka/internal/models"
)

// Returned with HTTP 200 when the provider call fails.
const (
	ErrorMessage = "Mňau! (Něco se pokazilo, ale pořád tě mám ráda!)"
	ErrorStory   = "Byla jednou jedna kočička, která tě měla moc ráda. A to je konec pohádky."
)

// Returned when the provider answers with no text.
const (
	EmptyMessage = "Mňau! Máš mě rád?"
	EmptyStory   = "Byla jednou jedna kočička..."
)

// CatReaction builds the in-character reaction prompt for a status report.
func CatReaction(req models.CatStatusRequest) string {
	var b strings.Builder
	b.WriteString("Jsi milá a hravá kočička. Mluvíš k malému dítěti česky. ")
	fmt.Fprintf(&b, "Dítě právě udělalo: %s. ", req.LastAction)
	fmt.Fprintf(&b, "Tvůj aktuální stav: Hlad=%d/100, Energie=%d/100, Nálada=%d/100. ", req.Hunger, req.Energy, req.Mood)
	b.WriteString("Reaguj krátce (max 2 věty). ")
	b.WriteString("Buď veselá, milá a dětsky bezpečná. ")
	b.WriteString("Odpovídej v první osobě jako kočka.")
	return b.String()
}

// Story builds the bedtime story prompt. The mood steers the tone.
func Story(req models.StoryRequest) string {
	style := req.Style
	if style == "" {
		style = models.StyleRegular
	}

	var b strings.Builder
	b.WriteString("Vypravuj krátkou (cca 100-150 slov) a milou pohádku pro malé dítě česky. ")
	b.WriteString("Pohádka je o kočičce. ")
	fmt.Fprintf(&b, "Nálada kočky je: %d/100. ", req.Mood)
	b.WriteString("Pokud je nálada vysoká, pohádka je veselá. ")
	b.WriteString("Pokud nižší, kočička v pohádce hledá útěchu nebo kamaráda. ")
	fmt.Fprintf(&b, "Styl: %s. ", style)
	b.WriteString("Buď laskavý a používej jednoduchý jazyk.")
	return b.String()
}

// Reply picks the text to send back for a generation outcome.
func Reply(text string, err error, onError, onEmpty string) string {
	if err != nil {
		return onError
	}
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return onEmpty
}

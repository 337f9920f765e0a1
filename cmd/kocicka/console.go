package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/mrwolf/kocicka/internal/pet"
	"github.com/mrwolf/kocicka/internal/session"
)

const helpText = `Příkazy:
  feed | play | sleep | wash | pet   péče o kočičku
  story                              vyprávěj pohádku
  dismiss                            zavři pohádku
  status                             ukaž stav
  parent <PIN> show                  ukaž nastavení
  parent <PIN> ai on|off             zapni/vypni AI odpovědi
  parent <PIN> stories on|off        zapni/vypni pohádky
  parent <PIN> limit <minuty>        limit hraní (0 = bez limitu)
  parent <PIN> pin <nový PIN>        změň PIN
  help                               tato nápověda
  quit                               konec`

// console is a line-oriented front end for one session.
type console struct {
	ctrl *session.Controller

	mu  sync.Mutex
	out io.Writer
}

func newConsole(ctrl *session.Controller, out io.Writer) *console {
	return &console{ctrl: ctrl, out: out}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// run reads commands from in until EOF, quit or ctx is done.
func (c *console) run(ctx context.Context, in io.Reader) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.watch(watchCtx)

	c.printf("%s\n", helpText)
	c.printStatus()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if c.handle(ctx, line) {
				return nil
			}
		}
	}
}

// watch prints narration and story text as it arrives.
func (c *console) watch(ctx context.Context) {
	var last session.Display
	first := true
	for d := range c.ctrl.Subscribe(ctx) {
		if first {
			last, first = d, false
			c.printf("🐱 %s\n", d.Message)
			continue
		}
		if d.Message != last.Message {
			c.printf("🐱 %s\n", d.Message)
		}
		if d.HasStory && d.Story != last.Story {
			c.printf("📖 %s\n(dismiss zavře pohádku)\n", d.Story)
		}
		if d.Notice != "" && d.Notice != last.Notice {
			c.printf("⚠️  %s\n", d.Notice)
		}
		last = d
	}
}

// handle executes one command line and reports whether the session should end.
func (c *console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "quit", "exit", "konec":
		return true
	case "help", "?":
		c.printf("%s\n", helpText)
	case "status":
		c.printStatus()
	case "story":
		if !c.ctrl.Settings().StoriesEnabled {
			c.printf("Pohádky jsou vypnuté.\n")
			return false
		}
		c.printf("Vymýšlím pohádku...\n")
		c.ctrl.RequestStory(ctx)
	case "dismiss":
		c.ctrl.DismissStory()
	case "parent":
		c.parent(ctx, fields[1:])
	default:
		action, err := pet.ParseAction(cmd)
		if err != nil {
			var invalid *pet.InvalidActionError
			if errors.As(err, &invalid) && invalid.Suggestion != "" {
				c.printf("Neznámý příkaz %q. Myslel jsi %q?\n", cmd, invalid.Suggestion)
			} else {
				c.printf("Neznámý příkaz %q. Napiš help.\n", cmd)
			}
			return false
		}
		if _, err := c.ctrl.Act(ctx, action); err == nil {
			c.printStatus()
		}
	}

	if c.ctrl.PlayTimeExceeded() {
		c.printf("⏰ Čas na hraní vypršel. Kočička jde spinkat!\n")
	}
	return false
}

func (c *console) parent(ctx context.Context, args []string) {
	if len(args) < 2 {
		c.printf("Použití: parent <PIN> show|ai|stories|limit|pin ...\n")
		return
	}
	pin, sub := args[0], strings.ToLower(args[1])
	if err := c.ctrl.VerifyPIN(pin); err != nil {
		c.printf("Špatný PIN.\n")
		return
	}

	s := c.ctrl.Settings()
	if sub == "show" {
		c.printSettings(s)
		return
	}
	if len(args) < 3 {
		c.printf("Chybí hodnota pro %s.\n", sub)
		return
	}
	value := args[2]

	switch sub {
	case "ai", "stories":
		on, ok := parseSwitch(value)
		if !ok {
			c.printf("Použij on nebo off.\n")
			return
		}
		if sub == "ai" {
			s.AIEnabled = on
		} else {
			s.StoriesEnabled = on
		}
	case "limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			c.printf("Limit musí být číslo.\n")
			return
		}
		s.PlayTimeLimitMinutes = n
	case "pin":
		s.ParentalPIN = value
	default:
		c.printf("Neznámé nastavení %q.\n", sub)
		return
	}

	if err := c.ctrl.UpdateSettings(ctx, pin, s); err != nil {
		c.printf("Nastavení se nepodařilo uložit: %v\n", err)
		return
	}
	c.printSettings(c.ctrl.Settings())
}

func parseSwitch(v string) (on, ok bool) {
	switch strings.ToLower(v) {
	case "on", "zap", "ano", "1", "true":
		return true, true
	case "off", "vyp", "ne", "0", "false":
		return false, true
	}
	return false, false
}

func (c *console) printStatus() {
	s := c.ctrl.State()
	c.printf("%s  Hlad %3d  Energie %3d  Čistota %3d  Nálada %3d  Zdraví %3d\n",
		pet.MoodFace(s.Mood), s.Hunger, s.Energy, s.Hygiene, s.Mood, s.Health)
	if remaining, ok := c.ctrl.PlayTimeRemaining(); ok {
		c.printf("Zbývá času: %d min\n", int(remaining.Minutes()))
	}
}

func (c *console) printSettings(s pet.Settings) {
	c.printf("AI odpovědi: %s, pohádky: %s, limit: %d min\n",
		onOff(s.AIEnabled), onOff(s.StoriesEnabled), s.PlayTimeLimitMinutes)
}

func onOff(b bool) string {
	if b {
		return "zapnuto"
	}
	return "vypnuto"
}

// Package arbiter is the neural layer of the director: it renders the
// shortlist into a prompt, invokes the model once, and parses a
// numeric selection out of whatever comes back. Every failure mode
// collapses into an undecided Outcome; nothing here ever reaches the
// caller as an error.
package arbiter

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sovereign.ai/internal/model"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/stats"
	"sovereign.ai/internal/sim/tuning"
)

// Outcome is the arbiter's result type. Decided() is false when the
// model was unreachable, unparseable or out of range; Reason says
// which, for logs and metrics.
type Outcome struct {
	Event  *catalogs.EventDef
	Reason string
}

func (o Outcome) Decided() bool { return o.Event != nil }

type Arbiter struct {
	client model.Client
	cfg    tuning.Arbiter
	log    *log.Logger
}

func New(client model.Client, cfg tuning.Arbiter, logger *log.Logger) *Arbiter {
	return &Arbiter{client: client, cfg: cfg, log: logger}
}

// Select asks the model to pick one event from the shortlist.
func (a *Arbiter) Select(ctx context.Context, shortlist []catalogs.EventDef, snap snapshot.State) Outcome {
	if a.client == nil {
		return Outcome{Reason: "no model"}
	}
	if len(shortlist) == 0 {
		return Outcome{Reason: "empty shortlist"}
	}

	resp, err := a.client.Complete(ctx, model.Request{
		Prompt:      BuildPrompt(shortlist, snap),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Stop:        a.cfg.Stop,
	})
	if err != nil {
		if a.log != nil {
			a.log.Printf("arbiter: model call failed: %v", err)
		}
		return Outcome{Reason: "model error"}
	}

	n, ok := ExtractChoice(resp.Text)
	if !ok {
		return Outcome{Reason: "unparseable response"}
	}
	if n < 1 || n > len(shortlist) {
		return Outcome{Reason: fmt.Sprintf("choice %d out of range", n)}
	}
	ev := shortlist[n-1]
	return Outcome{Event: &ev}
}

// BuildPrompt renders the decision prompt: reputation, stats,
// momentum, then the shortlist numbered from 1.
func BuildPrompt(shortlist []catalogs.EventDef, snap snapshot.State) string {
	var b strings.Builder

	b.WriteString("You are the narrative director of a kingdom simulation.\n")
	fmt.Fprintf(&b, "Year %d of the reign.\n\n", snap.Turn)

	if len(snap.ReputationTags) > 0 {
		fmt.Fprintf(&b, "The sovereign's reputation: %s.\n", strings.Join(snap.ReputationTags, ", "))
	}
	b.WriteString("The realm: ")
	b.WriteString(statSummary(snap.Stats))
	b.WriteString(".\n")
	if desc := momentumSummary(snap.Momentum); desc != "" {
		fmt.Fprintf(&b, "Recent direction: %s.\n", desc)
	}
	if len(snap.DecisionMemory) > 0 {
		b.WriteString("Recent decisions:\n")
		for _, d := range snap.DecisionMemory {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	b.WriteString("\nCandidate events:\n")
	for i, ev := range shortlist {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, ev.Theme, ev.Title)
	}

	b.WriteString("\nPick the event that makes the most dramatic sense now.\n")
	b.WriteString("Answer with a short reasoning, then a final line of the form:\n")
	b.WriteString("Choice: #<number>\n")
	return b.String()
}

func statSummary(v stats.Vector) string {
	parts := make([]string, 0, len(v))
	for _, name := range v.Names() {
		parts = append(parts, fmt.Sprintf("%s %d", name, v[name]))
	}
	return strings.Join(parts, ", ")
}

func momentumSummary(m map[string]stats.Trend) string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var parts []string
	for _, name := range names {
		if t := m[name]; t != stats.Stable {
			parts = append(parts, fmt.Sprintf("%s %s", name, t))
		}
	}
	if len(parts) == 0 {
		return "all steady"
	}
	return strings.Join(parts, ", ")
}

var (
	choiceRe     = regexp.MustCompile(`(?i)choice:\s*#?\s*(\d+)`)
	standaloneRe = regexp.MustCompile(`\b(\d+)\b`)
)

// ExtractChoice finds the selected 1-based index in the model output:
// first an explicit "Choice: #N" marker, then the last standalone
// number anywhere in the text.
func ExtractChoice(text string) (int, bool) {
	if m := choiceRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	all := standaloneRe.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(all[len(all)-1][1])
	if err != nil {
		return 0, false
	}
	return n, true
}

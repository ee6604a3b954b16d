// Command replay prints a recorded chronicle back as a readable
// history: turns interleaved with decisions, per session.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sovereign.ai/internal/persistence/chronicle"
)

func main() {
	var (
		dataDir   = flag.String("data", "./data", "runtime data directory")
		sessionID = flag.String("session", "", "only this session (default: all)")
	)
	flag.Parse()

	turns, err := collect(filepath.Join(*dataDir, "turns"), *sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read turns:", err)
		os.Exit(1)
	}
	decisions, err := collect(filepath.Join(*dataDir, "decisions"), *sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read decisions:", err)
		os.Exit(1)
	}

	// decision lookup by session and turn
	byTurn := map[string]map[int]map[string]any{}
	for _, d := range decisions {
		sid, _ := d["session_id"].(string)
		if byTurn[sid] == nil {
			byTurn[sid] = map[int]map[string]any{}
		}
		byTurn[sid][intField(d, "turn")] = d
	}

	sort.SliceStable(turns, func(i, j int) bool {
		si, _ := turns[i]["session_id"].(string)
		sj, _ := turns[j]["session_id"].(string)
		if si != sj {
			return si < sj
		}
		return intField(turns[i], "turn") < intField(turns[j], "turn")
	})

	lastSession := ""
	for _, t := range turns {
		sid, _ := t["session_id"].(string)
		if sid != lastSession {
			fmt.Printf("=== session %s ===\n", sid)
			lastSession = sid
		}
		turn := intField(t, "turn")
		fmt.Printf("year %3d  event=%-24s theme=%-10s stats=%v\n",
			turn, t["event_id"], t["theme"], t["stats"])
		if d, ok := byTurn[sid][turn]; ok {
			fmt.Printf("          chose %s", d["option_id"])
			if tags, ok := d["tags"].([]any); ok && len(tags) > 0 {
				fmt.Printf(" tags=%v", tags)
			}
			fmt.Println()
		}
		if gameOver, _ := t["game_over"].(bool); gameOver {
			fmt.Printf("          REIGN ENDS: %v\n", t["cause"])
		}
	}
	fmt.Printf("%d turns, %d decisions\n", len(turns), len(decisions))
}

// collect reads every entry under dir. A directory that was never
// written is an empty chronicle, not an error.
func collect(dir, sessionID string) ([]map[string]any, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var out []map[string]any
	err := chronicle.ReadDir(dir, func(entry map[string]any) error {
		if sessionID != "" {
			if sid, _ := entry["session_id"].(string); sid != sessionID {
				return nil
			}
		}
		out = append(out, entry)
		return nil
	})
	return out, err
}

func intField(m map[string]any, key string) int {
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

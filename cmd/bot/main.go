// Command bot is a headless autoplayer: it drives a session through
// the HTTP API, resolving each pending event with the first affordable
// option. Useful for soak-testing a server without a UI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"sovereign.ai/internal/protocol"
)

func main() {
	var (
		addr  = flag.String("addr", "http://localhost:8080", "server base url")
		turns = flag.Int("turns", 50, "turns to play before exiting")
		delay = flag.Duration("delay", 200*time.Millisecond, "pause between turns")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	var view protocol.StateView
	if err := getJSON(client, *addr+"/v1/state", &view); err != nil {
		logger.Fatalf("state: %v", err)
	}
	logger.Printf("session=%s stats=%v", view.SessionID, view.Stats)

	for i := 0; i < *turns; i++ {
		var tr struct {
			protocol.TurnResult
			State protocol.StateView `json:"state"`
		}
		if err := postJSON(client, *addr+"/v1/turn", nil, &tr); err != nil {
			logger.Fatalf("turn: %v", err)
		}
		if tr.State.PendingEvent != nil {
			ev := tr.State.PendingEvent
			opt := pickOption(ev)
			logger.Printf("year=%d event=%s pick=%s", tr.Turn, ev.ID, opt)

			var ar struct {
				protocol.ActionResult
				State protocol.StateView `json:"state"`
			}
			req := protocol.ResolveRequest{EventID: ev.ID, OptionID: opt}
			if err := postJSON(client, *addr+"/v1/event/resolve", req, &ar); err != nil {
				logger.Fatalf("resolve: %v", err)
			}
			if ar.Status != "ok" {
				logger.Printf("resolve rejected code=%s msg=%q", ar.Code, ar.Message)
			}
			view = ar.State
		}
		if view.GameOver {
			logger.Printf("reign ended: %s; starting over", view.GameOverCause)
			if err := postJSON(client, *addr+"/v1/reset", nil, &view); err != nil {
				logger.Fatalf("reset: %v", err)
			}
		}
		time.Sleep(*delay)
	}
	logger.Printf("done after %d turns, final stats=%v tags=%v", *turns, view.Stats, view.ReputationTags)
}

// pickOption prefers the first unblocked authored option and falls
// back to whatever the server injected.
func pickOption(ev *protocol.EventView) string {
	for _, opt := range ev.Options {
		if !opt.Blocked {
			return opt.ID
		}
	}
	if len(ev.Options) > 0 {
		return ev.Options[len(ev.Options)-1].ID
	}
	return ""
}

func getJSON(c *http.Client, url string, out any) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(c *http.Client, url string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := c.Post(url, "application/json", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

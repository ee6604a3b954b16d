package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/session"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/director"
	"sovereign.ai/internal/sim/game"
	"sovereign.ai/internal/sim/tuning"
)

func testStore() *session.Store {
	deck := []catalogs.EventDef{
		{ID: "quiet", Title: "Quiet", Theme: "management", DramaWeight: 10,
			Options: []catalogs.OptionDef{
				{ID: "A", Text: "first"},
				{ID: "B", Text: "second"},
			}},
	}
	cats := &catalogs.Catalogs{
		Events:   catalogs.EventCatalog{List: deck, ByID: map[string]catalogs.EventDef{"quiet": deck[0]}},
		Policies: catalogs.PolicyCatalog{ByID: map[string]catalogs.PolicyDef{}},
		Rules:    catalogs.DefaultRules(),
	}
	cats.Rules.StartPolicies = nil
	tune := tuning.Defaults()
	dir := director.New(cats, tune, nil, nil)
	return session.NewStore(func(id string) *game.Game {
		return game.New(game.Config{
			SessionID: id,
			Catalogs:  cats,
			Tuning:    tune,
			Director:  dir,
			Seed:      42,
		})
	}, time.Hour, nil)
}

func TestFeedDeliversTurns(t *testing.T) {
	store := testStore()
	h := store.Create()

	ts := httptest.NewServer(NewServer(store, nil).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?session=" + h.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	h.Game.ProcessTurn(context.Background())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg protocol.FeedMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != protocol.FeedTurn || msg.Turn != 1 {
		t.Fatalf("msg=%+v want %s turn 1", msg, protocol.FeedTurn)
	}
	if msg.SessionID != h.ID {
		t.Fatalf("session=%q want %q", msg.SessionID, h.ID)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	store := testStore()
	ts := httptest.NewServer(NewServer(store, nil).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?session=ghost"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial succeeded for unknown session")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("resp=%v want 404", resp)
	}
}

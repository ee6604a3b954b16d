package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"sovereign.ai/internal/model"
	"sovereign.ai/internal/persistence/chronicle"
	"sovereign.ai/internal/persistence/indexdb"
	"sovereign.ai/internal/session"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/director"
	"sovereign.ai/internal/sim/game"
	"sovereign.ai/internal/sim/tuning"
	"sovereign.ai/internal/transport/httpapi"
	"sovereign.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "json schema directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		modelURL   = flag.String("model_url", "", "llama.cpp server base url (empty disables the neural arbiter)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
		seed       = flag.Int64("seed", 0, "base seed for event rolls (0: time-based per session)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir, *schemaDir, logger.Printf)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	logger.Printf("catalogs loaded events=%d policies=%d", len(cats.Events.List), len(cats.Policies.List))

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	var client model.Client
	if u := strings.TrimSpace(*modelURL); u != "" {
		timeout := time.Duration(tune.Arbiter.TimeoutSeconds) * time.Second
		client = model.Serialize(model.NewLlamaClient(u, timeout))
		logger.Printf("neural arbiter enabled url=%s timeout=%s", u, timeout)
	} else {
		logger.Printf("neural arbiter disabled; deterministic drama fallback only")
	}

	dir := director.New(cats, tune, client, logger)

	_ = os.MkdirAll(*dataDir, 0o755)
	turnLog := chronicle.NewTurnLogger(*dataDir)
	decisionLog := chronicle.NewDecisionLogger(*dataDir)
	defer turnLog.Close()
	defer decisionLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	} else {
		logger.Printf("index db disabled")
	}

	turns := multiTurnLogger{a: turnLog}
	decisions := multiDecisionLogger{a: decisionLog}
	if idx != nil {
		turns.b = idx
		decisions.b = idx
	}

	baseSeed := *seed
	factory := func(id string) *game.Game {
		if idx != nil {
			idx.RecordSession(id, time.Now().UTC().Format(time.RFC3339))
		}
		return game.New(game.Config{
			SessionID:   id,
			Catalogs:    cats,
			Tuning:      tune,
			Director:    dir,
			Seed:        seedFor(baseSeed, id),
			TurnLog:     turns,
			DecisionLog: decisions,
		})
	}

	ttl := time.Duration(tune.SessionTTLMinutes) * time.Minute
	store := session.NewStore(factory, ttl, logger)

	ctx, cancel := signalContext()
	defer cancel()
	go store.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := dir.Snapshot()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP sovereign_sessions_active Current live sessions.\n")
		fmt.Fprintf(rw, "# TYPE sovereign_sessions_active gauge\n")
		fmt.Fprintf(rw, "sovereign_sessions_active %d\n", store.Len())

		fmt.Fprintf(rw, "# HELP sovereign_director_turns_total Turns processed by the director.\n")
		fmt.Fprintf(rw, "# TYPE sovereign_director_turns_total counter\n")
		fmt.Fprintf(rw, "sovereign_director_turns_total %d\n", m.TurnsTotal)

		fmt.Fprintf(rw, "# HELP sovereign_director_picks_total Event picks by selection path.\n")
		fmt.Fprintf(rw, "# TYPE sovereign_director_picks_total counter\n")
		fmt.Fprintf(rw, "sovereign_director_picks_total{path=%q} %d\n", "neural", m.NeuralPicks)
		fmt.Fprintf(rw, "sovereign_director_picks_total{path=%q} %d\n", "fallback", m.FallbackPicks)
		fmt.Fprintf(rw, "sovereign_director_picks_total{path=%q} %d\n", "emergency", m.EmergencyOut)

		fmt.Fprintf(rw, "# HELP sovereign_neural_enabled Whether the neural arbiter is wired.\n")
		fmt.Fprintf(rw, "# TYPE sovereign_neural_enabled gauge\n")
		fmt.Fprintf(rw, "sovereign_neural_enabled %d\n", boolGauge(dir.NeuralEnabled()))

		if idx != nil {
			fmt.Fprintf(rw, "# HELP sovereign_index_dropped_total Index writes dropped due to a full queue.\n")
			fmt.Fprintf(rw, "# TYPE sovereign_index_dropped_total counter\n")
			fmt.Fprintf(rw, "sovereign_index_dropped_total %d\n", idx.Dropped())
		}
	})

	if envBool("SOV_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (SOV_ENABLE_PPROF_HTTP=false)")
	}

	httpapi.NewServer(store, logger).Register(mux)
	mux.HandleFunc("/v1/ws", ws.NewServer(store, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// seedFor derives a per-session roll seed. A nonzero base keeps runs
// reproducible across restarts.
func seedFor(base int64, sessionID string) int64 {
	if base == 0 {
		base = time.Now().UnixNano()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(sessionID))
	return base ^ int64(h.Sum64())
}

func envBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func boolGauge(b bool) int {
	if b {
		return 1
	}
	return 0
}

type multiTurnLogger struct {
	a game.TurnLogger
	b game.TurnLogger
}

func (m multiTurnLogger) WriteTurn(entry game.TurnLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTurn(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTurn(entry)
	}
	return nil
}

type multiDecisionLogger struct {
	a game.DecisionLogger
	b game.DecisionLogger
}

func (m multiDecisionLogger) WriteDecision(entry game.DecisionLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteDecision(entry)
	}
	if m.b != nil {
		_ = m.b.WriteDecision(entry)
	}
	return nil
}

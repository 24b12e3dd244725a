package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"adrift.gg/internal/persistence/progress"
	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/roommgr"
	"adrift.gg/internal/sim/tuning"
	"adrift.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the player progress database")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

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

	cat := catalog.Defaults()
	_ = os.MkdirAll(*dataDir, 0o755)

	var store *progress.Store
	if !*disableDB {
		store, err = progress.Open(filepath.Join(*dataDir, "progress.db"))
		if err != nil {
			logger.Fatalf("open progress db: %v", err)
		}
		defer store.Close()
	}

	rooms := roommgr.New(&tune, cat, store, *dataDir, logger)
	defer rooms.Close()

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/rooms", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(rooms.Rooms())
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		infos := rooms.Rooms()
		players := 0
		for _, info := range infos {
			players += info.Players
		}
		fmt.Fprintf(rw, "# HELP adrift_rooms Current number of live rooms.\n")
		fmt.Fprintf(rw, "# TYPE adrift_rooms gauge\n")
		fmt.Fprintf(rw, "adrift_rooms %d\n", len(infos))
		fmt.Fprintf(rw, "# HELP adrift_players Current number of players across all rooms.\n")
		fmt.Fprintf(rw, "# TYPE adrift_players gauge\n")
		fmt.Fprintf(rw, "adrift_players %d\n", players)
		for _, info := range infos {
			fmt.Fprintf(rw, "adrift_room_tick{room=%q} %d\n", info.ID, info.Tick)
		}
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(rooms, logger).Handler())

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (tick %d Hz, %d players per room)", *addr, tune.TickRateHz, tune.MaxPlayers)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
	logger.Printf("shut down")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

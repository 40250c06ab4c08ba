package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wfunc/fishduel/broadcast"
	"github.com/wfunc/fishduel/config"
	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/monitor"
	"github.com/wfunc/fishduel/persistence"
	"github.com/wfunc/fishduel/room"
	gamerpc "github.com/wfunc/fishduel/rpc"
	"github.com/wfunc/fishduel/services"
	"github.com/wfunc/fishduel/session"
	"github.com/wfunc/fishduel/timer"
)

type GameServer struct {
	cfg            *config.Config
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	timers         *timer.TimerManager
	monitor        *monitor.Monitor
	journal        *persistence.Journal
	stats          *services.StatsService
	rpcServer      *gamerpc.Server
	handlers       map[string]handlerFunc

	cancel context.CancelFunc
	loops  sync.WaitGroup
	conns  sync.WaitGroup
}

// NewGameServer wires the registry, broadcaster, timers, metrics and match
// journal. A nil db keeps the journal in memory for the process lifetime.
func NewGameServer(cfg *config.Config, db persistence.Database) (*GameServer, error) {
	if db == nil {
		db = persistence.NewMemory()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mon, err := monitor.NewMonitor(cfg.Metrics.Namespace, registry)
	if err != nil {
		return nil, err
	}

	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		timers:         timer.NewTimerManager(cfg.Game.SchedulerResolution),
		monitor:        mon,
		journal:        persistence.NewJournal(db, cfg.Database.JournalBuffer),
	}
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)
	s.roomManager = room.NewRoomManager(
		roomOptions(cfg.Game),
		room.NewGenerator(rand.NewSource(time.Now().UnixNano())),
		s.broadcaster,
		s.timers,
		room.MultiRecorder{s.monitor, s.journal},
	)
	s.stats = services.NewStatsService(s.roomManager, s.sessionManager, db)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.Server.AllowedOrigins),
	}
	s.handlers = s.registerHandlers()

	if cfg.RPC.Enabled {
		rpcServer, err := gamerpc.NewServer(cfg.RPC.Address, s.stats)
		if err != nil {
			s.journal.Close()
			return nil, err
		}
		s.rpcServer = rpcServer
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

func roomOptions(g config.GameConfig) room.Options {
	return room.Options{
		MaxPlayers:     g.MaxPlayers,
		FishCount:      g.FishCount,
		MoveStep:       g.MoveStep,
		CatchRadius:    g.CatchRadius,
		MinFishingWait: g.MinFishingWait,
		MaxFishingWait: g.MaxFishingWait,
	}
}

// checkOrigin 允许配置中的来源; an empty list allows every origin, and
// requests without an Origin header (non-browser clients) are always allowed.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// Handler returns the HTTP surface: pages, static assets, websocket, API.
func (s *GameServer) Handler() http.Handler {
	publicDir := s.cfg.Server.PublicDir
	mux := http.NewServeMux()

	mux.Handle("GET /", http.FileServer(http.Dir(publicDir)))
	mux.HandleFunc("GET /game", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(publicDir, "game.html"))
	})
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	if s.cfg.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Metrics.Path, s.monitor.Handler())
	}
	return mux
}

// Start launches the timer loop and, when enabled, the admin RPC listener.
func (s *GameServer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		s.timers.Run(ctx, s.resolveFishing)
	}()

	if s.rpcServer != nil {
		s.loops.Add(1)
		go func() {
			defer s.loops.Done()
			s.rpcServer.Start()
		}()
	}
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *GameServer) ListenAndServe() error {
	logger.Log.Infof("Game server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, closes every websocket, stops the
// timer loop and flushes the journal.
func (s *GameServer) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.sessionManager.CloseAll()
	s.conns.Wait()

	if s.cancel != nil {
		s.cancel()
	}
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
	s.loops.Wait()
	s.journal.Close()

	logger.Log.Info("Game server stopped")
	return err
}

// resolveFishing runs on the timer goroutine; a panic is logged so one bad
// resolution does not stop the queue.
func (s *GameServer) resolveFishing(task timer.Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorw("fishing resolution panicked", "room", task.RoomCode, "player", task.PlayerID, "panic", r)
		}
	}()
	s.monitor.ObserveFishingWait(time.Since(task.ScheduledAt))
	s.roomManager.ResolveFishing(task)
}

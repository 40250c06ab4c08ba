package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"sync"
	"time"

	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/services"
)

const callTimeout = 5 * time.Second

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
	wg       sync.WaitGroup
}

// NewServer listens on addr and registers the Admin service on a private
// rpc.Server, so tests can run several servers in one process.
func NewServer(addr string, stats *services.StatsService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Admin", NewAdminService(stats)); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		rpc:      srv,
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start begins accepting RPC connections. It returns when the listener is closed.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.rpc.ServeConn(conn)
		}()
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes registry statistics and the leaderboard.
// Methods follow the net/rpc signature: exported args, pointer reply, error.
type AdminService struct {
	stats *services.StatsService
}

func NewAdminService(stats *services.StatsService) *AdminService {
	return &AdminService{stats: stats}
}

// StatsArgs carries the caller name for the access log; gob cannot encode
// a struct without exported fields.
type StatsArgs struct {
	Caller string
}

type StatsReply struct {
	Stats services.ServerStats
}

func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	logger.Log.Debugw("admin stats", "caller", args.Caller)
	reply.Stats = a.stats.Stats()
	return nil
}

type LeaderboardArgs struct {
	Limit int
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

func (a *AdminService) Leaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	entries, err := a.stats.Leaderboard(ctx, args.Limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}

package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/teenpatti-player/logger"
	"github.com/wfunc/teenpatti-player/services"
)

// ServiceName is the name AgentService is registered under.
const ServiceName = "AgentService"

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// NewServer listens on addr and registers an AgentService backed by ps.
func NewServer(addr string, ps *services.PlayerService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(ServiceName, NewAgentService(ps)); err != nil {
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

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start accepts connections until Stop is called.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
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
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AgentService exposes the turn controller to dealers that prefer net/rpc over HTTP.
type AgentService struct {
	playerService *services.PlayerService
}

func NewAgentService(ps *services.PlayerService) *AgentService {
	return &AgentService{playerService: ps}
}

type TakeTurnArgs struct {
	PlayerID   string
	PotSize    int64
	CurrentBet int64
}

type TakeTurnReply struct {
	Action string
	Amount int64
}

func (a *AgentService) TakeTurn(args *TakeTurnArgs, reply *TakeTurnReply) error {
	res, err := a.playerService.TakeTurn(context.Background(), args.PlayerID, args.PotSize, args.CurrentBet)
	if err != nil {
		return err
	}
	reply.Action = string(res.Action)
	reply.Amount = res.Amount
	return nil
}

type CardsArgs struct {
	PlayerID string
}

type CardsReply struct {
	Cards []string
}

func (a *AgentService) Cards(args *CardsArgs, reply *CardsReply) error {
	cards, err := a.playerService.Cards(context.Background(), args.PlayerID)
	if err != nil {
		return err
	}
	reply.Cards = cards
	return nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/teenpatti-player/logger"
	"github.com/wfunc/teenpatti-player/monitor"
	"github.com/wfunc/teenpatti-player/network"
	"github.com/wfunc/teenpatti-player/services"
	"github.com/wfunc/teenpatti-player/session"
)

const defaultHistoryLimit = 20

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	playerService  *services.PlayerService
	monitor        *monitor.Monitor
	httpServer     *http.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr string, playerService *services.PlayerService, sessionManager *session.Manager, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		sessionManager: sessionManager,
		playerService:  playerService,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes of the player API.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /player/ping", s.handlePing)
	mux.HandleFunc("POST /player/join_game", s.handleJoinGame)
	mux.HandleFunc("GET /player/game_status", s.handleGameStatus)
	mux.HandleFunc("GET /player/pot", s.handlePot)
	mux.HandleFunc("POST /player/end_game", s.handleEndGame)
	mux.HandleFunc("GET /player/events", s.handleEvents)
	mux.HandleFunc("POST /player/{id}/turn", s.handleTurn)
	mux.HandleFunc("POST /player/{id}/bet", s.handleBet)
	mux.HandleFunc("POST /player/{id}/fold", s.handleFold)
	mux.HandleFunc("POST /player/{id}/show", s.handleShow)
	mux.HandleFunc("GET /player/{id}/cards", s.handleCards)
	mux.HandleFunc("GET /player/{id}/history", s.handleHistory)
	mux.Handle("GET /metrics", s.monitor.Handler())
	return logRequests(mux)
}

func (s *GameServer) Start() error {
	logger.Log.Infof("Player API listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *GameServer) Shutdown(ctx context.Context) error {
	close(s.shutdownChan)
	for _, sess := range s.sessionManager.All() {
		sess.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.Debugf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrPlayerNotFound):
		status = http.StatusNotFound
	case services.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Log.Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *GameServer) handlePing(w http.ResponseWriter, r *http.Request) {
	dealerStatus := "up"
	if err := s.playerService.DealerHealth(r.Context()); err != nil {
		dealerStatus = "down"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "pong",
		"dealer":  dealerStatus,
	})
}

type joinRequest struct {
	Name string `json:"name"`
}

func (s *GameServer) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	res, err := s.playerService.JoinGame(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type turnRequest struct {
	PotSize    *int64 `json:"pot_size"`
	Pot        *int64 `json:"pot"`
	CurrentBet int64  `json:"current_bet"`
}

func (s *GameServer) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	var pot int64
	switch {
	case req.PotSize != nil:
		pot = *req.PotSize
	case req.Pot != nil:
		pot = *req.Pot
	}

	res, err := s.playerService.TakeTurn(r.Context(), r.PathValue("id"), pot, req.CurrentBet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type betRequest struct {
	Amount int64 `json:"amount"`
}

func (s *GameServer) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	res, err := s.playerService.ManualBet(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *GameServer) handleFold(w http.ResponseWriter, r *http.Request) {
	if err := s.playerService.ManualFold(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "folded"})
}

func (s *GameServer) handleShow(w http.ResponseWriter, r *http.Request) {
	cards, err := s.playerService.Show(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "shown",
		"cards":  cards,
	})
}

func (s *GameServer) handleCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.playerService.Cards(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cards": cards})
}

func (s *GameServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	turns, err := s.playerService.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": turns})
}

func (s *GameServer) handleGameStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.playerService.GameStatus(r.Context()))
}

func (s *GameServer) handlePot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"pot": s.playerService.Pot(r.Context())})
}

func (s *GameServer) handleEndGame(w http.ResponseWriter, r *http.Request) {
	record := s.playerService.EndGame(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ended",
		"message": "Game ended, all players reset",
		"game_id": record.ID,
	})
}

func (s *GameServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

// handleConnection keeps an event subscriber registered until its connection
// drops. Subscribers may send heartbeats, which are echoed back.
func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)

	logger.Log.Infof("New subscriber from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Subscriber closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			sess.Touch()
			if packet.MsgID == network.MsgTypeHeartbeat {
				sess.Send(network.MsgTypeHeartbeat, nil)
			}
		}
	}
}

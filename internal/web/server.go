package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
	"github.com/peterkuimelis/dominion/internal/store"
	"go.uber.org/zap"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Types    string `json:"types"`
	Coins    int    `json:"coins,omitempty"`
	VP       int    `json:"vp,omitempty"`
	Text     string `json:"text,omitempty"`
	Reaction string `json:"reaction,omitempty"`
}

// KingdomInfo is the JSON representation of a kingdom preset for the
// /api/kingdoms endpoint.
type KingdomInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Cards  []string `json:"cards"`
}

// GameInfo is a stored game with its replayed event log.
type GameInfo struct {
	store.Summary
	Winners []int    `json:"winners"`
	Scores  []int    `json:"scores"`
	Log     []string `json:"log"`
}

// Server is the Dominion web server: a card and kingdom API, a browser
// bridge to TCP game hosts, and a viewer for stored games.
type Server struct {
	catalog  game.Catalog
	kingdoms *catalog.File
	store    *store.Store
	logger   *zap.Logger
	mux      *http.ServeMux
}

// NewServer creates a new web server. kingdoms and st may be nil.
func NewServer(cat game.Catalog, kingdoms *catalog.File, st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if kingdoms == nil {
		kingdoms = &catalog.File{}
	}
	s := &Server{
		catalog:  cat,
		kingdoms: kingdoms,
		store:    st,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/kingdoms", s.handleKingdoms)
	s.mux.HandleFunc("GET /api/games", s.handleGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGame)

	// WebSocket proxy
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := []CardInfo{}
	for _, name := range s.catalog.Names() {
		c := s.catalog[name]
		ci := CardInfo{
			Name:  c.Name,
			Cost:  c.Cost,
			Types: c.Types.String(),
			Coins: c.Coins,
			VP:    c.VP,
			Text:  c.Text,
		}
		if c.IsReaction() {
			ci.Reaction = "modify"
			if c.Reaction.Kind == game.ReactionBlock {
				ci.Reaction = "block"
			}
		}
		cards = append(cards, ci)
	}
	writeJSON(w, cards)
}

func (s *Server) handleKingdoms(w http.ResponseWriter, r *http.Request) {
	kingdoms := []KingdomInfo{{Number: 0, Name: "First Game", Cards: game.FirstGameKingdom}}
	for i, k := range s.kingdoms.Kingdoms {
		kingdoms = append(kingdoms, KingdomInfo{Number: i + 1, Name: k.Name, Cards: k.Cards})
	}
	writeJSON(w, kingdoms)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "no game store configured", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list games", zap.Error(err))
		http.Error(w, "could not list games", http.StatusInternalServerError)
		return
	}
	if games == nil {
		games = []store.Summary{}
	}
	writeJSON(w, games)
}

// handleGame replays a stored transcript and returns its event log.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "no game store configured", http.StatusNotFound)
		return
	}
	rec, err := s.store.Load(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("load game", zap.Error(err))
		http.Error(w, "could not load game", http.StatusInternalServerError)
		return
	}

	logger := log.NewMemoryLogger()
	g, err := game.Replay(s.catalog, rec.Transcript, logger)
	if err != nil {
		s.logger.Error("replay game", zap.String("id", rec.ID), zap.Error(err))
		http.Error(w, "could not replay game", http.StatusInternalServerError)
		return
	}
	res := g.Result()
	info := GameInfo{Summary: rec.Summary, Winners: res.Winners, Scores: res.Scores, Log: []string{}}
	for _, e := range logger.Events() {
		info.Log = append(info.Log, log.FormatEvent(e))
	}
	writeJSON(w, info)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	// Read initial connect message from browser
	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.logger.Warn("websocket read connect", zap.Error(err))
		return
	}

	var connectMsg struct {
		Type string `json:"type"`
		Addr string `json:"addr"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	// Open TCP connection to game server
	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		_ = wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()
	s.logger.Info("browser joined game", zap.String("addr", connectMsg.Addr), zap.String("name", connectMsg.Name))

	joinMsg, _ := json.Marshal(map[string]string{
		"type": "join",
		"name": connectMsg.Name,
	})
	joinMsg = append(joinMsg, '\n')
	if _, err := tcpConn.Write(joinMsg); err != nil {
		s.logger.Warn("tcp write join", zap.Error(err))
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if err != io.EOF {
					s.logger.Debug("tcp read", zap.Error(err))
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.logger.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				s.logger.Debug("tcp write", zap.Error(err))
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

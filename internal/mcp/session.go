package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	stdnet "net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/peterkuimelis/dominion/internal/bot"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/net"
	"github.com/peterkuimelis/dominion/internal/store"
	"go.uber.org/zap"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionDecide       DecisionType = "decide"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type    DecisionType     `json:"type"`
	Player  int              `json:"player"`
	State   *net.StateView   `json:"state"`
	Actions []net.ActionView `json:"actions,omitempty"`
	Request *net.RequestView `json:"request,omitempty"`
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string          `json:"session_id"`
	Events    []net.EventView `json:"events"`
	State     *net.StateView  `json:"state,omitempty"`
	Pending   *PendingView    `json:"pending,omitempty"`
	GameOver  bool            `json:"game_over"`
	Winners   []string        `json:"winners,omitempty"`
	Scores    []int           `json:"scores,omitempty"`
	Result    string          `json:"result,omitempty"`
	GameID    string          `json:"game_id,omitempty"` // stored transcript
	Port      string          `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type    DecisionType     `json:"type"`
	Actions []net.ActionView `json:"actions,omitempty"`
	Request *net.RequestView `json:"request,omitempty"`
}

// SessionConfig describes the table for a new session.
type SessionConfig struct {
	Catalog  game.Catalog
	Kingdom  []string
	Seat     int      // seat played through MCP tools
	Bots     []string // terminal card per bot, "" for plain Big Money
	Humans   int      // TCP players to wait for on Port
	Port     string
	Seed     int64
	MaxTurns int
	Store    *store.Store
	Logger   *zap.Logger
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	ID    string
	game  *game.Game
	ctrl  *MCPController
	seat  int
	names []string

	listener   stdnet.Listener
	humanConns []stdnet.Conn
	humans     []*net.NetworkController
	closeOnce  sync.Once

	cancel context.CancelFunc
	done   chan struct{}

	// call serializes tool calls; it guards currentPending.
	call           sync.Mutex
	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	events   []net.EventView
	gameOver bool
	result   game.Result
	errText  string
	gameID   string
}

// NewGameSession seats the MCP player, the bots and any TCP humans, then
// starts the game. With Humans > 0 it blocks until they have all joined.
func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	seats := 1 + cfg.Humans + len(cfg.Bots)
	if seats < game.MinPlayers || seats > game.MaxPlayers {
		return nil, fmt.Errorf("need %d-%d players, got %d", game.MinPlayers, game.MaxPlayers, seats)
	}
	if cfg.Seat < 0 || cfg.Seat >= seats {
		return nil, fmt.Errorf("seat must be 0-%d", seats-1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sess := &GameSession{
		ID:        uuid.NewString(),
		seat:      cfg.Seat,
		pendingCh: make(chan *PendingDecision, 1),
		done:      make(chan struct{}),
	}
	logger = logger.With(zap.String("session", sess.ID))
	sess.ctrl = NewMCPController(cfg.Seat, sess)

	// seats other than the MCP player are filled with humans first, then bots
	controllers := make([]game.PlayerController, seats)
	names := make([]string, seats)
	controllers[cfg.Seat] = sess.ctrl
	names[cfg.Seat] = "agent"
	others := []int{}
	for i := 0; i < seats; i++ {
		if i != cfg.Seat {
			others = append(others, i)
		}
	}

	if cfg.Humans > 0 {
		ln, err := stdnet.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		sess.listener = ln
		for i := 0; i < cfg.Humans; i++ {
			seat := others[i]
			conn, err := ln.Accept()
			if err != nil {
				sess.closeConns()
				return nil, fmt.Errorf("accept: %w", err)
			}
			sess.humanConns = append(sess.humanConns, conn)

			var join net.ClientMessage
			if err := json.NewDecoder(conn).Decode(&join); err != nil {
				sess.closeConns()
				return nil, fmt.Errorf("read join message: %w", err)
			}
			names[seat] = strings.TrimSpace(join.Name)
			if names[seat] == "" {
				names[seat] = fmt.Sprintf("P%d", seat+1)
			}
			nc := net.NewNetworkController(conn, seat)
			sess.humans = append(sess.humans, nc)
			controllers[seat] = nc
			logger.Info("human joined", zap.String("name", names[seat]), zap.Int("seat", seat))
		}
	}
	for i, terminal := range cfg.Bots {
		seat := others[cfg.Humans+i]
		controllers[seat] = bot.New(terminal)
		names[seat] = fmt.Sprintf("bot%d", i+1)
		if terminal != "" {
			names[seat] += "-" + strings.ToLower(strings.ReplaceAll(terminal, " ", ""))
		}
	}
	sess.names = names

	kingdom := cfg.Kingdom
	if kingdom == nil {
		kingdom = game.FirstGameKingdom
	}
	for _, h := range sess.humans {
		_ = h.Send(net.ServerMessage{Type: "welcome", Seat: h.Seat(), Players: names, Kingdom: kingdom})
	}

	g, err := game.NewGame(cfg.Catalog, game.Config{
		Players:  names,
		Kingdom:  cfg.Kingdom,
		Seed:     cfg.Seed,
		MaxTurns: cfg.MaxTurns,
		Logger:   net.NewZapEventLogger(logger),
	}, controllers...)
	if err != nil {
		sess.closeConns()
		return nil, fmt.Errorf("new game: %w", err)
	}
	sess.game = g
	logger.Info("game started", zap.Strings("players", names), zap.Int64("seed", g.Config().Seed))

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go sess.run(ctx, cfg.Store, logger)
	return sess, nil
}

func (s *GameSession) run(ctx context.Context, st *store.Store, logger *zap.Logger) {
	defer close(s.done)
	defer s.closeConns()

	res, err := s.game.Run(ctx)

	s.mu.Lock()
	s.gameOver = true
	s.result = res
	if err != nil {
		s.errText = fmt.Sprintf("error: %v", err)
	}
	s.mu.Unlock()

	if err == nil && st != nil {
		id, serr := st.SaveGame(context.Background(), s.game)
		if serr != nil {
			logger.Error("save game", zap.Error(serr))
		} else {
			s.mu.Lock()
			s.gameID = id
			s.mu.Unlock()
		}
	}
	logger.Info("game over", zap.String("result", res.Reason), zap.Ints("scores", res.Scores), zap.Error(err))

	for _, h := range s.humans {
		_ = h.Send(net.ServerMessage{Type: "game_over", Winners: res.Winners, Scores: res.Scores, Result: res.Reason})
	}

	select {
	case s.pendingCh <- &PendingDecision{
		Type:   DecisionGameOver,
		Player: s.seat,
		State:  net.BuildStateView(s.game.State, s.seat),
	}:
	case <-ctx.Done():
	}
}

// Close stops the game if it is still running. A human seat blocked reading
// its connection does not see the context, so the connections go first.
func (s *GameSession) Close() {
	s.cancel()
	s.closeConns()
	<-s.done
}

func (s *GameSession) closeConns() {
	s.closeOnce.Do(func() {
		for _, c := range s.humanConns {
			c.Close()
		}
		if s.listener != nil {
			s.listener.Close()
		}
	})
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev net.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []net.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []net.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.currentPending = pending

	resp := &ToolResponse{
		SessionID: s.ID,
		Events:    s.drainEvents(),
		State:     pending.State,
	}
	if pending.Type == DecisionGameOver {
		s.fillResult(resp)
		return resp, nil
	}
	resp.Pending = &PendingView{
		Type:    pending.Type,
		Actions: pending.Actions,
		Request: pending.Request,
	}
	return resp, nil
}

func (s *GameSession) fillResult(resp *ToolResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.GameOver = true
	resp.Scores = s.result.Scores
	resp.Result = s.result.Reason
	if s.errText != "" {
		resp.Result = s.errText
	}
	for _, w := range s.result.Winners {
		resp.Winners = append(resp.Winners, s.names[w])
	}
	resp.GameID = s.gameID
}

func (s *GameSession) isOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}

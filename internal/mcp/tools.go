package mcp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/net"
	"github.com/peterkuimelis/dominion/internal/store"
	"go.uber.org/zap"
)

// Manager owns the game sessions of one MCP server process.
type Manager struct {
	Catalog  game.Catalog
	Kingdoms *catalog.File // optional presets for start_game
	Port     string        // TCP port for human players
	Store    *store.Store
	Logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*GameSession
}

// NewManager returns a manager with no sessions.
func NewManager(cat game.Catalog, kingdoms *catalog.File, port string) *Manager {
	return &Manager{
		Catalog:  cat,
		Kingdoms: kingdoms,
		Port:     port,
		sessions: make(map[string]*GameSession),
	}
}

// RegisterTools adds all game tools to the MCP server.
func (m *Manager) RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), m.handleStartGame)
	s.AddTool(takeActionTool(), m.handleTakeAction)
	s.AddTool(decideTool(), m.handleDecide)
	s.AddTool(getGameStateTool(), m.handleGetGameState)
	s.AddTool(endGameTool(), m.handleEndGame)
	s.AddTool(listKingdomsTool(), m.handleListKingdoms)
}

// Close stops every running session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*GameSession)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Dominion game. Returns a session_id, the initial game state and the first pending decision. "+
			"Opponents are Big Money bots; human players connect via `dominion join --addr localhost:<port>` in a separate terminal, "+
			"and this call blocks until they have all joined."),
		mcp.WithString("kingdom", mcp.Description("Kingdom preset name or number, or a comma-separated list of 10 card names. Default: First Game")),
		mcp.WithNumber("seat", mcp.Description("Which seat you play: 0 goes first. Default 0")),
		mcp.WithString("bots", mcp.Description("Comma-separated Action card per bot opponent (empty entry for plain Big Money). Default: one Smithy bot")),
		mcp.WithNumber("humans", mcp.Description("Number of human players to wait for over TCP. Default 0")),
		mcp.WithNumber("seed", mcp.Description("Shuffle seed for a reproducible game. Default random")),
		mcp.WithNumber("max_turns", mcp.Description("End the game after this many turns. Default: no limit")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. Use this when the pending decision type is 'choose_action'."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_game")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
	)
}

func decideTool() mcp.Tool {
	return mcp.NewTool("decide",
		mcp.WithDescription("Answer the pending request when the pending decision type is 'decide'. "+
			"For yes-no requests pass answer; otherwise pass the 0-based choice indices. "+
			"For choose-order requests list every index, the last one ends on top. An invalid answer is asked again."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_game")),
		mcp.WithString("indices", mcp.Description("Space-separated 0-based indices of the chosen entries (e.g. '0 2 3'), or empty for none")),
		mcp.WithBoolean("answer", mcp.Description("true for yes, false for no")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_game")),
	)
}

func endGameTool() mcp.Tool {
	return mcp.NewTool("end_game",
		mcp.WithDescription("Abandon a running game and free its session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_game")),
	)
}

func listKingdomsTool() mcp.Tool {
	return mcp.NewTool("list_kingdoms",
		mcp.WithDescription("List the kingdom presets that start_game accepts."),
	)
}

// --- Tool handlers ---

func (m *Manager) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Manager) session(request mcp.CallToolRequest) (*GameSession, *mcp.CallToolResult) {
	id := request.GetString("session_id", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, mcp.NewToolResultErrorf("No game with session_id %q. Use start_game first.", id)
	}
	return sess, nil
}

func (m *Manager) forget(sess *GameSession) {
	m.mu.Lock()
	delete(m.sessions, sess.ID)
	m.mu.Unlock()
}

func (m *Manager) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var kingdom []string
	if spec := request.GetString("kingdom", ""); spec != "" {
		f := m.Kingdoms
		if f == nil {
			f = &catalog.File{}
		}
		k, err := f.Resolve(spec)
		if err != nil {
			return mcp.NewToolResultErrorf("Unknown kingdom: %v", err), nil
		}
		kingdom = k
	}

	bots := []string{"Smithy"}
	if raw, ok := request.GetArguments()["bots"]; ok {
		if s, _ := raw.(string); strings.TrimSpace(s) != "" {
			bots = nil
			for _, b := range strings.Split(s, ",") {
				bots = append(bots, strings.TrimSpace(b))
			}
		} else {
			bots = nil
		}
	}

	humans := request.GetInt("humans", 0)
	if humans < 0 {
		return mcp.NewToolResultError("humans must be >= 0"), nil
	}

	sess, err := NewGameSession(SessionConfig{
		Catalog:  m.Catalog,
		Kingdom:  kingdom,
		Seat:     request.GetInt("seat", 0),
		Bots:     bots,
		Humans:   humans,
		Port:     m.Port,
		Seed:     int64(request.GetInt("seed", 0)),
		MaxTurns: request.GetInt("max_turns", 0),
		Store:    m.Store,
		Logger:   m.logger(),
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	sess.call.Lock()
	defer sess.call.Unlock()
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	if humans > 0 {
		resp.Port = m.Port
	}
	if resp.GameOver {
		m.forget(sess)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// respond hands msg to the game and waits for the next decision.
func (m *Manager) respond(ctx context.Context, sess *GameSession, msg net.ClientMessage) (*mcp.CallToolResult, error) {
	select {
	case sess.ctrl.responseCh <- msg:
	case <-sess.done:
	case <-ctx.Done():
		return mcp.NewToolResultErrorf("Cancelled: %v", ctx.Err()), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		m.forget(sess)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (m *Manager) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := m.session(request)
	if errResult != nil {
		return errResult, nil
	}
	sess.call.Lock()
	defer sess.call.Unlock()

	pending := sess.currentPending
	if pending == nil || pending.Type == DecisionGameOver {
		return mcp.NewToolResultError("No pending decision."), nil
	}
	if pending.Type != DecisionChooseAction {
		return mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not 'choose_action'. Use the correct tool.", pending.Type), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}
	return m.respond(ctx, sess, net.ClientMessage{Type: "action", Index: index})
}

func (m *Manager) handleDecide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := m.session(request)
	if errResult != nil {
		return errResult, nil
	}
	sess.call.Lock()
	defer sess.call.Unlock()

	pending := sess.currentPending
	if pending == nil || pending.Type == DecisionGameOver {
		return mcp.NewToolResultError("No pending decision."), nil
	}
	if pending.Type != DecisionDecide {
		return mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not 'decide'. Use the correct tool.", pending.Type), nil
	}

	indicesStr := request.GetString("indices", "")
	indices := []int{}
	for _, p := range strings.Fields(indicesStr) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		indices = append(indices, idx)
	}
	msg := net.ClientMessage{Type: "choice", Indices: indices, Answer: request.GetBool("answer", false)}
	return m.respond(ctx, sess, msg)
}

func (m *Manager) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := m.session(request)
	if errResult != nil {
		return errResult, nil
	}
	sess.call.Lock()
	defer sess.call.Unlock()

	resp := &ToolResponse{SessionID: sess.ID, Events: sess.drainEvents()}
	if pending := sess.currentPending; pending != nil {
		resp.State = pending.State
		if pending.Type == DecisionGameOver {
			sess.fillResult(resp)
		} else {
			resp.Pending = &PendingView{Type: pending.Type, Actions: pending.Actions, Request: pending.Request}
		}
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (m *Manager) handleEndGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := m.session(request)
	if errResult != nil {
		return errResult, nil
	}
	m.forget(sess)
	sess.Close()
	m.logger().Info("session ended", zap.String("session", sess.ID), zap.Bool("finished", sess.isOver()))
	return mcp.NewToolResultText(`{"ended": true}`), nil
}

func (m *Manager) handleListKingdoms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("Default (First Game): " + strings.Join(game.FirstGameKingdom, ", ") + "\n")
	if m.Kingdoms != nil {
		for i, k := range m.Kingdoms.Kingdoms {
			sb.WriteString(strconv.Itoa(i+1) + ". " + k.Name + ": " + strings.Join(k.Cards, ", ") + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

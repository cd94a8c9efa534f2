package game

import (
	"context"
	"testing"

	"github.com/peterkuimelis/dominion/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of actions.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	t       *testing.T
	name    string
	actions []ScriptedAction
	pos     int

	// Answers for Decide, consumed in order
	responses []Response
	respPos   int

	// Every request received, for assertions
	Requests []DecisionRequest
	// Reaction window seen during each Decide call (nil if closed)
	Windows []*ReactionWindow
	Events  []log.GameEvent
}

type ScriptedAction struct {
	// Match by ActionType: picks the first action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddAction(actionType ActionType, cardName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: actionType, CardName: cardName})
	return sc
}

func (sc *ScriptedController) AddCards(names ...string) *ScriptedController {
	sc.responses = append(sc.responses, Response{Cards: names})
	return sc
}

func (sc *ScriptedController) AddYesNo(answer bool) *ScriptedController {
	sc.responses = append(sc.responses, Response{Yes: answer})
	return sc
}

func (sc *ScriptedController) AddOptions(idx ...int) *ScriptedController {
	sc.responses = append(sc.responses, Response{Options: idx})
	return sc
}

func (sc *ScriptedController) AddPlayer(p int) *ScriptedController {
	sc.responses = append(sc.responses, Response{Player: p})
	return sc
}

func (sc *ScriptedController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if sc.pos < len(sc.actions) {
		// Only consume the scripted action once it is available, so scripts can span turns.
		scripted := sc.actions[sc.pos]
		for _, a := range actions {
			if a.Type != scripted.Type {
				continue
			}
			if scripted.CardName != "" && a.Card != scripted.CardName {
				continue
			}
			sc.pos++
			return a, nil
		}
	}
	for _, a := range actions {
		if a.Type == ActionEndPhase {
			return a, nil
		}
	}
	return actions[len(actions)-1], nil
}

func (sc *ScriptedController) Decide(ctx context.Context, state *GameState, req DecisionRequest) (Response, error) {
	sc.Requests = append(sc.Requests, req)
	sc.Windows = append(sc.Windows, state.Window())
	if sc.respPos < len(sc.responses) {
		resp := sc.responses[sc.respPos]
		sc.respPos++
		return resp, nil
	}
	return defaultResponse(req), nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.Events = append(sc.Events, event)
	return nil
}

// defaultResponse gives the smallest valid answer, revealing every reaction.
func defaultResponse(req DecisionRequest) Response {
	switch req.Kind {
	case DecisionChooseCards:
		return Response{Cards: append([]string(nil), req.Cards[:req.Min]...)}
	case DecisionChooseOrder, DecisionReaction:
		return Response{Cards: append([]string(nil), req.Cards...)}
	case DecisionChoosePlayer:
		return Response{Player: req.Players[0]}
	case DecisionChooseOption:
		var opts []int
		for i := 0; i < req.Min; i++ {
			opts = append(opts, i)
		}
		return Response{Options: opts}
	}
	return Response{}
}

// greedyController plays every Action it can, then all Treasures, and buys
// the most expensive of Province, Gold and Silver it can afford.
type greedyController struct{}

func (greedyController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	byType := func(t ActionType, card string) (Action, bool) {
		for _, a := range actions {
			if a.Type == t && (card == "" || a.Card == card) {
				return a, true
			}
		}
		return Action{}, false
	}
	if a, ok := byType(ActionPlayAction, ""); ok {
		return a, nil
	}
	if a, ok := byType(ActionPlayAllTreasures, ""); ok {
		return a, nil
	}
	for _, c := range []string{"Province", "Gold", "Witch", "Militia", "Silver"} {
		if a, ok := byType(ActionBuy, c); ok {
			return a, nil
		}
	}
	a, _ := byType(ActionEndPhase, "")
	return a, nil
}

func (greedyController) Decide(ctx context.Context, state *GameState, req DecisionRequest) (Response, error) {
	return defaultResponse(req), nil
}

func (greedyController) Notify(ctx context.Context, event log.GameEvent) error { return nil }

// --- Game helpers ---

// newTestGame creates an unshuffled game with the base catalog plus extra cards.
func newTestGame(t *testing.T, cfg Config, extra []*Card, ctrls ...PlayerController) (*Game, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	cfg.NoShuffle = true
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	g, err := NewGame(BaseCatalog().With(extra...), cfg, ctrls...)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g, logger
}

// arrange replaces a player's hand and draw pile and resets the card totals.
// deck is listed top first.
func arrange(g *Game, player int, hand []string, deck ...string) {
	p := g.State.Players[player]
	p.Hand = append([]string(nil), hand...)
	p.Deck = nil
	for i := len(deck) - 1; i >= 0; i-- {
		p.Deck = append(p.Deck, deck[i])
	}
	p.Discard = nil
	g.State.recordTotals()
}

func mustApply(t *testing.T, g *Game, a Action) Outcome {
	t.Helper()
	out, err := g.Apply(context.Background(), a)
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(g.State.Journal()))
		t.Fatalf("Apply(%s): %v", a, err)
	}
	return out
}

func play(t *testing.T, g *Game, card string) Outcome {
	t.Helper()
	return mustApply(t, g, Action{Type: ActionPlayAction, Player: g.State.Current, Card: card})
}

func endPhase(t *testing.T, g *Game) {
	t.Helper()
	mustApply(t, g, Action{Type: ActionEndPhase, Player: g.State.Current})
}

func count(cards []string, name string) int {
	n := 0
	for _, c := range cards {
		if c == name {
			n++
		}
	}
	return n
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

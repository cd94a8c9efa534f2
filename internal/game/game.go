package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterkuimelis/dominion/internal/log"
)

// Result summarizes a finished (or interrupted) game.
type Result struct {
	Over    bool   `json:"over"`
	Winners []int  `json:"winners"`
	Scores  []int  `json:"scores"`
	Turn    int    `json:"turn"`
	Reason  string `json:"reason"`
}

// Game orchestrates a game: it owns the state, drives the turn phases and
// routes decisions to the player controllers.
type Game struct {
	State       *GameState
	Controllers []PlayerController
	Logger      log.EventLogger

	cfg        Config
	ctx        context.Context
	maxInvalid int
	transcript Transcript
	entry      *TranscriptEntry // transcript entry of the action being applied
	outcome    *Outcome
}

// NewGame sets up the supply, deals starting decks and opens turn 1 for
// player 0. There must be one controller per seat.
func NewGame(catalog Catalog, cfg Config, controllers ...PlayerController) (*Game, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cfg = cfg.withDefaults(len(controllers))
	n := len(cfg.Players)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("need %d-%d players, got %d", MinPlayers, MaxPlayers, n)
	}
	if len(controllers) != n {
		return nil, fmt.Errorf("%d players but %d controllers", n, len(controllers))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	gs := NewGameState(catalog, cfg.Players, cfg.Seed)
	gs.noShuffle = cfg.NoShuffle
	g := &Game{
		State:       gs,
		Controllers: controllers,
		Logger:      logger,
		cfg:         cfg,
		ctx:         context.Background(),
		maxInvalid:  cfg.MaxInvalid,
	}
	stored := cfg
	stored.Logger = nil
	g.transcript.Config = stored
	gs.observer = g.notify

	if err := buildSupply(gs, catalog, cfg); err != nil {
		return nil, err
	}
	if err := deal(gs, cfg); err != nil {
		return nil, err
	}
	if err := g.beginTurn(); err != nil {
		return nil, err
	}
	return g, nil
}

// Config returns the resolved configuration, including the seed actually used.
func (g *Game) Config() Config {
	return g.cfg
}

// Run loops asking the current player for a move and applying it until the
// game ends. Illegal moves are re-prompted, up to Config.MaxInvalid in a row
// from the same seat; cancellation is checked between top-level actions only.
func (g *Game) Run(ctx context.Context) (Result, error) {
	gs := g.State
	illegal := 0
	for gs.Phase != PhaseGameOver {
		if err := ctx.Err(); err != nil {
			return g.Result(), err
		}
		g.ctx = ctx
		actions := g.LegalActions()
		chosen, err := g.Controllers[gs.Current].ChooseAction(ctx, gs, actions)
		if err != nil {
			return g.Result(), err
		}
		if _, err := g.Apply(ctx, chosen); err != nil {
			if !errors.Is(err, ErrIllegalMove) {
				return g.Result(), err
			}
			illegal++
			if illegal >= g.maxInvalid {
				return g.Result(), fmt.Errorf("%w: player %d made %d illegal moves in a row: %w", ErrDecisionSource, gs.Current, illegal, err)
			}
			continue
		}
		illegal = 0
	}
	return g.Result(), nil
}

// Apply validates and executes one top-level action. An illegal action
// returns *IllegalMoveError and changes nothing. After every applied action
// the conservation invariant is checked; a violation aborts the game.
func (g *Game) Apply(ctx context.Context, a Action) (Outcome, error) {
	gs := g.State
	if gs.Phase == PhaseGameOver {
		return Outcome{}, ErrGameOver
	}
	if reason := g.illegalReason(a); reason != "" {
		g.notify(log.NewIllegalMoveEvent(gs.Turn, gs.phase(), a.Player, a.String(), reason))
		return Outcome{}, &IllegalMoveError{Action: a, Reason: reason}
	}

	g.ctx = ctx
	out := Outcome{Action: a}
	g.transcript.Entries = append(g.transcript.Entries, TranscriptEntry{Player: a.Player, Action: a})
	g.entry = &g.transcript.Entries[len(g.transcript.Entries)-1]
	g.outcome = &out
	err := g.execute(a)
	g.entry, g.outcome = nil, nil
	if err != nil {
		return out, err
	}

	if err := gs.CheckConservation(); err != nil {
		g.finish("aborted: " + err.Error())
		return out, err
	}
	return out, nil
}

func (g *Game) execute(a Action) error {
	gs := g.State
	switch a.Type {
	case ActionPlayAction:
		return g.playAction(a.Player, a.Card)
	case ActionPlayTreasure:
		return g.playTreasure(a.Player, a.Card)
	case ActionPlayAllTreasures:
		for _, name := range clone(gs.Players[a.Player].Hand) {
			if card := gs.Card(name); card != nil && card.IsTreasure() {
				if err := g.playTreasure(a.Player, name); err != nil {
					return err
				}
			}
		}
		return nil
	case ActionBuy:
		return g.buy(a.Player, a.Card)
	case ActionEndPhase:
		if gs.Phase == PhaseAction {
			g.setPhase(PhaseBuy)
			return nil
		}
		return g.endTurn()
	}
	return fmt.Errorf("unknown action type %d", a.Type)
}

// playAction spends an action, moves the card into play and resolves it.
func (g *Game) playAction(player int, name string) error {
	gs := g.State
	card := gs.Card(name)
	if err := gs.moveCards(player, ZoneHand, ZonePlay, []string{name}); err != nil {
		return err
	}
	gs.emit(log.NewPlayEvent(gs.Turn, gs.phase(), player, name))
	gs.AddCounter(player, CounterActions, -1)
	return g.resolve(player, card)
}

func (g *Game) playTreasure(player int, name string) error {
	gs := g.State
	card := gs.Card(name)
	if err := gs.moveCards(player, ZoneHand, ZonePlay, []string{name}); err != nil {
		return err
	}
	gs.emit(log.NewPlayEvent(gs.Turn, gs.phase(), player, name))
	if card.Coins != 0 {
		gs.AddCounter(player, CounterCoins, card.Coins)
	}
	if card.Effect != nil {
		return g.resolve(player, card)
	}
	return nil
}

func (g *Game) buy(player int, name string) error {
	gs := g.State
	cost := gs.Cost(name)
	if err := gs.Gain(player, name, ZoneDiscard); err != nil {
		return err
	}
	gs.emit(log.NewBuyEvent(gs.Turn, gs.phase(), player, name, cost))
	gs.AddCounter(player, CounterCoins, -cost)
	gs.AddCounter(player, CounterBuys, -1)
	return nil
}

func (g *Game) setPhase(p Phase) {
	gs := g.State
	gs.Phase = p
	gs.emit(log.NewPhaseChangeEvent(gs.Turn, gs.phase(), gs.Current))
}

// cleanup discards play and hand, draws a new hand and zeroes the counters.
func (g *Game) cleanup() {
	gs := g.State
	pi := gs.Current
	p := gs.Players[pi]
	g.setPhase(PhaseCleanup)
	gs.MoveAll(pi, ZonePlay, ZoneDiscard)
	gs.MoveAll(pi, ZoneHand, ZoneDiscard)
	gs.MoveAll(pi, ZoneRevealed, ZoneDiscard)
	gs.AddCounter(pi, CounterActions, -p.Actions)
	gs.AddCounter(pi, CounterBuys, -p.Buys)
	gs.AddCounter(pi, CounterCoins, -p.Coins)
	gs.Draw(pi, g.cfg.HandSize)
	p.TurnsTaken++
}

// endTurn runs cleanup, checks the end condition once and hands the turn on.
func (g *Game) endTurn() error {
	g.cleanup()
	if reason, over := g.endCondition(); over {
		g.finish(reason)
		return nil
	}
	gs := g.State
	gs.Current = (gs.Current + 1) % len(gs.Players)
	if gs.Current == 0 {
		gs.Turn++
	}
	return g.beginTurn()
}

// beginTurn opens the Action phase for the current player and resolves any
// Duration effects scheduled for it.
func (g *Game) beginTurn() error {
	gs := g.State
	pi := gs.Current
	gs.Phase = PhaseAction
	gs.emit(log.NewTurnEvent(gs.Turn, pi))
	gs.AddCounter(pi, CounterActions, 1)
	gs.AddCounter(pi, CounterBuys, 1)
	return g.resolveDurations(pi)
}

// finish scores the game and enters the terminal state.
func (g *Game) finish(reason string) {
	gs := g.State
	gs.Phase = PhaseGameOver
	scores := gs.Scores()
	for i, s := range scores {
		gs.emit(log.NewScoreEvent(gs.Turn, gs.phase(), i, s))
	}
	gs.Winners = winners(scores, gs.Players)
	names := make([]string, len(gs.Winners))
	for i, w := range gs.Winners {
		names[i] = gs.Players[w].Name
	}
	gs.Result = fmt.Sprintf("%s; winner: %s", reason, strings.Join(names, ", "))
	gs.emit(log.NewGameOverEvent(gs.Turn, gs.phase(), gs.Result))
}

// winners returns the seats with the highest score; ties go to the player
// with fewer turns, and remain shared otherwise.
func winners(scores []int, players []*Player) []int {
	var best []int
	for i := range scores {
		if len(best) == 0 {
			best = []int{i}
			continue
		}
		b := best[0]
		switch {
		case scores[i] > scores[b],
			scores[i] == scores[b] && players[i].TurnsTaken < players[b].TurnsTaken:
			best = []int{i}
		case scores[i] == scores[b] && players[i].TurnsTaken == players[b].TurnsTaken:
			best = append(best, i)
		}
	}
	return best
}

// Result returns the current result. Over is false while the game is running.
func (g *Game) Result() Result {
	gs := g.State
	return Result{
		Over:    gs.Phase == PhaseGameOver,
		Winners: append([]int(nil), gs.Winners...),
		Scores:  gs.Scores(),
		Turn:    gs.Turn,
		Reason:  gs.Result,
	}
}

// notify emits a game event through the logger and notifies every player.
func (g *Game) notify(event log.GameEvent) {
	g.Logger.Log(event)
	for _, c := range g.Controllers {
		_ = c.Notify(g.ctx, event)
	}
}

func (g *Game) record(resp Response) {
	if g.entry != nil {
		g.entry.Responses = append(g.entry.Responses, resp)
	}
}

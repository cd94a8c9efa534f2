package game

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/peterkuimelis/dominion/internal/log"
)

func TestSetupSupplyAndStartingHands(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	gs := g.State

	want := map[string]int{
		"Copper": 46, "Silver": 40, "Gold": 30,
		"Estate": 8, "Duchy": 8, "Province": 8, "Curse": 10,
		"Smithy": 10,
	}
	for card, n := range want {
		if got := gs.PileCount(card); got != n {
			t.Errorf("%s pile: want %d, got %d", card, n, got)
		}
	}
	if len(gs.SupplyOrder) != len(BasicCards)+len(FirstGameKingdom) {
		t.Errorf("Expected %d piles, got %d", len(BasicCards)+len(FirstGameKingdom), len(gs.SupplyOrder))
	}
	for i, p := range gs.Players {
		if len(p.Hand) != 5 || len(p.Deck) != 5 {
			t.Errorf("P%d: expected 5 in hand and 5 in deck, got %d/%d", i+1, len(p.Hand), len(p.Deck))
		}
	}
	if gs.Phase != PhaseAction || gs.Current != 0 || gs.Turn != 1 {
		t.Errorf("Expected P1's Action phase on turn 1, got %s P%d turn %d", gs.Phase, gs.Current+1, gs.Turn)
	}
	if p := gs.Players[0]; p.Actions != 1 || p.Buys != 1 || p.Coins != 0 {
		t.Errorf("Expected 1/1/0 counters, got %d/%d/%d", p.Actions, p.Buys, p.Coins)
	}
}

func TestPileSizes(t *testing.T) {
	tests := []struct {
		card    *Card
		players int
		want    int
	}{
		{Province(), 2, 8},
		{Province(), 4, 12},
		{Gardens(), 3, 12},
		{Curse(), 2, 10},
		{Curse(), 4, 30},
		{Copper(), 3, 39},
		{Smithy(), 6, 10},
	}
	for _, tt := range tests {
		if got := PileSize(tt.card, tt.players, nil); got != tt.want {
			t.Errorf("%s with %d players: want %d, got %d", tt.card.Name, tt.players, tt.want, got)
		}
	}
	if got := PileSize(Smithy(), 2, map[string]int{"Smithy": 3}); got != 3 {
		t.Errorf("Expected override 3, got %d", got)
	}
}

// TestTurnOneBuyAdvancesToNextPlayer: A plays all treasures, buys, ends turn; B's Action phase begins.
func TestTurnOneBuyAdvancesToNextPlayer(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, logger := newTestGame(t, Config{}, nil, p0, p1)
	gs := g.State
	if !reflect.DeepEqual(gs.Players[0].Hand, []string{"Estate", "Estate", "Estate", "Copper", "Copper"}) {
		t.Fatalf("Unexpected unshuffled hand %v", gs.Players[0].Hand)
	}

	endPhase(t, g)
	if gs.Phase != PhaseBuy {
		t.Fatalf("Expected Buy phase, got %s", gs.Phase)
	}
	mustApply(t, g, Action{Type: ActionPlayAllTreasures, Player: 0})
	if gs.Players[0].Coins != 2 || len(gs.Players[0].Play) != 2 {
		t.Fatalf("Expected $2 from two Coppers in play, got $%d play=%v", gs.Players[0].Coins, gs.Players[0].Play)
	}
	mustApply(t, g, Action{Type: ActionBuy, Player: 0, Card: "Moat"})
	if gs.PileCount("Moat") != 9 {
		t.Errorf("Expected Moat pile at 9, got %d", gs.PileCount("Moat"))
	}
	if gs.Players[0].Buys != 0 || gs.Players[0].Coins != 0 {
		t.Errorf("Expected buy and coins spent, got buys=%d coins=%d", gs.Players[0].Buys, gs.Players[0].Coins)
	}
	endPhase(t, g)

	a := gs.Players[0]
	if count(a.Discard, "Moat") != 1 || len(a.Discard) != 6 {
		t.Errorf("Expected Moat plus the 5 played/held cards in discard, got %v", a.Discard)
	}
	if len(a.Play) != 0 || !reflect.DeepEqual(a.Hand, repeat("Copper", 5)) {
		t.Errorf("Expected cleanup to clear play and draw 5 Copper, play=%v hand=%v", a.Play, a.Hand)
	}
	if a.Actions != 0 || a.Buys != 0 || a.Coins != 0 || a.TurnsTaken != 1 {
		t.Errorf("Expected A's counters reset, got %+v", a)
	}
	if gs.Current != 1 || gs.Phase != PhaseAction || gs.Turn != 1 {
		t.Errorf("Expected B's Action phase on turn 1, got P%d %s turn %d", gs.Current+1, gs.Phase, gs.Turn)
	}
	if b := gs.Players[1]; b.Actions != 1 || b.Buys != 1 {
		t.Errorf("Expected B to start with 1 action and 1 buy, got %d/%d", b.Actions, b.Buys)
	}

	buys := logger.EventsOfType(log.EventBuy)
	if len(buys) != 1 || buys[0].Card != "Moat" || buys[0].Player != 0 {
		t.Errorf("Unexpected buy events %+v", buys)
	}
	if len(logger.EventsOfType(log.EventNewTurn)) != 2 {
		t.Error("Expected turn events for A and B")
	}
}

func TestTurnNumberAdvancesWhenWrapping(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	for i := 0; i < 4; i++ {
		endPhase(t, g)
	}
	if g.State.Turn != 2 || g.State.Current != 0 {
		t.Errorf("Expected turn 2 for P1, got turn %d P%d", g.State.Turn, g.State.Current+1)
	}
}

// TestProvinceEmptyEndsAtTurnBoundary: the last Provinces are gained mid-effect; the game ends only at cleanup.
func TestProvinceEmptyEndsAtTurnBoundary(t *testing.T) {
	coronation := &Card{
		Name:   "Coronation",
		Cost:   5,
		Types:  TypeAction,
		Effect: Seq(GainCard("Province", ZoneDiscard), GainCard("Province", ZoneDiscard), Draw(1)),
	}
	p0, p1 := twoPlayers(t)
	g, logger := newTestGame(t, Config{PileSizes: map[string]int{"Province": 2}}, []*Card{coronation}, p0, p1)
	arrange(g, 0, []string{"Coronation"}, "Copper")
	gs := g.State

	play(t, g, "Coronation")
	if gs.PileCount("Province") != 0 {
		t.Fatalf("Expected Province pile empty, got %d", gs.PileCount("Province"))
	}
	if gs.Phase == PhaseGameOver {
		t.Fatal("Game ended mid-turn")
	}
	if len(log.Filter(gs.Journal(), log.EventDraw)) == 0 {
		t.Error("Expected the rest of the script to run after the pile emptied")
	}

	endPhase(t, g)
	if gs.Phase != PhaseBuy {
		t.Fatalf("Expected Buy phase, got %s", gs.Phase)
	}
	endPhase(t, g)

	if gs.Phase != PhaseGameOver {
		t.Fatalf("Expected game over after cleanup, got %s", gs.Phase)
	}
	res := g.Result()
	if !res.Over || !reflect.DeepEqual(res.Winners, []int{0}) {
		t.Errorf("Expected P1 to win, got %+v", res)
	}
	if !strings.Contains(res.Reason, "Province pile is empty") {
		t.Errorf("Unexpected reason %q", res.Reason)
	}
	if res.Scores[0] != 12 || res.Scores[1] != 3 {
		t.Errorf("Expected scores [12 3], got %v", res.Scores)
	}
	if len(logger.EventsOfType(log.EventGameOver)) != 1 {
		t.Error("Expected a game over event")
	}
	if _, err := g.Apply(context.Background(), Action{Type: ActionEndPhase, Player: 1}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after the end, got %v", err)
	}
	if len(g.LegalActions()) != 0 {
		t.Error("Expected no legal actions after game over")
	}
}

func TestThreeEmptyPilesEndGame(t *testing.T) {
	empty := map[string]int{"Cellar": 0, "Moat": 0, "Village": 0}

	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{PileSizes: empty}, nil, p0, p1)
	if g.State.Phase == PhaseGameOver {
		t.Fatal("Game must not end before a turn boundary")
	}
	endPhase(t, g)
	endPhase(t, g)
	if g.State.Phase != PhaseGameOver || !strings.Contains(g.State.Result, "3 supply piles") {
		t.Errorf("Expected game over on 3 empty piles, got %s %q", g.State.Phase, g.State.Result)
	}

	p0, p1 = twoPlayers(t)
	g, _ = newTestGame(t, Config{PileSizes: empty, EmptyPiles: 4}, nil, p0, p1)
	endPhase(t, g)
	endPhase(t, g)
	if g.State.Phase == PhaseGameOver {
		t.Error("Expected the configured 4-pile rule to keep the game going")
	}
}

func TestDefaultEmptyPiles(t *testing.T) {
	for players, want := range map[int]int{2: 3, 4: 3, 5: 4, 6: 4} {
		if got := DefaultEmptyPiles(players); got != want {
			t.Errorf("%d players: want %d, got %d", players, want, got)
		}
	}
}

func TestFishingVillageResolvesNextTurn(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Fishing Village", "Copper"}, repeat("Copper", 10)...)
	gs := g.State

	play(t, g, "Fishing Village")
	p := gs.Players[0]
	if p.Actions != 2 || p.Coins != 1 {
		t.Errorf("Expected 2 actions and $1, got %d/$%d", p.Actions, p.Coins)
	}
	if !reflect.DeepEqual(p.SetAside, []string{"Fishing Village"}) || len(p.Play) != 0 {
		t.Fatalf("Expected Fishing Village set aside, set-aside=%v play=%v", p.SetAside, p.Play)
	}

	for i := 0; i < 4; i++ { // P1 Action, P1 Buy, P2 Action, P2 Buy
		endPhase(t, g)
	}

	if gs.Current != 0 || gs.Turn != 2 {
		t.Fatalf("Expected P1's turn 2, got P%d turn %d", gs.Current+1, gs.Turn)
	}
	if p.Actions != 2 || p.Coins != 1 {
		t.Errorf("Expected next-turn +1 Action +$1, got %d/$%d", p.Actions, p.Coins)
	}
	if len(p.SetAside) != 0 || !reflect.DeepEqual(p.Play, []string{"Fishing Village"}) {
		t.Errorf("Expected Fishing Village back in play, set-aside=%v play=%v", p.SetAside, p.Play)
	}
	if len(p.Pending) != 0 {
		t.Error("Expected pending effects to be consumed")
	}
}

func TestWinnersTieBreak(t *testing.T) {
	players := []*Player{{TurnsTaken: 5}, {TurnsTaken: 4}, {TurnsTaken: 4}}
	tests := []struct {
		scores []int
		want   []int
	}{
		{[]int{10, 8, 3}, []int{0}},
		{[]int{10, 10, 3}, []int{1}},
		{[]int{7, 9, 9}, []int{1, 2}},
	}
	for _, tt := range tests {
		if got := winners(tt.scores, players); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("winners(%v) = %v, want %v", tt.scores, got, tt.want)
		}
	}
}

// illegalOnce asks for a Province in the Action phase once, then ends every phase.
type illegalOnce struct {
	ScriptedController
	done bool
}

func (c *illegalOnce) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if !c.done {
		c.done = true
		return Action{Type: ActionBuy, Player: state.Current, Card: "Province"}, nil
	}
	return c.ScriptedController.ChooseAction(ctx, state, actions)
}

func TestRunRepromptsAfterIllegalMove(t *testing.T) {
	p0 := &illegalOnce{ScriptedController: *NewScriptedController(t, "P1")}
	p1 := NewScriptedController(t, "P2")
	g, logger := newTestGame(t, Config{MaxTurns: 1}, nil, p0, p1)

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Over || !strings.Contains(res.Reason, "turn limit") {
		t.Errorf("Expected the turn limit to end the game, got %+v", res)
	}
	if len(logger.EventsOfType(log.EventIllegalMove)) != 1 {
		t.Error("Expected the illegal move to be reported once")
	}
}

type alwaysIllegal struct{ ScriptedController }

func (c *alwaysIllegal) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	return Action{Type: ActionBuy, Player: state.Current, Card: "Province"}, nil
}

func TestRunAbortsAfterRepeatedIllegalMoves(t *testing.T) {
	p0 := &alwaysIllegal{ScriptedController: *NewScriptedController(t, "P1")}
	p1 := NewScriptedController(t, "P2")
	g, logger := newTestGame(t, Config{MaxInvalid: 3}, nil, p0, p1)

	_, err := g.Run(context.Background())
	if !errors.Is(err, ErrDecisionSource) || !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("Expected a decision source failure wrapping the illegal move, got %v", err)
	}
	if n := len(logger.EventsOfType(log.EventIllegalMove)); n != 3 {
		t.Errorf("Expected 3 illegal move reports, got %d", n)
	}
	if g.State.Phase != PhaseAction || g.State.Turn != 1 {
		t.Errorf("Expected no state change, got turn %d %v", g.State.Turn, g.State.Phase)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunGreedyGameToCompletion(t *testing.T) {
	logger := log.NewMemoryLogger()
	cfg := Config{Seed: 99, MaxTurns: 80, Logger: logger}
	g, err := NewGame(BaseCatalog(), cfg, greedyController{}, greedyController{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Run: %v", err)
	}
	if !res.Over || len(res.Winners) == 0 {
		t.Fatalf("Expected a finished game with a winner, got %+v", res)
	}
	if err := g.State.CheckConservation(); err != nil {
		t.Fatal(err)
	}
	if len(logger.EventsOfType(log.EventScore)) != 2 {
		t.Error("Expected a score event per player")
	}
	t.Logf("Result: %s after %d turns", res.Reason, res.Turn)
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	p0, p1 := twoPlayers(t)
	tests := []struct {
		name  string
		cfg   Config
		ctrls []PlayerController
	}{
		{"one player", Config{}, []PlayerController{p0}},
		{"unknown kingdom card", Config{Kingdom: []string{"Nope"}}, []PlayerController{p0, p1}},
		{"duplicate kingdom card", Config{Kingdom: []string{"Smithy", "Smithy"}}, []PlayerController{p0, p1}},
		{"seat mismatch", Config{Players: []string{"a", "b", "c"}}, []PlayerController{p0, p1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGame(BaseCatalog(), tt.cfg, tt.ctrls...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

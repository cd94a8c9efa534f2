package game

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/peterkuimelis/dominion/internal/log"
)

func twoPlayers(t *testing.T) (*ScriptedController, *ScriptedController) {
	return NewScriptedController(t, "P1"), NewScriptedController(t, "P2")
}

// TestRepeatRecomputesCount: the repeat count grows when an earlier pass empties a pile.
func TestRepeatRecomputesCount(t *testing.T) {
	reckoner := &Card{
		Name:   "Reckoner",
		Cost:   3,
		Types:  TypeAction,
		Effect: Repeat(Count{Source: CountEmptyPiles, N: 1}, GainCard("Estate", ZoneDiscard)),
	}
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{Kingdom: []string{}, PileSizes: map[string]int{"Estate": 1}}, []*Card{reckoner}, p0, p1)
	arrange(g, 0, []string{"Reckoner"})

	out := play(t, g, "Reckoner")

	if len(out.Steps) != 2 {
		t.Fatalf("Expected 2 gain steps (count recomputed after the pile emptied), got %d: %+v", len(out.Steps), out.Steps)
	}
	if !out.Steps[0].Applied {
		t.Error("Expected first gain to apply")
	}
	if out.Steps[1].Applied || !strings.Contains(out.Steps[1].Reason, "Estate pile is empty") {
		t.Errorf("Expected second gain to be a no-op on the empty pile, got %+v", out.Steps[1])
	}
	if got := count(g.State.Players[0].Discard, "Estate"); got != 1 {
		t.Errorf("Expected 1 Estate gained, got %d", got)
	}
	if len(log.Filter(g.State.Journal(), log.EventNoOp)) != 1 {
		t.Error("Expected the no-op to be journaled")
	}
}

func TestThroneRoomPlaysSmithyTwice(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Throne Room", "Smithy", "Copper", "Copper", "Copper"}, repeat("Silver", 6)...)
	p0.AddCards("Smithy")

	play(t, g, "Throne Room")

	p := g.State.Players[0]
	if len(p.Hand) != 9 || count(p.Hand, "Silver") != 6 {
		t.Errorf("Expected 3 Copper + 6 Silver in hand, got %v", p.Hand)
	}
	if !reflect.DeepEqual(p.Play, []string{"Throne Room", "Smithy"}) {
		t.Errorf("Expected Throne Room and Smithy in play, got %v", p.Play)
	}
	if p.Actions != 0 {
		t.Errorf("Expected 0 actions (Smithy costs none when duplicated), got %d", p.Actions)
	}
	if len(p0.Requests) != 1 || !reflect.DeepEqual(p0.Requests[0].Cards, []string{"Smithy"}) {
		t.Errorf("Expected one request offering Smithy, got %+v", p0.Requests)
	}
}

func TestThroneRoomWithoutActionIsNoOp(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Throne Room", "Copper"})

	out := play(t, g, "Throne Room")
	if len(p0.Requests) != 0 {
		t.Errorf("Expected no decision with no Action in hand, got %d", len(p0.Requests))
	}
	if len(out.NoOps()) != 1 {
		t.Errorf("Expected a single no-op step, got %+v", out.Steps)
	}
}

func TestFeastUnderThroneRoom(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Throne Room", "Feast"})
	p0.AddCards("Feast").AddCards("Market").AddCards("Market")

	out := play(t, g, "Throne Room")

	gs := g.State
	if !reflect.DeepEqual(gs.Trash, []string{"Feast"}) {
		t.Errorf("Expected Feast trashed once, trash=%v", gs.Trash)
	}
	if count(gs.Players[0].Discard, "Market") != 2 {
		t.Errorf("Expected 2 Markets gained, discard=%v", gs.Players[0].Discard)
	}
	noops := out.NoOps()
	if len(noops) != 1 || noops[0].Op != OpTrashSelf {
		t.Errorf("Expected the second trash-self to be a no-op, got %+v", noops)
	}
}

func TestCellarDiscardsThenDrawsThatMany(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Cellar", "Estate", "Estate", "Copper", "Copper"}, "Gold", "Silver", "Copper")
	p0.AddCards("Estate", "Estate")

	play(t, g, "Cellar")

	p := g.State.Players[0]
	if !reflect.DeepEqual(p.Hand, []string{"Copper", "Copper", "Gold", "Silver"}) {
		t.Errorf("Unexpected hand %v", p.Hand)
	}
	if p.Actions != 1 {
		t.Errorf("Expected 1 action left, got %d", p.Actions)
	}
	if req := p0.Requests[0]; req.Min != 0 || req.Max != 4 {
		t.Errorf("Expected discard 0-4, got %d-%d", req.Min, req.Max)
	}
}

func TestRemodelGainsUpToTwoMore(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Remodel", "Estate", "Copper"})
	p0.AddCards("Estate").AddCards("Smithy")

	play(t, g, "Remodel")

	gs := g.State
	if !reflect.DeepEqual(gs.Trash, []string{"Estate"}) {
		t.Errorf("Expected Estate trashed, got %v", gs.Trash)
	}
	if count(gs.Players[0].Discard, "Smithy") != 1 || gs.PileCount("Smithy") != 9 {
		t.Error("Expected Smithy gained from the supply")
	}
	for _, c := range p0.Requests[1].Cards {
		if gs.Cost(c) > 4 {
			t.Errorf("Offered %s costing more than $4", c)
		}
	}
}

func TestMoneylender(t *testing.T) {
	t.Run("no copper", func(t *testing.T) {
		p0, p1 := twoPlayers(t)
		g, _ := newTestGame(t, Config{}, nil, p0, p1)
		arrange(g, 0, []string{"Moneylender", "Estate"})
		play(t, g, "Moneylender")
		if g.State.Players[0].Coins != 0 || len(p0.Requests) != 0 {
			t.Errorf("Expected no coins and no decision, coins=%d requests=%d", g.State.Players[0].Coins, len(p0.Requests))
		}
	})
	t.Run("trash copper", func(t *testing.T) {
		p0, p1 := twoPlayers(t)
		g, _ := newTestGame(t, Config{}, nil, p0, p1)
		arrange(g, 0, []string{"Moneylender", "Copper", "Estate"})
		p0.AddCards("Copper")
		play(t, g, "Moneylender")
		if g.State.Players[0].Coins != 3 {
			t.Errorf("Expected +$3, got %d", g.State.Players[0].Coins)
		}
		if !reflect.DeepEqual(p0.Requests[0].Cards, []string{"Copper"}) {
			t.Errorf("Expected only Copper offered, got %v", p0.Requests[0].Cards)
		}
	})
}

func TestInvalidResponseIsReissued(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, logger := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Chapel", "Copper", "Estate"})
	p0.AddCards("Gold").AddCards("Estate")

	play(t, g, "Chapel")

	if len(p0.Requests) != 2 {
		t.Fatalf("Expected the request to be issued twice, got %d", len(p0.Requests))
	}
	if !reflect.DeepEqual(p0.Requests[0], p0.Requests[1]) {
		t.Error("Expected the reissued request to be identical")
	}
	if !reflect.DeepEqual(g.State.Trash, []string{"Estate"}) {
		t.Errorf("Expected only Estate trashed, got %v", g.State.Trash)
	}
	if len(logger.EventsOfType(log.EventInvalidResponse)) != 1 {
		t.Error("Expected one invalid response event in the log")
	}
	if len(log.Filter(g.State.Journal(), log.EventInvalidResponse)) != 0 {
		t.Error("Invalid responses are not state mutations and must not be journaled")
	}
	if entries := g.Transcript().Entries; len(entries[len(entries)-1].Responses) != 2 {
		t.Error("Expected both responses in the transcript")
	}
}

func TestTooManyInvalidResponsesAborts(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{MaxInvalid: 2}, nil, p0, p1)
	arrange(g, 0, []string{"Chapel", "Copper"})
	p0.AddCards("Gold").AddCards("Gold", "Gold")

	_, err := g.Apply(context.Background(), Action{Type: ActionPlayAction, Player: 0, Card: "Chapel"})
	if !errors.Is(err, ErrDecisionSource) {
		t.Fatalf("Expected ErrDecisionSource, got %v", err)
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Expected the last validation error to be wrapped, got %v", err)
	}
}

func TestDecisionValidation(t *testing.T) {
	req := DecisionRequest{Kind: DecisionChooseCards, Cards: []string{"Copper", "Copper", "Estate"}, Min: 1, Max: 2}
	tests := []struct {
		name string
		req  DecisionRequest
		resp Response
		ok   bool
	}{
		{"subset", req, Response{Cards: []string{"Copper", "Copper"}}, true},
		{"too many copies", req, Response{Cards: []string{"Estate", "Estate"}}, false},
		{"too few", req, Response{}, false},
		{"not offered", req, Response{Cards: []string{"Gold"}}, false},
		{"order ok", DecisionRequest{Kind: DecisionChooseOrder, Cards: []string{"A", "B"}}, Response{Cards: []string{"B", "A"}}, true},
		{"order missing", DecisionRequest{Kind: DecisionChooseOrder, Cards: []string{"A", "B"}}, Response{Cards: []string{"B"}}, false},
		{"player ok", DecisionRequest{Kind: DecisionChoosePlayer, Players: []int{1, 2}}, Response{Player: 2}, true},
		{"player self", DecisionRequest{Kind: DecisionChoosePlayer, Players: []int{1, 2}}, Response{Player: 0}, false},
		{"options dup", DecisionRequest{Kind: DecisionChooseOption, Options: []string{"a", "b"}, Min: 2, Max: 2}, Response{Options: []int{0, 0}}, false},
		{"options range", DecisionRequest{Kind: DecisionChooseOption, Options: []string{"a", "b"}, Min: 1, Max: 1}, Response{Options: []int{2}}, false},
		{"yes no", DecisionRequest{Kind: DecisionYesNo}, Response{Yes: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.resp)
			if tt.ok && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("Expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestPawnChoosesTwoOptionsInOrder(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Pawn"}, "Gold")
	p0.AddOptions(3, 0)

	play(t, g, "Pawn")

	p := g.State.Players[0]
	if p.Coins != 1 || !reflect.DeepEqual(p.Hand, []string{"Gold"}) {
		t.Errorf("Expected +1 Card and +$1, hand=%v coins=%d", p.Hand, p.Coins)
	}
	if p.Actions != 0 || p.Buys != 1 {
		t.Errorf("Unchosen options applied: actions=%d buys=%d", p.Actions, p.Buys)
	}
}

func TestLibrarySetsAsideChosenActions(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Library", "Copper", "Copper", "Copper"}, "Smithy", "Silver", "Village", "Gold", "Gold", "Copper")
	p0.AddYesNo(true).AddYesNo(false)

	play(t, g, "Library")

	p := g.State.Players[0]
	if len(p.Hand) != 7 {
		t.Fatalf("Expected 7 cards in hand, got %v", p.Hand)
	}
	if count(p.Hand, "Smithy") != 0 || count(p.Hand, "Village") != 1 {
		t.Errorf("Expected Smithy set aside and Village kept, hand=%v", p.Hand)
	}
	if !reflect.DeepEqual(p.Discard, []string{"Smithy"}) || len(p.Revealed) != 0 {
		t.Errorf("Expected Smithy discarded afterwards, discard=%v revealed=%v", p.Discard, p.Revealed)
	}
	if !reflect.DeepEqual(p.Deck, []string{"Copper"}) {
		t.Errorf("Expected Copper left in deck, got %v", p.Deck)
	}
}

func TestSentryTrashesAndOrders(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	arrange(g, 0, []string{"Sentry"}, "Copper", "Curse", "Gold", "Silver")
	p0.AddCards("Curse")

	// Trash Curse; discard nothing; the only card left needs no ordering.
	play(t, g, "Sentry")

	p := g.State.Players[0]
	if !reflect.DeepEqual(g.State.Trash, []string{"Curse"}) {
		t.Errorf("Expected Curse trashed, got %v", g.State.Trash)
	}
	if !reflect.DeepEqual(p.Deck, []string{"Silver", "Gold"}) {
		t.Errorf("Expected Gold back on top, deck=%v", p.Deck)
	}

	p0b, p1b := twoPlayers(t)
	g, _ = newTestGame(t, Config{}, nil, p0b, p1b)
	arrange(g, 0, []string{"Sentry"}, "Copper", "Gold", "Silver")
	p0b.AddCards().AddCards().AddCards("Gold", "Silver")
	play(t, g, "Sentry")

	deck := g.State.Players[0].Deck
	if deck[len(deck)-1] != "Silver" {
		t.Errorf("Expected Silver on top after ordering, deck=%v", deck)
	}
	if last := p0b.Requests[len(p0b.Requests)-1]; last.Kind != DecisionChooseOrder {
		t.Errorf("Expected a choose-order request, got %s", last.Kind)
	}
}

func TestTargetPlayerAffectsOnlyChosen(t *testing.T) {
	courier := &Card{
		Name:   "Courier",
		Cost:   3,
		Types:  TypeAction,
		Effect: &Effect{Op: OpTargetPlayer, Children: []*Effect{GainCard("Curse", ZoneDiscard)}},
	}
	p0 := NewScriptedController(t, "P1")
	p1 := NewScriptedController(t, "P2")
	p2 := NewScriptedController(t, "P3")
	g, _ := newTestGame(t, Config{}, []*Card{courier}, p0, p1, p2)
	arrange(g, 0, []string{"Courier"})
	p0.AddPlayer(2)

	play(t, g, "Courier")

	if count(g.State.Players[2].Discard, "Curse") != 1 || count(g.State.Players[1].Discard, "Curse") != 0 {
		t.Error("Expected only P3 to gain a Curse")
	}
	if !reflect.DeepEqual(p0.Requests[0].Players, []int{1, 2}) {
		t.Errorf("Expected targets [1 2], got %v", p0.Requests[0].Players)
	}
}

func TestIllegalMoveMutatesNothing(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, logger := newTestGame(t, Config{}, nil, p0, p1)
	before := g.State.Snapshot()
	journal := len(g.State.Journal())

	tests := []struct {
		action Action
		reason string
	}{
		{Action{Type: ActionBuy, Player: 0, Card: "Copper"}, "Buy phase"},
		{Action{Type: ActionEndPhase, Player: 1}, "P1's turn"},
		{Action{Type: ActionPlayAction, Player: 0, Card: "Smithy"}, "not in your hand"},
		{Action{Type: ActionPlayTreasure, Player: 0, Card: "Copper"}, "Buy phase"},
	}
	for _, tt := range tests {
		_, err := g.Apply(context.Background(), tt.action)
		var ill *IllegalMoveError
		if !errors.As(err, &ill) {
			t.Fatalf("%s: expected IllegalMoveError, got %v", tt.action, err)
		}
		if !strings.Contains(ill.Reason, tt.reason) {
			t.Errorf("%s: expected reason containing %q, got %q", tt.action, tt.reason, ill.Reason)
		}
	}
	if !reflect.DeepEqual(before, g.State.Snapshot()) {
		t.Error("Illegal moves changed the state")
	}
	if len(g.State.Journal()) != journal {
		t.Error("Illegal moves were journaled")
	}
	if len(logger.EventsOfType(log.EventIllegalMove)) != len(tests) {
		t.Error("Expected every illegal move to be reported to the logger")
	}
	if len(g.Transcript().Entries) != 0 {
		t.Error("Illegal moves must not enter the transcript")
	}
}

func TestBuyRequiresCoins(t *testing.T) {
	p0, p1 := twoPlayers(t)
	g, _ := newTestGame(t, Config{}, nil, p0, p1)
	endPhase(t, g)

	_, err := g.Apply(context.Background(), Action{Type: ActionBuy, Player: 0, Card: "Gold"})
	if !errors.Is(err, ErrIllegalMove) || !strings.Contains(err.Error(), "costs $6") {
		t.Fatalf("Expected insufficient coins, got %v", err)
	}
}

func TestSettleRecordsRejectedMoveAsNoOp(t *testing.T) {
	gs := newBareState(t)
	g := &Game{State: gs}
	f := newFrame(0, &Card{Name: "Library"})
	e := &Effect{Op: OpDrawUntil}
	p := gs.Players[0]
	p.Revealed = []string{"Silver"}

	if g.settle(f, e, ZoneRevealed, ZoneDiscard, []string{"Gold"}) {
		t.Fatal("Expected moving a missing card to be rejected")
	}
	noops := log.Filter(gs.Journal(), log.EventNoOp)
	if len(noops) != 1 || !strings.Contains(noops[0].Details, "not in") {
		t.Fatalf("Expected one no-op naming the missing card, got %+v", noops)
	}
	if len(p.Revealed) != 1 || len(p.Discard) != 0 {
		t.Errorf("Expected nothing to move, revealed=%v discard=%v", p.Revealed, p.Discard)
	}

	if !g.settle(f, e, ZoneRevealed, ZoneDiscard, []string{"Silver"}) {
		t.Fatal("Expected the move to succeed")
	}
	if len(p.Revealed) != 0 || count(p.Discard, "Silver") != 1 {
		t.Errorf("Expected Silver discarded, revealed=%v discard=%v", p.Revealed, p.Discard)
	}
}

// Package bot provides automated players for solo games and simulations.
package bot

import (
	"context"
	"sort"

	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
)

// BigMoney buys the most valuable money or Victory card it can afford from
// a priority list. With a Terminal set it also buys up to Copies of that
// card and plays it whenever it has an action.
type BigMoney struct {
	Terminal string
	Copies   int
}

// New returns a Big Money bot, optionally with one preferred Action card.
func New(terminal string) *BigMoney {
	b := &BigMoney{Terminal: terminal}
	if terminal != "" {
		b.Copies = 2
	}
	return b
}

func (b *BigMoney) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	find := func(t game.ActionType, card string) (game.Action, bool) {
		for _, a := range actions {
			if a.Type == t && (card == "" || a.Card == card) {
				return a, true
			}
		}
		return game.Action{}, false
	}

	if state.Phase == game.PhaseAction {
		if b.Terminal != "" {
			if a, ok := find(game.ActionPlayAction, b.Terminal); ok {
				return a, nil
			}
		}
		a, _ := find(game.ActionEndPhase, "")
		return a, nil
	}

	if a, ok := find(game.ActionPlayAllTreasures, ""); ok {
		return a, nil
	}
	for _, card := range b.buyList(state) {
		if a, ok := find(game.ActionBuy, card); ok {
			return a, nil
		}
	}
	a, _ := find(game.ActionEndPhase, "")
	return a, nil
}

// buyList is the priority order for this turn. Duchies come in once the
// Provinces run low, Estates at the very end.
func (b *BigMoney) buyList(state *game.GameState) []string {
	me := state.CurrentPlayer()
	provinces := state.PileCount("Province")
	list := []string{"Province"}
	if provinces <= 4 {
		list = append(list, "Duchy")
	}
	if provinces <= 2 {
		list = append(list, "Estate")
	}
	list = append(list, "Gold")
	if b.Terminal != "" && ownedCount(me, b.Terminal) < b.Copies {
		list = append(list, b.Terminal)
	}
	return append(list, "Silver")
}

func ownedCount(p *game.Player, card string) int {
	n := 0
	for _, c := range p.Owned() {
		if c == card {
			n++
		}
	}
	return n
}

func (b *BigMoney) Decide(ctx context.Context, state *game.GameState, req game.DecisionRequest) (game.Response, error) {
	switch req.Kind {
	case game.DecisionReaction:
		// always reveal
		return game.Response{Cards: append([]string(nil), req.Cards...)}, nil
	case game.DecisionYesNo:
		return game.Response{Yes: true}, nil
	case game.DecisionChoosePlayer:
		return game.Response{Player: req.Players[0]}, nil
	case game.DecisionChooseOption:
		opts := make([]int, req.Min)
		for i := range opts {
			opts[i] = i
		}
		return game.Response{Options: opts}, nil
	case game.DecisionChooseOrder:
		// best card on top
		order := append([]string(nil), req.Cards...)
		sort.SliceStable(order, func(i, j int) bool { return value(state, order[i]) < value(state, order[j]) })
		return game.Response{Cards: order}, nil
	}
	return game.Response{Cards: b.pickCards(state, req)}, nil
}

// pickCards takes the most valuable card when the choice is a gain or is
// made against another player, and otherwise gives up only junk.
func (b *BigMoney) pickCards(state *game.GameState, req game.DecisionRequest) []string {
	sorted := append([]string(nil), req.Cards...)
	if !fromOwnCards(state, req) {
		sort.SliceStable(sorted, func(i, j int) bool { return value(state, sorted[i]) > value(state, sorted[j]) })
		return sorted[:max(req.Min, 1)]
	}
	sort.SliceStable(sorted, func(i, j int) bool { return value(state, sorted[i]) < value(state, sorted[j]) })
	n := req.Min
	for n < req.Max && n < len(sorted) && value(state, sorted[n]) <= 0 {
		n++
	}
	return sorted[:n]
}

// fromOwnCards reports whether any offered card sits in the decider's hand
// or revealed cards.
func fromOwnCards(state *game.GameState, req game.DecisionRequest) bool {
	p := state.Players[req.Player]
	for _, c := range req.Cards {
		if contains(p.Hand, c) || contains(p.Revealed, c) {
			return true
		}
	}
	return false
}

func contains(cards []string, name string) bool {
	for _, c := range cards {
		if c == name {
			return true
		}
	}
	return false
}

// value is a rough worth of holding a card: Curses and Estates are junk,
// treasure counts by its coins, anything else by its cost.
func value(state *game.GameState, name string) int {
	card := state.Card(name)
	if card == nil {
		return 0
	}
	switch {
	case card.Is(game.TypeCurse):
		return -2
	case card.IsVictory() && !card.IsAction() && !card.IsTreasure():
		return -1
	case card.IsTreasure():
		return card.Coins * 2
	}
	return card.Cost
}

func (b *BigMoney) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

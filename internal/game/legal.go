package game

import (
	"fmt"

	"github.com/peterkuimelis/dominion/internal/log"
)

// distinct returns the first occurrence of each card, preserving order.
func distinct(cards []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cards {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// handOfType returns the distinct cards in a player's hand carrying every tag in t.
func (g *Game) handOfType(player int, t CardType) []string {
	var out []string
	for _, name := range distinct(g.State.Players[player].Hand) {
		if card := g.State.Card(name); card != nil && card.Is(t) {
			out = append(out, name)
		}
	}
	return out
}

// reactionsInHand returns the distinct Reaction cards a player could reveal.
func (g *Game) reactionsInHand(player int) []string {
	var out []string
	for _, name := range g.handOfType(player, TypeReaction) {
		if g.State.Card(name).IsReaction() {
			out = append(out, name)
		}
	}
	return out
}

// LegalActions computes every top-level move available to the current player.
func (g *Game) LegalActions() []Action {
	gs := g.State
	if gs.Phase == PhaseGameOver {
		return nil
	}
	pi := gs.Current
	p := gs.Players[pi]
	var actions []Action

	switch gs.Phase {
	case PhaseAction:
		if p.Actions > 0 {
			for _, name := range g.handOfType(pi, TypeAction) {
				actions = append(actions, Action{
					Type:   ActionPlayAction,
					Player: pi,
					Card:   name,
					Desc:   fmt.Sprintf("Play %s", name),
				})
			}
		}
		actions = append(actions, Action{Type: ActionEndPhase, Player: pi, Desc: "End Action phase"})

	case PhaseBuy:
		treasures := g.handOfType(pi, TypeTreasure)
		for _, name := range treasures {
			actions = append(actions, Action{
				Type:   ActionPlayTreasure,
				Player: pi,
				Card:   name,
				Desc:   fmt.Sprintf("Play %s", name),
			})
		}
		if len(treasures) > 0 {
			actions = append(actions, Action{Type: ActionPlayAllTreasures, Player: pi, Desc: "Play all Treasures"})
		}
		if p.Buys > 0 {
			for _, name := range gs.SupplyOrder {
				cost := gs.Cost(name)
				if gs.Supply[name].Count > 0 && cost <= p.Coins {
					actions = append(actions, Action{
						Type:   ActionBuy,
						Player: pi,
						Card:   name,
						Desc:   fmt.Sprintf("Buy %s ($%d)", name, cost),
					})
				}
			}
		}
		actions = append(actions, Action{Type: ActionEndPhase, Player: pi, Desc: "End turn"})
	}
	return actions
}

// IsLegal reports whether a matches one of the current legal moves.
func (g *Game) IsLegal(a Action) bool {
	for _, l := range g.LegalActions() {
		if l.sameMove(a) {
			return true
		}
	}
	return false
}

// illegalReason explains why a is not legal, or returns "" if it is.
func (g *Game) illegalReason(a Action) string {
	if g.IsLegal(a) {
		return ""
	}
	gs := g.State
	if gs.Phase == PhaseGameOver {
		return "the game is over"
	}
	if a.Player != gs.Current {
		return fmt.Sprintf("it is %s's turn", log.PlayerName(gs.Current))
	}
	p := gs.Players[a.Player]
	card := gs.Card(a.Card)

	switch a.Type {
	case ActionPlayAction:
		switch {
		case gs.Phase != PhaseAction:
			return "Action cards can only be played in the Action phase"
		case p.Actions == 0:
			return "no actions remaining"
		case card == nil || !card.IsAction():
			return fmt.Sprintf("%q is not an Action card", a.Card)
		default:
			return fmt.Sprintf("%s is not in your hand", a.Card)
		}
	case ActionPlayTreasure, ActionPlayAllTreasures:
		switch {
		case gs.Phase != PhaseBuy:
			return "Treasures can only be played in the Buy phase"
		case a.Type == ActionPlayAllTreasures:
			return "no Treasures in hand"
		case card == nil || !card.IsTreasure():
			return fmt.Sprintf("%q is not a Treasure", a.Card)
		default:
			return fmt.Sprintf("%s is not in your hand", a.Card)
		}
	case ActionBuy:
		pile, inSupply := gs.Supply[a.Card]
		switch {
		case gs.Phase != PhaseBuy:
			return "cards can only be bought in the Buy phase"
		case p.Buys == 0:
			return "no buys remaining"
		case !inSupply:
			return fmt.Sprintf("%q is not in the supply", a.Card)
		case pile.Count == 0:
			return fmt.Sprintf("the %s pile is empty", a.Card)
		default:
			return fmt.Sprintf("%s costs $%d, you have $%d", a.Card, gs.Cost(a.Card), p.Coins)
		}
	}
	return "not a legal move"
}

// endCondition reports whether the game ends at this turn boundary.
func (g *Game) endCondition() (string, bool) {
	gs := g.State
	if pile, ok := gs.Supply[g.cfg.EndCard]; ok && pile.Count == 0 {
		return fmt.Sprintf("the %s pile is empty", g.cfg.EndCard), true
	}
	if n := gs.EmptyPiles(); n >= g.cfg.EmptyPiles {
		return fmt.Sprintf("%d supply piles are empty", n), true
	}
	if g.cfg.MaxTurns > 0 && gs.Turn >= g.cfg.MaxTurns && gs.Current == len(gs.Players)-1 {
		return fmt.Sprintf("turn limit reached (%d turns)", g.cfg.MaxTurns), true
	}
	return "", false
}

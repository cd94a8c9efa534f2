package game

import (
	"fmt"

	"github.com/peterkuimelis/dominion/internal/log"
)

// WindowState is the state of a reaction window.
type WindowState int

const (
	WindowClosed WindowState = iota
	WindowOpen
	WindowResolved
)

func (s WindowState) String() string {
	switch s {
	case WindowClosed:
		return "closed"
	case WindowOpen:
		return "open"
	case WindowResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ReactionWindow is the interval in which an attacked player may reveal
// Reaction cards before the attack applies to them.
type ReactionWindow struct {
	Target   int
	Attacker int
	Source   string
	State    WindowState
	Revealed []string
	Blocked  bool
}

// reactionWindow offers target every distinct Reaction card in hand as one
// combined choice. Revealed reactions run their own effects; a blocking one
// negates the attack for this target only.
func (g *Game) reactionWindow(f *frame, target int) (bool, error) {
	gs := g.State
	w := &ReactionWindow{Target: target, Attacker: f.player, Source: f.sourceName(), State: WindowOpen}
	gs.window = w
	defer func() { gs.window = nil }()
	gs.emit(log.NewReactionWindowEvent(gs.Turn, gs.phase(), target, w.Source, WindowOpen.String()))

	if cands := g.reactionsInHand(target); len(cands) > 0 {
		resp, err := g.decide(DecisionRequest{
			Player: target,
			Kind:   DecisionReaction,
			Prompt: fmt.Sprintf("%s plays %s against you. Reveal reactions?", log.PlayerName(f.player), w.Source),
			Source: w.Source,
			Cards:  cands,
			Min:    0,
			Max:    len(cands),
		})
		if err != nil {
			return false, err
		}
		for _, name := range resp.Cards {
			card := gs.Card(name)
			w.Revealed = append(w.Revealed, name)
			gs.emit(log.NewReactionRevealEvent(gs.Turn, gs.phase(), target, name))
			if card.Reaction.Effect != nil {
				rf := newFrame(target, card)
				rf.attacker = f.player
				if err := g.run(rf, card.Reaction.Effect); err != nil {
					return false, err
				}
			}
			if card.Reaction.Kind == ReactionBlock {
				w.Blocked = true
			}
		}
	}

	w.State = WindowResolved
	if w.Blocked {
		gs.emit(log.NewAttackBlockedEvent(gs.Turn, gs.phase(), target, w.Source))
	}
	gs.emit(log.NewReactionWindowEvent(gs.Turn, gs.phase(), target, w.Source, WindowResolved.String()))
	return w.Blocked, nil
}

package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/dominion/internal/log"
)

// PlayerController is the decision source for one seat. Human drivers
// (terminal, WebSocket, MCP) and bots all implement it.
type PlayerController interface {
	// ChooseAction presents the legal top-level moves and waits for one.
	ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error)

	// Decide answers a pending choice inside an effect. If the response is
	// invalid the same request is issued again.
	Decide(ctx context.Context, state *GameState, req DecisionRequest) (Response, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

type DecisionKind int

const (
	DecisionChooseCards  DecisionKind = iota // pick Min..Max cards from Cards
	DecisionChooseOrder                      // return Cards in a chosen order (last = top)
	DecisionYesNo                            // answer Yes
	DecisionChoosePlayer                     // pick one of Players
	DecisionChooseOption                     // pick Min..Max distinct indices into Options
	DecisionReaction                         // reveal any of the Reaction cards in Cards, or none to decline
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionChooseCards:
		return "choose-cards"
	case DecisionChooseOrder:
		return "choose-order"
	case DecisionYesNo:
		return "yes-no"
	case DecisionChoosePlayer:
		return "choose-player"
	case DecisionChooseOption:
		return "choose-option"
	case DecisionReaction:
		return "reaction"
	default:
		return "unknown"
	}
}

// DecisionRequest describes one pending choice. The legal set is computed
// when the request is created and stays fixed across reissues.
type DecisionRequest struct {
	Player  int          `json:"player"`
	Kind    DecisionKind `json:"kind"`
	Prompt  string       `json:"prompt"`
	Source  string       `json:"source,omitempty"`  // card whose effect is asking
	Cards   []string     `json:"cards,omitempty"`   // multiset of selectable cards
	Options []string     `json:"options,omitempty"` // labels for DecisionChooseOption
	Players []int        `json:"players,omitempty"` // selectable seats
	Min     int          `json:"min"`
	Max     int          `json:"max"`
}

// Response answers a DecisionRequest. Only the field matching the request
// kind is read.
type Response struct {
	Cards   []string `json:"cards,omitempty"`
	Options []int    `json:"options,omitempty"`
	Player  int      `json:"player,omitempty"`
	Yes     bool     `json:"yes,omitempty"`
}

func (r DecisionRequest) invalid(format string, args ...any) error {
	return &InvalidResponseError{Request: r, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a response against the request's legal set. Responses are
// never coerced: anything outside the set is rejected.
func (r DecisionRequest) Validate(resp Response) error {
	switch r.Kind {
	case DecisionChooseCards, DecisionReaction:
		if len(resp.Cards) < r.Min || len(resp.Cards) > r.Max {
			return r.invalid("chose %d card(s), need %d-%d", len(resp.Cards), r.Min, r.Max)
		}
		if _, ok := removeCards(r.Cards, resp.Cards); !ok {
			return r.invalid("%v is not a subset of %v", resp.Cards, r.Cards)
		}
	case DecisionChooseOrder:
		if len(resp.Cards) != len(r.Cards) {
			return r.invalid("ordered %d card(s), need all %d", len(resp.Cards), len(r.Cards))
		}
		if _, ok := removeCards(r.Cards, resp.Cards); !ok {
			return r.invalid("%v is not an ordering of %v", resp.Cards, r.Cards)
		}
	case DecisionYesNo:
	case DecisionChoosePlayer:
		for _, p := range r.Players {
			if p == resp.Player {
				return nil
			}
		}
		return r.invalid("player %d is not a legal target", resp.Player)
	case DecisionChooseOption:
		if len(resp.Options) < r.Min || len(resp.Options) > r.Max {
			return r.invalid("chose %d option(s), need %d-%d", len(resp.Options), r.Min, r.Max)
		}
		seen := make(map[int]bool)
		for _, o := range resp.Options {
			if o < 0 || o >= len(r.Options) {
				return r.invalid("option %d out of range", o)
			}
			if seen[o] {
				return r.invalid("option %d chosen twice", o)
			}
			seen[o] = true
		}
	default:
		return r.invalid("unknown decision kind %d", r.Kind)
	}
	return nil
}

// decide issues a request to the player's controller, reissuing it until a
// valid response arrives. Every response, valid or not, is recorded in the
// transcript so a replay sees the same sequence.
func (g *Game) decide(req DecisionRequest) (Response, error) {
	ctrl := g.Controllers[req.Player]
	for attempt := 1; ; attempt++ {
		resp, err := ctrl.Decide(g.ctx, g.State, req)
		if err != nil {
			return Response{}, fmt.Errorf("%w: player %d: %v", ErrDecisionSource, req.Player, err)
		}
		g.record(resp)
		verr := req.Validate(resp)
		if verr == nil {
			return resp, nil
		}
		g.notify(log.NewInvalidResponseEvent(g.State.Turn, g.State.phase(), req.Player, verr.Error()))
		if attempt >= g.maxInvalid {
			return Response{}, fmt.Errorf("%w: player %d gave %d invalid responses: %w", ErrDecisionSource, req.Player, attempt, verr)
		}
	}
}

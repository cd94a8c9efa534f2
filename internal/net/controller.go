package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
)

// NetworkController implements game.PlayerController over a stream
// connection carrying the JSON protocol.
type NetworkController struct {
	enc    *json.Encoder
	dec    *json.Decoder
	player int // seat this controller plays
	mu     sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn io.ReadWriter, player int) *NetworkController {
	return &NetworkController{
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
	}
}

// BuildStateView creates a StateView from the perspective of the given player.
// Other players' hands and every deck are hidden.
func BuildStateView(state *game.GameState, player int) *StateView {
	snap := state.Snapshot()
	sv := &StateView{
		Turn:       snap.Turn,
		Phase:      snap.Phase,
		Current:    snap.Current,
		IsYourTurn: snap.Current == player,
		TrashCount: len(snap.Trash),
		EmptyPiles: snap.EmptyPiles,
	}
	for i, ps := range snap.Players {
		pv := PlayerView{
			Seat:         i,
			Name:         ps.Name,
			HandCount:    len(ps.Hand),
			DeckCount:    len(ps.Deck),
			DiscardCount: len(ps.Discard),
			Play:         ps.Play,
			SetAside:     ps.SetAside,
			Revealed:     ps.Revealed,
			Actions:      ps.Actions,
			Buys:         ps.Buys,
			Coins:        ps.Coins,
		}
		if i == player {
			pv.Hand = ps.Hand
			sv.You = pv
			continue
		}
		sv.Others = append(sv.Others, pv)
	}
	for _, p := range snap.Supply {
		sv.Supply = append(sv.Supply, PileView(p))
	}
	return sv
}

// RequestToView numbers the answers of a decision request.
func RequestToView(state *game.GameState, req game.DecisionRequest) *RequestView {
	rv := &RequestView{
		Kind:   req.Kind.String(),
		Prompt: req.Prompt,
		Source: req.Source,
		Min:    req.Min,
		Max:    req.Max,
	}
	switch req.Kind {
	case game.DecisionChooseOption:
		for i, o := range req.Options {
			rv.Choices = append(rv.Choices, ChoiceView{Index: i, Label: o})
		}
	case game.DecisionChoosePlayer:
		for i, p := range req.Players {
			rv.Choices = append(rv.Choices, ChoiceView{Index: i, Label: state.Players[p].Name})
		}
	case game.DecisionYesNo:
	default:
		for i, c := range req.Cards {
			rv.Choices = append(rv.Choices, ChoiceView{Index: i, Label: c})
		}
	}
	return rv
}

// ResponseFromMessage maps a client answer onto a decision response.
// Out-of-range indices produce a response the game will reject and reissue.
func ResponseFromMessage(req game.DecisionRequest, msg ClientMessage) game.Response {
	switch req.Kind {
	case game.DecisionYesNo:
		return game.Response{Yes: msg.Answer}
	case game.DecisionChooseOption:
		return game.Response{Options: append([]int{}, msg.Indices...)}
	case game.DecisionChoosePlayer:
		if len(msg.Indices) != 1 || msg.Indices[0] < 0 || msg.Indices[0] >= len(req.Players) {
			return game.Response{Player: -1}
		}
		return game.Response{Player: req.Players[msg.Indices[0]]}
	}
	cards := []string{}
	for _, i := range msg.Indices {
		if i < 0 || i >= len(req.Cards) {
			cards = append(cards, "")
			continue
		}
		cards = append(cards, req.Cards[i])
	}
	return game.Response{Cards: cards}
}

// EventToView converts a game event for the wire.
func EventToView(event log.GameEvent) *EventView {
	return &EventView{
		Turn:    event.Turn,
		Phase:   event.Phase,
		Player:  event.Player,
		Type:    event.Type.String(),
		Card:    event.Card,
		Cards:   event.Cards,
		Details: event.Details,
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// ChooseAction implements game.PlayerController. An index outside the list
// is answered with an error message and the choice is asked again.
func (nc *NetworkController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	var views []ActionView
	for i, a := range actions {
		views = append(views, ActionView{Index: i, Desc: a.String()})
	}
	msg := ServerMessage{
		Type:    "choose_action",
		Actions: views,
		State:   BuildStateView(state, nc.player),
	}

	for {
		if err := ctx.Err(); err != nil {
			return game.Action{}, err
		}
		if err := nc.send(msg); err != nil {
			return game.Action{}, fmt.Errorf("send choose_action: %w", err)
		}
		resp, err := nc.recv()
		if err != nil {
			return game.Action{}, fmt.Errorf("recv action: %w", err)
		}
		if resp.Type == "action" && resp.Index >= 0 && resp.Index < len(actions) {
			return actions[resp.Index], nil
		}
		_ = nc.send(ServerMessage{Type: "error", Result: fmt.Sprintf("choose an action between 0 and %d", len(actions)-1)})
	}
}

// Decide implements game.PlayerController.
func (nc *NetworkController) Decide(ctx context.Context, state *game.GameState, req game.DecisionRequest) (game.Response, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	msg := ServerMessage{
		Type:    "decide",
		Request: RequestToView(state, req),
		State:   BuildStateView(state, nc.player),
	}
	if err := nc.send(msg); err != nil {
		return game.Response{}, fmt.Errorf("send decide: %w", err)
	}
	resp, err := nc.recv()
	if err != nil {
		return game.Response{}, fmt.Errorf("recv decision: %w", err)
	}
	return ResponseFromMessage(req, resp), nil
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "notify", Event: EventToView(event)})
}

// Seat returns the seat this controller plays.
func (nc *NetworkController) Seat() int { return nc.player }

// Send delivers any other server message (welcome, game_over, error).
func (nc *NetworkController) Send(msg ServerMessage) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(msg)
}

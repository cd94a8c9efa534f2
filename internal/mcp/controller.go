package mcp

import (
	"context"

	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
	"github.com/peterkuimelis/dominion/internal/net"
)

// MCPController implements game.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan net.ClientMessage
}

// NewMCPController creates a controller for the given player.
func NewMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan net.ClientMessage),
	}
}

func (c *MCPController) await(ctx context.Context, pending *PendingDecision) (net.ClientMessage, error) {
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return net.ClientMessage{}, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return net.ClientMessage{}, ctx.Err()
	}
}

// ChooseAction implements game.PlayerController. The tool handler checks
// the index before it is sent.
func (c *MCPController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	var views []net.ActionView
	for i, a := range actions {
		views = append(views, net.ActionView{Index: i, Desc: a.String()})
	}

	resp, err := c.await(ctx, &PendingDecision{
		Type:    DecisionChooseAction,
		Player:  c.player,
		State:   net.BuildStateView(state, c.player),
		Actions: views,
	})
	if err != nil {
		return game.Action{}, err
	}
	if resp.Index < 0 || resp.Index >= len(actions) {
		return actions[len(actions)-1], nil
	}
	return actions[resp.Index], nil
}

// Decide implements game.PlayerController. Answers the game rejects come
// back as a fresh pending decision.
func (c *MCPController) Decide(ctx context.Context, state *game.GameState, req game.DecisionRequest) (game.Response, error) {
	resp, err := c.await(ctx, &PendingDecision{
		Type:    DecisionDecide,
		Player:  c.player,
		State:   net.BuildStateView(state, c.player),
		Request: net.RequestToView(state, req),
	})
	if err != nil {
		return game.Response{}, err
	}
	return net.ResponseFromMessage(req, resp), nil
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*net.EventToView(event))
	return nil
}

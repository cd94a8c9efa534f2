package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterkuimelis/dominion/internal/log"
)

// TranscriptEntry is one applied top-level action and every decision
// response given while it resolved.
type TranscriptEntry struct {
	Player    int        `json:"player"`
	Action    Action     `json:"action"`
	Responses []Response `json:"responses,omitempty"`
}

// Transcript is enough to rebuild a game: the resolved config (with seed)
// and the ordered actions. The catalog is supplied separately.
type Transcript struct {
	Config  Config            `json:"config"`
	Entries []TranscriptEntry `json:"entries"`
}

// Transcript returns a copy of the game's transcript so far.
func (g *Game) Transcript() Transcript {
	t := Transcript{Config: g.transcript.Config}
	for _, e := range g.transcript.Entries {
		e.Responses = append([]Response(nil), e.Responses...)
		t.Entries = append(t.Entries, e)
	}
	return t
}

// replayFeed holds the recorded responses of the entry being replayed.
type replayFeed struct {
	responses []Response
	pos       int
}

type replayController struct {
	feed *replayFeed
}

func (r *replayController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	return Action{}, errors.New("replay: actions come from the transcript")
}

func (r *replayController) Decide(ctx context.Context, state *GameState, req DecisionRequest) (Response, error) {
	if r.feed.pos >= len(r.feed.responses) {
		return Response{}, fmt.Errorf("replay: no recorded response for %q", req.Prompt)
	}
	resp := r.feed.responses[r.feed.pos]
	r.feed.pos++
	return resp, nil
}

func (r *replayController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// Replay rebuilds a game by applying a transcript's actions to a fresh game
// created from the same config and seed. The result has the same state and
// journal as the recorded game.
func Replay(catalog Catalog, t Transcript, logger log.EventLogger) (*Game, error) {
	feed := &replayFeed{}
	ctrls := make([]PlayerController, len(t.Config.Players))
	for i := range ctrls {
		ctrls[i] = &replayController{feed: feed}
	}
	cfg := t.Config
	cfg.Logger = logger
	g, err := NewGame(catalog, cfg, ctrls...)
	if err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}
	ctx := context.Background()
	for i, e := range t.Entries {
		feed.responses, feed.pos = e.Responses, 0
		if _, err := g.Apply(ctx, e.Action); err != nil {
			return g, fmt.Errorf("replay entry %d (%s): %w", i, e.Action, err)
		}
		if feed.pos != len(feed.responses) {
			return g, fmt.Errorf("replay entry %d (%s): %d of %d responses used", i, e.Action, feed.pos, len(feed.responses))
		}
	}
	return g, nil
}

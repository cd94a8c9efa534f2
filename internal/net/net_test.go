package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/dominion/internal/bot"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseFromMessage(t *testing.T) {
	cards := game.DecisionRequest{Kind: game.DecisionChooseCards, Cards: []string{"Copper", "Estate", "Copper"}, Min: 0, Max: 3}
	players := game.DecisionRequest{Kind: game.DecisionChoosePlayer, Players: []int{1, 3}}

	tests := []struct {
		name string
		req  game.DecisionRequest
		msg  ClientMessage
		want game.Response
	}{
		{"cards", cards, ClientMessage{Indices: []int{2, 1}}, game.Response{Cards: []string{"Copper", "Estate"}}},
		{"no cards", cards, ClientMessage{}, game.Response{Cards: []string{}}},
		{"card out of range", cards, ClientMessage{Indices: []int{5}}, game.Response{Cards: []string{""}}},
		{"player", players, ClientMessage{Indices: []int{1}}, game.Response{Player: 3}},
		{"player out of range", players, ClientMessage{Indices: []int{2}}, game.Response{Player: -1}},
		{"yes", game.DecisionRequest{Kind: game.DecisionYesNo}, ClientMessage{Answer: true}, game.Response{Yes: true}},
		{"options", game.DecisionRequest{Kind: game.DecisionChooseOption, Options: []string{"a", "b"}}, ClientMessage{Indices: []int{1}}, game.Response{Options: []int{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponseFromMessage(tt.req, tt.msg))
		})
	}
}

func newTestGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.NewGame(game.BaseCatalog(), game.Config{Players: []string{"ann", "ben", "cat"}, Seed: 4},
		bot.New(""), bot.New(""), bot.New(""))
	require.NoError(t, err)
	return g
}

func TestBuildStateViewHidesOtherHands(t *testing.T) {
	g := newTestGame(t)
	sv := BuildStateView(g.State, 1)

	assert.Equal(t, 1, sv.Turn)
	assert.False(t, sv.IsYourTurn)
	assert.Equal(t, "ben", sv.You.Name)
	assert.Len(t, sv.You.Hand, 5)
	assert.Equal(t, 5, sv.You.DeckCount)
	require.Len(t, sv.Others, 2)
	for _, o := range sv.Others {
		assert.Nil(t, o.Hand)
		assert.Equal(t, 5, o.HandCount)
	}
	assert.Len(t, sv.Supply, len(g.State.SupplyOrder))
}

func TestRequestToViewNamesPlayers(t *testing.T) {
	g := newTestGame(t)
	rv := RequestToView(g.State, game.DecisionRequest{Kind: game.DecisionChoosePlayer, Prompt: "pick", Players: []int{2, 0}, Min: 1, Max: 1})
	assert.Equal(t, "choose-player", rv.Kind)
	assert.Equal(t, []ChoiceView{{Index: 0, Label: "cat"}, {Index: 1, Label: "ann"}}, rv.Choices)
}

// autoPlay answers every prompt as cheaply as possible: it always takes the
// last action (ending the phase) and gives the minimum answer.
func autoPlay(t *testing.T, conn net.Conn, name string) (welcome, over ServerMessage) {
	t.Helper()
	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	require.NoError(t, enc.Encode(ClientMessage{Type: "join", Name: name}))

	for {
		var msg ServerMessage
		require.NoError(t, dec.Decode(&msg))
		switch msg.Type {
		case "welcome":
			welcome = msg
		case "choose_action":
			require.NotEmpty(t, msg.Actions)
			require.NoError(t, enc.Encode(ClientMessage{Type: "action", Index: len(msg.Actions) - 1}))
		case "decide":
			req := msg.Request
			n := req.Min
			if req.Kind == "choose-order" {
				n = len(req.Choices)
			}
			indices := []int{}
			for i := 0; i < n; i++ {
				indices = append(indices, i)
			}
			require.NoError(t, enc.Encode(ClientMessage{Type: "choice", Indices: indices}))
		case "game_over", "error":
			return welcome, msg
		}
	}
}

func TestServeRunsGameWithJoinerAndBots(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv := &Server{
		Catalog:  game.BaseCatalog(),
		HostName: "host",
		Joiners:  1,
		Bots:     []string{"Smithy"},
		Seed:     8,
		MaxTurns: 3,
		Host:     bot.New("Militia"),
		Store:    st,
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	welcome, over := autoPlay(t, conn, "guest")
	require.NoError(t, <-done)

	assert.Equal(t, 1, welcome.Seat)
	assert.Equal(t, []string{"host", "guest", "P3 (Smithy bot)"}, welcome.Players)
	assert.Equal(t, game.FirstGameKingdom, welcome.Kingdom)

	assert.Equal(t, "game_over", over.Type)
	assert.True(t, strings.HasPrefix(over.Result, "turn limit reached (3 turns); winner: "), over.Result)
	assert.Len(t, over.Scores, 3)
	assert.NotEmpty(t, over.Winners)

	games, err := st.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, []string{"host", "guest", "P3 (Smithy bot)"}, games[0].Players)
}

func TestClientREPL(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()

	var out bytes.Buffer
	client := NewClient(clientConn, strings.NewReader("9\n2\ny\n2 1\n"), &out)
	done := make(chan error, 1)
	go func() { done <- client.RunREPL(context.Background()) }()

	enc := json.NewEncoder(server)
	dec := json.NewDecoder(server)

	require.NoError(t, enc.Encode(ServerMessage{Type: "welcome", Seat: 0, Players: []string{"ann", "ben"}, Kingdom: []string{"Moat"}}))
	require.NoError(t, enc.Encode(ServerMessage{
		Type:    "choose_action",
		Actions: []ActionView{{Index: 0, Desc: "Play Moat"}, {Index: 1, Desc: "End Action phase"}},
		State:   &StateView{Turn: 1, Phase: "Action", IsYourTurn: true, You: PlayerView{Name: "ann", Hand: []string{"Moat"}, Actions: 1, Buys: 1}},
	}))
	var reply ClientMessage
	require.NoError(t, dec.Decode(&reply))
	assert.Equal(t, ClientMessage{Type: "action", Index: 1}, reply)

	require.NoError(t, enc.Encode(ServerMessage{Type: "decide", Request: &RequestView{Kind: "yes-no", Prompt: "Reveal Moat?"}}))
	reply = ClientMessage{}
	require.NoError(t, dec.Decode(&reply))
	assert.True(t, reply.Answer)

	require.NoError(t, enc.Encode(ServerMessage{Type: "decide", Request: &RequestView{
		Kind:    "choose-cards",
		Prompt:  "Discard down to 3 cards",
		Source:  "Militia",
		Choices: []ChoiceView{{Index: 0, Label: "Copper"}, {Index: 1, Label: "Estate"}},
		Min:     2,
		Max:     2,
	}}))
	reply = ClientMessage{}
	require.NoError(t, dec.Decode(&reply))
	assert.Equal(t, []int{1, 0}, reply.Indices)

	require.NoError(t, enc.Encode(ServerMessage{Type: "game_over", Scores: []int{3, 5}, Winners: []int{1}, Result: "turn limit reached (1 turns)"}))
	require.NoError(t, <-done)

	text := out.String()
	assert.Contains(t, text, "You are ann")
	assert.Contains(t, text, "Enter a number between 1 and 2")
	assert.Contains(t, text, "[Militia] Discard down to 3 cards (select 2)")
	assert.Contains(t, text, "GAME OVER")
	assert.Contains(t, text, "Winner: ben")
}

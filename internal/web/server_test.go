package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/peterkuimelis/dominion/internal/bot"
	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestCardsAndKingdoms(t *testing.T) {
	kingdoms := &catalog.File{Kingdoms: []catalog.KingdomEntry{{Name: "Duel", Cards: []string{"Moat", "Smithy"}}}}
	ts := httptest.NewServer(NewServer(game.BaseCatalog(), kingdoms, nil, nil))
	defer ts.Close()

	var cards []CardInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/cards", &cards))
	require.Len(t, cards, len(game.BaseCatalog()))
	byName := map[string]CardInfo{}
	for _, c := range cards {
		byName[c.Name] = c
	}
	assert.Equal(t, "block", byName["Moat"].Reaction)
	assert.Equal(t, 6, byName["Gold"].Cost)
	assert.Equal(t, 3, byName["Gold"].Coins)
	assert.Equal(t, 6, byName["Province"].VP)

	var ks []KingdomInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/kingdoms", &ks))
	require.Len(t, ks, 2)
	assert.Equal(t, "First Game", ks[0].Name)
	assert.Equal(t, KingdomInfo{Number: 1, Name: "Duel", Cards: []string{"Moat", "Smithy"}}, ks[1])

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/games", nil))
}

func TestStoredGames(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	g, err := game.NewGame(game.BaseCatalog(), game.Config{Seed: 17, MaxTurns: 5}, bot.New("Smithy"), bot.New(""))
	require.NoError(t, err)
	_, err = g.Run(context.Background())
	require.NoError(t, err)
	id, err := st.SaveGame(context.Background(), g)
	require.NoError(t, err)

	ts := httptest.NewServer(NewServer(game.BaseCatalog(), nil, st, nil))
	defer ts.Close()

	var games []store.Summary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/games", &games))
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].ID)

	var info GameInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/games/"+id[:8], &info))
	assert.Equal(t, id, info.ID)
	assert.Equal(t, g.Result().Scores, info.Scores)
	assert.Equal(t, len(g.Logger.Events()), len(info.Log))
	assert.Contains(t, info.Log[len(info.Log)-1], "turn limit reached")

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/games/nope", nil))
}

func TestWebSocketBridge(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// a fake game host: expects the join, greets, asks once, then ends
	joined := make(chan string, 1)
	answered := make(chan int, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)
		var join struct{ Type, Name string }
		if dec.Decode(&join) != nil {
			return
		}
		joined <- join.Type + ":" + join.Name
		_ = enc.Encode(map[string]any{"type": "welcome", "seat": 1, "players": []string{"host", join.Name}})
		_ = enc.Encode(map[string]any{"type": "choose_action", "actions": []map[string]any{{"index": 0, "desc": "End turn"}}})
		var reply struct{ Index int }
		if dec.Decode(&reply) != nil {
			return
		}
		answered <- reply.Index
		_ = enc.Encode(map[string]any{"type": "game_over", "result": "done"})
	}()

	ts := httptest.NewServer(NewServer(game.BaseCatalog(), nil, nil, nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(map[string]string{"type": "connect", "addr": ln.Addr().String(), "name": "web"})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))
	assert.Equal(t, "join:web", <-joined)

	read := func() map[string]any {
		_, data, err := ws.Read(ctx)
		require.NoError(t, err)
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}
	assert.Equal(t, "welcome", read()["type"])
	assert.Equal(t, "choose_action", read()["type"])

	require.NoError(t, ws.Write(ctx, websocket.MessageText, []byte(`{"type":"action","index":0}`)))
	assert.Equal(t, 0, <-answered)
	over := read()
	assert.Equal(t, "game_over", over["type"])
	assert.Equal(t, "done", over["result"])
}

func TestWebSocketBadAddress(t *testing.T) {
	ts := httptest.NewServer(NewServer(game.BaseCatalog(), nil, nil, nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	require.NoError(t, ws.Write(ctx, websocket.MessageText, []byte(`{"type":"connect","addr":"127.0.0.1:1"}`)))
	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Could not connect")
}

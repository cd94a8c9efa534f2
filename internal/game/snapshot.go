package game

import (
	"encoding/json"
	"fmt"
)

// PlayerSnapshot is a read-only copy of one player's zones and counters.
type PlayerSnapshot struct {
	Name       string   `json:"name"`
	Deck       []string `json:"deck"`
	Hand       []string `json:"hand"`
	Discard    []string `json:"discard"`
	Play       []string `json:"play"`
	SetAside   []string `json:"set_aside,omitempty"`
	Revealed   []string `json:"revealed,omitempty"`
	Actions    int      `json:"actions"`
	Buys       int      `json:"buys"`
	Coins      int      `json:"coins"`
	Pending    []string `json:"pending,omitempty"`
	TurnsTaken int      `json:"turns_taken"`
}

// PileSnapshot is one supply pile.
type PileSnapshot struct {
	Card  string `json:"card"`
	Cost  int    `json:"cost"`
	Count int    `json:"count"`
}

// Snapshot is a read-only copy of the whole game state. It shares nothing
// with the live state.
type Snapshot struct {
	Turn       int              `json:"turn"`
	Phase      string           `json:"phase"`
	Current    int              `json:"current"`
	Players    []PlayerSnapshot `json:"players"`
	Supply     []PileSnapshot   `json:"supply"`
	Trash      []string         `json:"trash"`
	EmptyPiles int              `json:"empty_piles"`
	Result     string           `json:"result,omitempty"`
	Winners    []int            `json:"winners,omitempty"`
}

func clone(s []string) []string {
	return append([]string{}, s...)
}

// Snapshot returns a deep copy of all piles, counters, phase and turn.
func (gs *GameState) Snapshot() Snapshot {
	s := Snapshot{
		Turn:       gs.Turn,
		Phase:      gs.Phase.String(),
		Current:    gs.Current,
		Trash:      clone(gs.Trash),
		EmptyPiles: gs.EmptyPiles(),
		Result:     gs.Result,
		Winners:    append([]int(nil), gs.Winners...),
	}
	for _, p := range gs.Players {
		ps := PlayerSnapshot{
			Name:       p.Name,
			Deck:       clone(p.Deck),
			Hand:       clone(p.Hand),
			Discard:    clone(p.Discard),
			Play:       clone(p.Play),
			SetAside:   clone(p.SetAside),
			Revealed:   clone(p.Revealed),
			Actions:    p.Actions,
			Buys:       p.Buys,
			Coins:      p.Coins,
			TurnsTaken: p.TurnsTaken,
		}
		for _, pe := range p.Pending {
			ps.Pending = append(ps.Pending, pe.Source)
		}
		s.Players = append(s.Players, ps)
	}
	for _, name := range gs.SupplyOrder {
		s.Supply = append(s.Supply, PileSnapshot{Card: name, Cost: gs.Cost(name), Count: gs.Supply[name].Count})
	}
	return s
}

// Dump renders the full state as indented JSON for diagnostics.
func (gs *GameState) Dump() string {
	data, err := json.MarshalIndent(gs.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Sprintf("dump failed: %v", err)
	}
	return string(data)
}

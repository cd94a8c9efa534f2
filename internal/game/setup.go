package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/peterkuimelis/dominion/internal/log"
)

const (
	MinPlayers = 2
	MaxPlayers = 6

	defaultMaxInvalidResponses = 8
)

// BasicCards are always in the supply when the catalog defines them.
var BasicCards = []string{"Copper", "Silver", "Gold", "Estate", "Duchy", "Province", "Curse"}

// DefaultStartingDeck is 7 Copper and 3 Estate.
var DefaultStartingDeck = []string{
	"Copper", "Copper", "Copper", "Copper", "Copper", "Copper", "Copper",
	"Estate", "Estate", "Estate",
}

// Config holds configuration for creating a new game. A zero field takes
// its default.
type Config struct {
	Players      []string        `json:"players"`
	Kingdom      []string        `json:"kingdom"` // nil means FirstGameKingdom
	Seed         int64           `json:"seed"`    // 0 picks a random seed
	HandSize     int             `json:"hand_size,omitempty"`
	StartingDeck []string        `json:"starting_deck,omitempty"`
	PileSizes    map[string]int  `json:"pile_sizes,omitempty"`
	EndCard      string          `json:"end_card,omitempty"`    // game ends when this pile empties
	EmptyPiles   int             `json:"empty_piles,omitempty"` // or when this many piles are empty
	MaxTurns     int             `json:"max_turns,omitempty"`   // 0 = no limit
	MaxInvalid   int             `json:"max_invalid_responses,omitempty"`
	NoShuffle    bool            `json:"no_shuffle,omitempty"` // keep deck order (for deterministic tests)
	Logger       log.EventLogger `json:"-"`
}

// DefaultEmptyPiles is the number of empty supply piles that ends a game:
// 3 for 2-4 players, 4 for 5-6.
func DefaultEmptyPiles(players int) int {
	if players >= 5 {
		return 4
	}
	return 3
}

func (c Config) withDefaults(seats int) Config {
	if len(c.Players) == 0 {
		for i := 0; i < seats; i++ {
			c.Players = append(c.Players, log.PlayerName(i))
		}
	}
	if c.Kingdom == nil {
		c.Kingdom = append([]string(nil), FirstGameKingdom...)
	}
	if c.Seed == 0 {
		c.Seed = rand.Int64()
	}
	if c.HandSize == 0 {
		c.HandSize = DefaultHandSize
	}
	if len(c.StartingDeck) == 0 {
		c.StartingDeck = append([]string(nil), DefaultStartingDeck...)
	}
	if c.EndCard == "" {
		c.EndCard = "Province"
	}
	if c.EmptyPiles == 0 {
		c.EmptyPiles = DefaultEmptyPiles(len(c.Players))
	}
	if c.MaxInvalid == 0 {
		c.MaxInvalid = defaultMaxInvalidResponses
	}
	return c
}

// PileSize returns the starting size of a supply pile for the given player count.
func PileSize(card *Card, players int, overrides map[string]int) int {
	if n, ok := overrides[card.Name]; ok {
		return n
	}
	switch card.Name {
	case "Copper":
		return max(60-7*players, 0)
	case "Silver":
		return 40
	case "Gold":
		return 30
	case "Curse":
		return 10 * (players - 1)
	}
	if card.IsVictory() {
		if players == 2 {
			return 8
		}
		return 12
	}
	return 10
}

// buildSupply lays out the basic piles followed by the kingdom in the given order.
func buildSupply(gs *GameState, catalog Catalog, cfg Config) error {
	n := len(cfg.Players)
	add := func(name string) error {
		card, ok := catalog[name]
		if !ok {
			return fmt.Errorf("supply card %q not in catalog", name)
		}
		if _, dup := gs.Supply[name]; dup {
			return fmt.Errorf("supply card %q listed twice", name)
		}
		gs.Supply[name] = &Pile{Card: name, Count: PileSize(card, n, cfg.PileSizes)}
		gs.SupplyOrder = append(gs.SupplyOrder, name)
		return nil
	}
	for _, name := range BasicCards {
		if _, ok := catalog[name]; ok {
			if err := add(name); err != nil {
				return err
			}
		}
	}
	for _, name := range cfg.Kingdom {
		if err := add(name); err != nil {
			return err
		}
	}
	return nil
}

// deal gives every player the starting deck, shuffles it and draws a hand.
func deal(gs *GameState, cfg Config) error {
	for _, name := range cfg.StartingDeck {
		if gs.Card(name) == nil {
			return fmt.Errorf("starting deck card %q not in catalog", name)
		}
	}
	for _, p := range gs.Players {
		p.Deck = append([]string(nil), cfg.StartingDeck...)
		if !gs.noShuffle {
			gs.rng.Shuffle(len(p.Deck), func(i, j int) { p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i] })
		}
	}
	gs.recordTotals()
	for i := range gs.Players {
		gs.Draw(i, cfg.HandSize)
	}
	return nil
}

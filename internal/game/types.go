package game

import (
	"fmt"
	"strings"
)

// --- Enums ---

type Phase int

const (
	PhaseAction Phase = iota
	PhaseBuy
	PhaseCleanup
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAction:
		return "Action Phase"
	case PhaseBuy:
		return "Buy Phase"
	case PhaseCleanup:
		return "Cleanup Phase"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "None"
	}
}

// CardType is a set of type tags. A card can carry several (e.g. Action-Attack).
type CardType uint16

const (
	TypeAction CardType = 1 << iota
	TypeTreasure
	TypeVictory
	TypeCurse
	TypeAttack
	TypeReaction
	TypeDuration
)

var cardTypeNames = []struct {
	t    CardType
	name string
}{
	{TypeAction, "Action"},
	{TypeTreasure, "Treasure"},
	{TypeVictory, "Victory"},
	{TypeCurse, "Curse"},
	{TypeAttack, "Attack"},
	{TypeReaction, "Reaction"},
	{TypeDuration, "Duration"},
}

// Has reports whether every tag in o is present in t.
func (t CardType) Has(o CardType) bool {
	return o != 0 && t&o == o
}

// Any reports whether t shares at least one tag with o. A zero o matches everything.
func (t CardType) Any(o CardType) bool {
	return o == 0 || t&o != 0
}

func (t CardType) String() string {
	var parts []string
	for _, n := range cardTypeNames {
		if t&n.t != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "-")
}

// ParseCardType parses a dash-separated tag list such as "Action-Attack".
func ParseCardType(s string) (CardType, error) {
	var t CardType
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	for _, part := range strings.Split(s, "-") {
		part = strings.TrimSpace(part)
		found := false
		for _, n := range cardTypeNames {
			if strings.EqualFold(n.name, part) {
				t |= n.t
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown card type %q", part)
		}
	}
	return t, nil
}

// --- Zone types ---

// Zone names a place a card can be. The zero value is the discard pile,
// where gained cards go unless an effect says otherwise.
type Zone int

const (
	ZoneDiscard Zone = iota
	ZoneDeck
	ZoneHand
	ZonePlay
	ZoneSetAside
	ZoneRevealed
	ZoneSupply
	ZoneTrash
)

// ParseZone parses a zone name such as "hand" or "deck".
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return ZoneDiscard, nil
	case "deck", "draw", "topdeck":
		return ZoneDeck, nil
	case "hand":
		return ZoneHand, nil
	case "play":
		return ZonePlay, nil
	case "set-aside", "setaside":
		return ZoneSetAside, nil
	case "revealed":
		return ZoneRevealed, nil
	case "trash":
		return ZoneTrash, nil
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

func (z Zone) String() string {
	switch z {
	case ZoneDeck:
		return "Draw Pile"
	case ZoneHand:
		return "Hand"
	case ZoneDiscard:
		return "Discard Pile"
	case ZonePlay:
		return "Play Area"
	case ZoneSetAside:
		return "Set Aside"
	case ZoneRevealed:
		return "Revealed"
	case ZoneSupply:
		return "Supply"
	case ZoneTrash:
		return "Trash"
	default:
		return "Unknown"
	}
}

// Counter names a per-turn player counter.
type Counter int

const (
	CounterActions Counter = iota
	CounterBuys
	CounterCoins
)

func (c Counter) String() string {
	switch c {
	case CounterActions:
		return "actions"
	case CounterBuys:
		return "buys"
	case CounterCoins:
		return "coins"
	default:
		return "unknown"
	}
}

// --- Action types ---

type ActionType int

const (
	ActionPlayAction ActionType = iota
	ActionPlayTreasure
	ActionPlayAllTreasures
	ActionBuy
	ActionEndPhase
)

func (a ActionType) String() string {
	switch a {
	case ActionPlayAction:
		return "Play Action"
	case ActionPlayTreasure:
		return "Play Treasure"
	case ActionPlayAllTreasures:
		return "Play All Treasures"
	case ActionBuy:
		return "Buy"
	case ActionEndPhase:
		return "End Phase"
	default:
		return "Unknown"
	}
}

// Action is a top-level move chosen by the current player.
type Action struct {
	Type   ActionType `json:"type"`
	Player int        `json:"player"`
	Card   string     `json:"card,omitempty"` // card played or bought
	Desc   string     `json:"desc,omitempty"` // human-readable description
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	if a.Card != "" {
		return fmt.Sprintf("%s %s", a.Type, a.Card)
	}
	return a.Type.String()
}

// sameMove reports whether two actions describe the same move, ignoring descriptions.
func (a Action) sameMove(b Action) bool {
	return a.Type == b.Type && a.Player == b.Player && a.Card == b.Card
}

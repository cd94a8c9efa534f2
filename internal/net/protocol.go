package net

// Message types for the JSON protocol over TCP. Each message is one JSON
// value per line.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	Seat    int      `json:"seat,omitempty"`
	Players []string `json:"players,omitempty"`
	Kingdom []string `json:"kingdom,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_action"
	Actions []ActionView `json:"actions,omitempty"`
	State   *StateView   `json:"state,omitempty"`

	// For "decide"
	Request *RequestView `json:"request,omitempty"`

	// For "game_over" and "error"
	Winners []int  `json:"winners,omitempty"`
	Scores  []int  `json:"scores,omitempty"`
	Result  string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Turn    int      `json:"turn"`
	Phase   string   `json:"phase"`
	Player  int      `json:"player"`
	Type    string   `json:"type"`
	Card    string   `json:"card,omitempty"`
	Cards   []string `json:"cards,omitempty"`
	Details string   `json:"details"`
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index int    `json:"index"`
	Desc  string `json:"desc"`
}

// RequestView is a decision request with every answer numbered.
type RequestView struct {
	Kind    string       `json:"kind"`
	Prompt  string       `json:"prompt"`
	Source  string       `json:"source,omitempty"`
	Choices []ChoiceView `json:"choices,omitempty"`
	Min     int          `json:"min"`
	Max     int          `json:"max"`
}

// ChoiceView is one selectable card, option or player.
type ChoiceView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// StateView is the game state from one player's perspective.
type StateView struct {
	Turn       int          `json:"turn"`
	Phase      string       `json:"phase"`
	Current    int          `json:"current"`
	IsYourTurn bool         `json:"is_your_turn"`
	You        PlayerView   `json:"you"`
	Others     []PlayerView `json:"others"`
	Supply     []PileView   `json:"supply"`
	TrashCount int          `json:"trash_count"`
	EmptyPiles int          `json:"empty_piles"`
}

// PlayerView shows one player's visible zones.
type PlayerView struct {
	Seat         int      `json:"seat"`
	Name         string   `json:"name"`
	Hand         []string `json:"hand,omitempty"` // only for "you"
	HandCount    int      `json:"hand_count"`
	DeckCount    int      `json:"deck_count"`
	DiscardCount int      `json:"discard_count"`
	Play         []string `json:"play,omitempty"`
	SetAside     []string `json:"set_aside,omitempty"`
	Revealed     []string `json:"revealed,omitempty"`
	Actions      int      `json:"actions"`
	Buys         int      `json:"buys"`
	Coins        int      `json:"coins"`
}

// PileView is one supply pile.
type PileView struct {
	Card  string `json:"card"`
	Cost  int    `json:"cost"`
	Count int    `json:"count"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "action"
	Index int `json:"index"`

	// For "choice": indices into RequestView.Choices. For an order request
	// the indices give the new order, last on top.
	Indices []int `json:"indices,omitempty"`

	// For "yes_no"
	Answer bool `json:"answer,omitempty"`

	// For "join" (initial handshake)
	Name string `json:"name,omitempty"`
}

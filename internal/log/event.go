package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventNewTurn EventType = iota
	EventPhaseChange
	EventPlay
	EventBuy
	EventGain
	EventDraw
	EventShuffle
	EventDiscard
	EventTrash
	EventTopdeck
	EventReveal
	EventSetAside
	EventMove
	EventCounter
	EventReactionWindow
	EventReactionReveal
	EventAttackBlocked
	EventNoOp
	EventInvalidResponse
	EventIllegalMove
	EventGameOver
	EventScore
)

func (e EventType) String() string {
	switch e {
	case EventNewTurn:
		return "NewTurn"
	case EventPhaseChange:
		return "PhaseChange"
	case EventPlay:
		return "Play"
	case EventBuy:
		return "Buy"
	case EventGain:
		return "Gain"
	case EventDraw:
		return "Draw"
	case EventShuffle:
		return "Shuffle"
	case EventDiscard:
		return "Discard"
	case EventTrash:
		return "Trash"
	case EventTopdeck:
		return "Topdeck"
	case EventReveal:
		return "Reveal"
	case EventSetAside:
		return "SetAside"
	case EventMove:
		return "Move"
	case EventCounter:
		return "Counter"
	case EventReactionWindow:
		return "ReactionWindow"
	case EventReactionReveal:
		return "ReactionReveal"
	case EventAttackBlocked:
		return "AttackBlocked"
	case EventNoOp:
		return "NoOp"
	case EventInvalidResponse:
		return "InvalidResponse"
	case EventIllegalMove:
		return "IllegalMove"
	case EventGameOver:
		return "GameOver"
	case EventScore:
		return "Score"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which round (1-based)
	Phase   string    // current phase name (e.g. "Buy Phase")
	Player  int       // acting player index
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Cards   []string  // all cards involved, for multi-card moves
	Amount  int       // counter delta, draw count, score
	Details string    // human-readable detail string
}

package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger receives every event the engine journals. Events returns the
// events seen so far, oldest first.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// MemoryLogger keeps events in memory. It numbers events itself and is safe
// to read from another goroutine while a game runs.
type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a copy of the logged events.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.events...)
}

func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	return Filter(l.Events(), t)
}

// Filter returns the events of the given type, preserving order.
func Filter(events []GameEvent, t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// TextLogger also prints each event as it arrives.
type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// PlayerName returns "P1", "P2", ... for display.
func PlayerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent renders one event as an aligned line:
//
//	T3  Buy Phase       | P1 buys Silver
func FormatEvent(e GameEvent) string {
	return fmt.Sprintf("T%-2d %-16s| %s", e.Turn, e.Phase, e.Details)
}

func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cardList(cards []string) string {
	if len(cards) == 0 {
		return "nothing"
	}
	return strings.Join(cards, ", ")
}

func firstCard(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return cards[0]
}

// --- Helper constructors for common events ---

func NewTurnEvent(turn int, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Action Phase",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, PlayerName(player)),
	}
}

func NewPhaseChangeEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewPlayEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlay,
		Card:    cardName,
		Cards:   []string{cardName},
		Details: fmt.Sprintf("%s plays %s", PlayerName(player), cardName),
	}
}

func NewBuyEvent(turn int, phase string, player int, cardName string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventBuy,
		Card:    cardName,
		Cards:   []string{cardName},
		Amount:  cost,
		Details: fmt.Sprintf("%s buys %s for $%d", PlayerName(player), cardName, cost),
	}
}

func NewGainEvent(turn int, phase string, player int, cardName string, dest string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventGain,
		Card:    cardName,
		Cards:   []string{cardName},
		Details: fmt.Sprintf("%s gains %s (to %s)", PlayerName(player), cardName, dest),
	}
}

func NewDrawEvent(turn int, phase string, player int, cards []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s draws %d card(s): %s", PlayerName(player), len(cards), cardList(cards)),
	}
}

func NewShuffleEvent(turn int, phase string, player int, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Amount:  count,
		Details: fmt.Sprintf("%s shuffles %d card(s) into their draw pile", PlayerName(player), count),
	}
}

func NewDiscardEvent(turn int, phase string, player int, cards []string, from string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDiscard,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s discards %s from %s", PlayerName(player), cardList(cards), from),
	}
}

func NewTrashEvent(turn int, phase string, player int, cards []string, from string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTrash,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s trashes %s from %s", PlayerName(player), cardList(cards), from),
	}
}

func NewTopdeckEvent(turn int, phase string, player int, cards []string, from string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTopdeck,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s puts %s from %s onto their draw pile", PlayerName(player), cardList(cards), from),
	}
}

func NewRevealEvent(turn int, phase string, player int, cards []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventReveal,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s reveals %s", PlayerName(player), cardList(cards)),
	}
}

func NewSetAsideEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSetAside,
		Card:    cardName,
		Cards:   []string{cardName},
		Details: fmt.Sprintf("%s sets %s aside until their next turn", PlayerName(player), cardName),
	}
}

func NewMoveEvent(turn int, phase string, player int, cards []string, from, to string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventMove,
		Card:    firstCard(cards),
		Cards:   cards,
		Amount:  len(cards),
		Details: fmt.Sprintf("%s moves %s from %s to %s", PlayerName(player), cardList(cards), from, to),
	}
}

func NewCounterEvent(turn int, phase string, player int, counter string, delta, value int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCounter,
		Amount:  delta,
		Details: fmt.Sprintf("%s %+d %s (now %d)", PlayerName(player), delta, counter, value),
	}
}

func NewReactionWindowEvent(turn int, phase string, target int, source string, state string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  target,
		Type:    EventReactionWindow,
		Card:    source,
		Details: fmt.Sprintf("Reaction window %s for %s against %s", state, PlayerName(target), source),
	}
}

func NewReactionRevealEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventReactionReveal,
		Card:    cardName,
		Cards:   []string{cardName},
		Details: fmt.Sprintf("%s reveals %s in reaction", PlayerName(player), cardName),
	}
}

func NewAttackBlockedEvent(turn int, phase string, player int, source string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttackBlocked,
		Card:    source,
		Details: fmt.Sprintf("%s is unaffected by %s", PlayerName(player), source),
	}
}

func NewNoOpEvent(turn int, phase string, player int, source string, op string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventNoOp,
		Card:    source,
		Details: fmt.Sprintf("%s: %s has no effect for %s (%s)", source, op, PlayerName(player), reason),
	}
}

func NewInvalidResponseEvent(turn int, phase string, player int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventInvalidResponse,
		Details: fmt.Sprintf("%s gave an invalid response: %s", PlayerName(player), reason),
	}
}

func NewIllegalMoveEvent(turn int, phase string, player int, action string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventIllegalMove,
		Details: fmt.Sprintf("%s cannot %s: %s", PlayerName(player), action, reason),
	}
}

func NewScoreEvent(turn int, phase string, player int, score int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventScore,
		Amount:  score,
		Details: fmt.Sprintf("%s scores %d VP", PlayerName(player), score),
	}
}

func NewGameOverEvent(turn int, phase string, result string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  -1,
		Type:    EventGameOver,
		Details: fmt.Sprintf("Game over: %s", result),
	}
}

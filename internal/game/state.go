package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/peterkuimelis/dominion/internal/log"
)

const (
	DefaultHandSize = 5
	maxRepeat       = 64
)

// PendingEffect is a Duration effect waiting for its owner's next turn.
type PendingEffect struct {
	Source string
	Effect *Effect
}

// Player represents one player's zones and per-turn counters.
type Player struct {
	Name     string
	Deck     []string // top of deck is last element (pop from end)
	Hand     []string
	Discard  []string // top of discard is last element
	Play     []string
	SetAside []string // Duration cards waiting for the next turn
	Revealed []string

	Actions int
	Buys    int
	Coins   int

	Pending    []PendingEffect
	TurnsTaken int
}

func (p *Player) zone(z Zone) *[]string {
	switch z {
	case ZoneDeck:
		return &p.Deck
	case ZoneHand:
		return &p.Hand
	case ZoneDiscard:
		return &p.Discard
	case ZonePlay:
		return &p.Play
	case ZoneSetAside:
		return &p.SetAside
	case ZoneRevealed:
		return &p.Revealed
	}
	return nil
}

func (p *Player) counter(c Counter) *int {
	switch c {
	case CounterActions:
		return &p.Actions
	case CounterBuys:
		return &p.Buys
	case CounterCoins:
		return &p.Coins
	}
	return nil
}

// Cards returns the contents of a personal zone.
func (p *Player) Cards(z Zone) []string {
	if s := p.zone(z); s != nil {
		return *s
	}
	return nil
}

// CountIn returns how many copies of card are in zone z.
func (p *Player) CountIn(z Zone, card string) int {
	n := 0
	for _, c := range p.Cards(z) {
		if c == card {
			n++
		}
	}
	return n
}

// Owned returns every card the player owns across all personal zones.
func (p *Player) Owned() []string {
	var all []string
	for _, z := range personalZones {
		all = append(all, p.Cards(z)...)
	}
	return all
}

var personalZones = []Zone{ZoneDeck, ZoneHand, ZoneDiscard, ZonePlay, ZoneSetAside, ZoneRevealed}

// Pile is a supply pile of identical cards.
type Pile struct {
	Card  string
	Count int
}

// GameState is the single mutable root of a game. All mutation goes through
// its methods, each of which either applies fully or returns an error.
type GameState struct {
	Players     []*Player
	Current     int
	Phase       Phase
	Turn        int
	Supply      map[string]*Pile
	SupplyOrder []string // deterministic iteration order for Supply
	Trash       []string

	Result  string
	Winners []int

	catalog   Catalog
	totals    map[string]int
	rng       *rand.Rand
	noShuffle bool
	journal   []log.GameEvent
	observer  func(log.GameEvent)
	window    *ReactionWindow
}

// NewGameState creates an empty state for the named players. Shuffles use a
// PCG generator seeded from seed so a game is reproducible from its seed.
func NewGameState(catalog Catalog, names []string, seed int64) *GameState {
	gs := &GameState{
		Supply:  make(map[string]*Pile),
		Turn:    1,
		catalog: catalog,
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
	for _, n := range names {
		gs.Players = append(gs.Players, &Player{Name: n})
	}
	return gs
}

// CurrentPlayer returns the player whose turn it is.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.Players[gs.Current]
}

// Card returns the definition of a card name, or nil if it is unknown.
func (gs *GameState) Card(name string) *Card {
	return gs.catalog[name]
}

// Catalog returns the card definitions this game was created with.
func (gs *GameState) Catalog() Catalog {
	return gs.catalog
}

// Cost returns the cost of a card name, or 0 if it is unknown.
func (gs *GameState) Cost(name string) int {
	if c := gs.catalog[name]; c != nil {
		return c.Cost
	}
	return 0
}

// PileCount returns the number of cards left in a supply pile (0 if absent).
func (gs *GameState) PileCount(card string) int {
	if p, ok := gs.Supply[card]; ok {
		return p.Count
	}
	return 0
}

// EmptyPiles returns the number of supply piles with no cards left.
func (gs *GameState) EmptyPiles() int {
	n := 0
	for _, name := range gs.SupplyOrder {
		if gs.Supply[name].Count == 0 {
			n++
		}
	}
	return n
}

// Window returns the reaction window currently open, or nil.
func (gs *GameState) Window() *ReactionWindow {
	if gs.window == nil {
		return nil
	}
	w := *gs.window
	w.Revealed = append([]string(nil), gs.window.Revealed...)
	return &w
}

// Journal returns a copy of every event applied to this state, in order.
func (gs *GameState) Journal() []log.GameEvent {
	return append([]log.GameEvent(nil), gs.journal...)
}

// emit appends an event to the journal and forwards it to the observer.
func (gs *GameState) emit(e log.GameEvent) {
	e.Seq = len(gs.journal) + 1
	gs.journal = append(gs.journal, e)
	if gs.observer != nil {
		gs.observer(e)
	}
}

func (gs *GameState) phase() string {
	return gs.Phase.String()
}

// --- Mutations ---

// ShuffleDiscard shuffles a player's discard pile and places it under the
// draw pile. Returns the number of cards shuffled.
func (gs *GameState) ShuffleDiscard(player int) int {
	p := gs.Players[player]
	n := len(p.Discard)
	if n == 0 {
		return 0
	}
	cards := p.Discard
	p.Discard = nil
	if !gs.noShuffle {
		gs.rng.Shuffle(n, func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	}
	p.Deck = append(cards, p.Deck...)
	gs.emit(log.NewShuffleEvent(gs.Turn, gs.phase(), player, n))
	return n
}

// takeTop pops the top card of the draw pile, shuffling the discard pile in
// first if the draw pile is empty. Returns false when both are empty.
func (gs *GameState) takeTop(player int) (string, bool) {
	p := gs.Players[player]
	if len(p.Deck) == 0 && gs.ShuffleDiscard(player) == 0 {
		return "", false
	}
	card := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	return card, true
}

// Draw moves up to n cards from the draw pile to the hand. When both the
// draw and discard piles run out it returns fewer cards than requested.
func (gs *GameState) Draw(player, n int) []string {
	p := gs.Players[player]
	var drawn []string
	for i := 0; i < n; i++ {
		card, ok := gs.takeTop(player)
		if !ok {
			break
		}
		p.Hand = append(p.Hand, card)
		drawn = append(drawn, card)
	}
	if len(drawn) > 0 {
		gs.emit(log.NewDrawEvent(gs.Turn, gs.phase(), player, drawn))
	}
	return drawn
}

// RevealTop moves up to n cards from the top of the draw pile into the
// revealed zone.
func (gs *GameState) RevealTop(player, n int) []string {
	p := gs.Players[player]
	var revealed []string
	for i := 0; i < n; i++ {
		card, ok := gs.takeTop(player)
		if !ok {
			break
		}
		p.Revealed = append(p.Revealed, card)
		revealed = append(revealed, card)
	}
	if len(revealed) > 0 {
		gs.emit(log.NewRevealEvent(gs.Turn, gs.phase(), player, revealed))
	}
	return revealed
}

// removeCards removes each card in cards from zone, one copy per entry.
// It returns the original zone and false if any card is missing.
func removeCards(zone []string, cards []string) ([]string, bool) {
	out := append([]string(nil), zone...)
	for _, c := range cards {
		idx := -1
		for i := len(out) - 1; i >= 0; i-- {
			if out[i] == c {
				idx = i
				break
			}
		}
		if idx < 0 {
			return zone, false
		}
		out = append(out[:idx], out[idx+1:]...)
	}
	return out, true
}

// moveCards is MoveCards without journaling, for callers that emit a more
// specific event themselves.
func (gs *GameState) moveCards(player int, from, to Zone, cards []string) error {
	p := gs.Players[player]
	src := p.zone(from)
	if src == nil {
		return fmt.Errorf("move from %s: not a player zone", from)
	}
	var dst *[]string
	if to != ZoneTrash {
		if dst = p.zone(to); dst == nil {
			return fmt.Errorf("move to %s: not a player zone", to)
		}
	}
	rest, ok := removeCards(*src, cards)
	if !ok {
		return fmt.Errorf("%s not in %s: %w", strings.Join(cards, ", "), from, ErrCardNotInZone)
	}
	*src = rest
	if to == ZoneTrash {
		gs.Trash = append(gs.Trash, cards...)
	} else {
		*dst = append(*dst, cards...)
	}
	return nil
}

// MoveCards moves the given cards (a multiset) between two zones of a player,
// or from a player zone to the trash. Cards moved onto the draw pile end up
// with the last one on top. Nothing moves unless every card is present.
func (gs *GameState) MoveCards(player int, from, to Zone, cards []string) error {
	if len(cards) == 0 {
		return nil
	}
	if err := gs.moveCards(player, from, to, cards); err != nil {
		return err
	}
	moved := append([]string(nil), cards...)
	switch to {
	case ZoneDiscard:
		gs.emit(log.NewDiscardEvent(gs.Turn, gs.phase(), player, moved, from.String()))
	case ZoneDeck:
		gs.emit(log.NewTopdeckEvent(gs.Turn, gs.phase(), player, moved, from.String()))
	case ZoneTrash:
		gs.emit(log.NewTrashEvent(gs.Turn, gs.phase(), player, moved, from.String()))
	default:
		gs.emit(log.NewMoveEvent(gs.Turn, gs.phase(), player, moved, from.String(), to.String()))
	}
	return nil
}

// MoveAll moves every card in a zone to another zone and returns them.
func (gs *GameState) MoveAll(player int, from, to Zone) []string {
	cards := append([]string(nil), gs.Players[player].Cards(from)...)
	if len(cards) == 0 {
		return nil
	}
	if err := gs.MoveCards(player, from, to, cards); err != nil {
		return nil
	}
	return cards
}

// TrashCards moves cards from a player zone to the trash.
func (gs *GameState) TrashCards(player int, from Zone, cards []string) error {
	return gs.MoveCards(player, from, ZoneTrash, cards)
}

// Gain takes one card from its supply pile and puts it into dest.
func (gs *GameState) Gain(player int, card string, dest Zone) error {
	pile, ok := gs.Supply[card]
	if !ok {
		return fmt.Errorf("gain %s: %w", card, ErrNotInSupply)
	}
	if pile.Count <= 0 {
		return fmt.Errorf("gain %s: %w", card, ErrPileEmpty)
	}
	dst := gs.Players[player].zone(dest)
	if dst == nil {
		return fmt.Errorf("gain %s: cannot gain to %s", card, dest)
	}
	pile.Count--
	*dst = append(*dst, card)
	gs.emit(log.NewGainEvent(gs.Turn, gs.phase(), player, card, dest.String()))
	return nil
}

// TakeFromTrash gains a card from the trash into dest.
func (gs *GameState) TakeFromTrash(player int, card string, dest Zone) error {
	rest, ok := removeCards(gs.Trash, []string{card})
	if !ok {
		return fmt.Errorf("%s not in trash: %w", card, ErrCardNotInZone)
	}
	dst := gs.Players[player].zone(dest)
	if dst == nil {
		return fmt.Errorf("gain %s: cannot gain to %s", card, dest)
	}
	gs.Trash = rest
	*dst = append(*dst, card)
	gs.emit(log.NewGainEvent(gs.Turn, gs.phase(), player, card, dest.String()))
	return nil
}

// AddCounter adjusts a per-turn counter and returns the new value. Counters
// never go below zero.
func (gs *GameState) AddCounter(player int, c Counter, delta int) int {
	v := gs.Players[player].counter(c)
	if v == nil {
		return 0
	}
	if *v+delta < 0 {
		delta = -*v
	}
	*v += delta
	if delta != 0 {
		gs.emit(log.NewCounterEvent(gs.Turn, gs.phase(), player, c.String(), delta, *v))
	}
	return *v
}

// --- Invariants ---

func (gs *GameState) countAll() map[string]int {
	counts := make(map[string]int)
	for _, pile := range gs.Supply {
		counts[pile.Card] += pile.Count
	}
	for _, c := range gs.Trash {
		counts[c]++
	}
	for _, p := range gs.Players {
		for _, c := range p.Owned() {
			counts[c]++
		}
	}
	return counts
}

// recordTotals captures the per-card totals the conservation check compares against.
func (gs *GameState) recordTotals() {
	gs.totals = gs.countAll()
}

// CheckConservation verifies that every card identity's total across the
// supply, the trash and every player zone equals its starting total.
func (gs *GameState) CheckConservation() error {
	got := gs.countAll()
	names := make(map[string]bool)
	for n := range got {
		names[n] = true
	}
	for n := range gs.totals {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	for _, n := range sorted {
		if got[n] != gs.totals[n] {
			return &ConservationError{Card: n, Want: gs.totals[n], Got: got[n], Dump: gs.Dump()}
		}
	}
	return nil
}

// Scores returns each player's victory points over all owned cards.
func (gs *GameState) Scores() []int {
	scores := make([]int, len(gs.Players))
	for i, p := range gs.Players {
		owned := p.Owned()
		for _, name := range owned {
			card := gs.catalog[name]
			if card == nil {
				continue
			}
			scores[i] += card.VP
			if card.VPPerCards > 0 {
				scores[i] += len(owned) / card.VPPerCards
			}
		}
	}
	return scores
}

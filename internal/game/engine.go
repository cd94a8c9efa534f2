package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/peterkuimelis/dominion/internal/log"
)

// StepResult is the outcome of one primitive effect step.
type StepResult struct {
	Op      Op     `json:"op"`
	Player  int    `json:"player"`
	Source  string `json:"source"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"` // why the step had no effect
}

// Outcome aggregates every step run for one top-level action.
type Outcome struct {
	Action Action       `json:"action"`
	Steps  []StepResult `json:"steps,omitempty"`
}

// NoOps returns the steps that had no effect.
func (o Outcome) NoOps() []StepResult {
	var out []StepResult
	for _, s := range o.Steps {
		if !s.Applied {
			out = append(out, s)
		}
	}
	return out
}

// frame is the execution context for one run of an effect script.
type frame struct {
	player   int   // player the effect acts on
	attacker int   // player who played the source card
	source   *Card // card whose script is running
	last     []string
	trashed  *[]string // cards trashed during this play, shared with per-player frames
	gone     *bool     // the source has left play (trashed or set aside)
}

func newFrame(player int, source *Card) *frame {
	return &frame{player: player, attacker: player, source: source, trashed: new([]string), gone: new(bool)}
}

func (f *frame) forPlayer(target int) *frame {
	return &frame{player: target, attacker: f.player, source: f.source, trashed: f.trashed, gone: f.gone}
}

func (f *frame) sourceName() string {
	if f.source == nil {
		return ""
	}
	return f.source.Name
}

// resolve plays a card's script for player from the start.
func (g *Game) resolve(player int, card *Card) error {
	return g.run(newFrame(player, card), card.Effect)
}

func (g *Game) runAll(f *frame, effects []*Effect) error {
	for _, e := range effects {
		if err := g.run(f, e); err != nil {
			return err
		}
	}
	return nil
}

// run walks one effect node depth first. Only decision source failures are
// returned as errors; failed preconditions become no-op steps.
func (g *Game) run(f *frame, e *Effect) error {
	if e == nil {
		return nil
	}
	switch e.Op {
	case OpSequence:
		return g.runAll(f, e.Children)
	case OpRepeat:
		for i := 0; i < maxRepeat && i < g.count(f, e.Count); i++ {
			if err := g.runAll(f, e.Children); err != nil {
				return err
			}
		}
		return nil
	case OpChoose:
		return g.runChoose(f, e)
	case OpMay:
		yes, err := g.askYesNo(f, e, g.mayPrompt(f, e))
		if err != nil {
			return err
		}
		if yes {
			return g.runAll(f, e.Children)
		}
		return g.runAll(f, e.Else)
	case OpIfLast:
		if len(f.last) > 0 {
			return g.runAll(f, e.Children)
		}
		return g.runAll(f, e.Else)
	case OpPerOtherPlayer:
		return g.runPerOther(f, e)
	case OpTargetPlayer:
		return g.runTargetPlayer(f, e)
	case OpDuplicate:
		return g.runDuplicate(f, e)
	case OpNextTurn:
		return g.runNextTurn(f, e)
	}
	return g.runPrimitive(f, e)
}

// count evaluates a Count against the current state.
func (g *Game) count(f *frame, c Count) int {
	gs := g.State
	switch c.Source {
	case CountLastSelected:
		return len(f.last) + c.N
	case CountEmptyPiles:
		return gs.EmptyPiles() + c.N
	case CountHandSize:
		return len(gs.Players[f.player].Hand) + c.N
	case CountPile:
		return gs.PileCount(c.Card) + c.N
	}
	return c.N
}

func (g *Game) step(f *frame, e *Effect, applied bool, reason string) {
	if g.outcome != nil {
		g.outcome.Steps = append(g.outcome.Steps, StepResult{
			Op:      e.Op,
			Player:  f.player,
			Source:  f.sourceName(),
			Applied: applied,
			Reason:  reason,
		})
	}
	if !applied {
		gs := g.State
		gs.emit(log.NewNoOpEvent(gs.Turn, gs.phase(), f.player, f.sourceName(), e.Op.String(), reason))
	}
}

func (g *Game) applied(f *frame, e *Effect) { g.step(f, e, true, "") }

func (g *Game) noop(f *frame, e *Effect, format string, args ...any) {
	g.step(f, e, false, fmt.Sprintf(format, args...))
}

// settle moves cards between zones of the frame's player, recording a no-op
// step instead of failing the script when the move is rejected.
func (g *Game) settle(f *frame, e *Effect, from, to Zone, cards []string) bool {
	if err := g.State.MoveCards(f.player, from, to, cards); err != nil {
		g.noop(f, e, "%v", err)
		return false
	}
	return true
}

// decider returns the seat that answers the step's decisions.
func decider(f *frame, e *Effect) int {
	if e.Chooser == ChooserAttacker {
		return f.attacker
	}
	return f.player
}

func (g *Game) matches(name string, e *Effect) bool {
	if e.Card != "" && name != e.Card {
		return false
	}
	card := g.State.Card(name)
	return card != nil && card.Types.Any(e.Filter)
}

// candidates returns the cards of a zone matching the step's filter.
func (g *Game) candidates(player int, z Zone, e *Effect) []string {
	var out []string
	for _, c := range g.State.Players[player].Cards(z) {
		if g.matches(c, e) {
			out = append(out, c)
		}
	}
	return out
}

// chooseCards asks who to pick min..max of cands. An empty candidate set
// asks nothing. A choice where every candidate must be taken is not asked.
func (g *Game) chooseCards(f *frame, who int, prompt string, cands []string, min, max int) ([]string, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	if max < 0 || max > len(cands) {
		max = len(cands)
	}
	if min > max {
		min = max
	}
	if max == 0 {
		return nil, nil
	}
	if min == len(cands) {
		return clone(cands), nil
	}
	resp, err := g.decide(DecisionRequest{
		Player: who,
		Kind:   DecisionChooseCards,
		Prompt: prompt,
		Source: f.sourceName(),
		Cards:  clone(cands),
		Min:    min,
		Max:    max,
	})
	if err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func (g *Game) askYesNo(f *frame, e *Effect, prompt string) (bool, error) {
	resp, err := g.decide(DecisionRequest{
		Player: decider(f, e),
		Kind:   DecisionYesNo,
		Prompt: prompt,
		Source: f.sourceName(),
	})
	if err != nil {
		return false, err
	}
	return resp.Yes, nil
}

func (g *Game) mayPrompt(f *frame, e *Effect) string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s?", f.sourceName(), e.Label)
	}
	return fmt.Sprintf("Use %s?", f.sourceName())
}

// --- Composites ---

func (g *Game) runChoose(f *frame, e *Effect) error {
	if len(e.Children) == 0 {
		g.noop(f, e, "no options")
		return nil
	}
	labels := make([]string, len(e.Children))
	for i, c := range e.Children {
		labels[i] = c.Label
	}
	min, max := e.Min, e.Max
	if max <= 0 || max > len(labels) {
		max = len(labels)
	}
	if min > max {
		min = max
	}
	resp, err := g.decide(DecisionRequest{
		Player:  decider(f, e),
		Kind:    DecisionChooseOption,
		Prompt:  fmt.Sprintf("%s: choose %d", f.sourceName(), max),
		Source:  f.sourceName(),
		Options: labels,
		Min:     min,
		Max:     max,
	})
	if err != nil {
		return err
	}
	chosen := append([]int(nil), resp.Options...)
	sort.Ints(chosen)
	for _, i := range chosen {
		if err := g.run(f, e.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) runPerOther(f *frame, e *Effect) error {
	n := len(g.State.Players)
	for i := 1; i < n; i++ {
		target := (f.player + i) % n
		if e.Attack {
			blocked, err := g.reactionWindow(f, target)
			if err != nil {
				return err
			}
			if blocked {
				continue
			}
		}
		if err := g.runAll(f.forPlayer(target), e.Children); err != nil {
			return err
		}
	}
	f.last = nil
	return nil
}

func (g *Game) runTargetPlayer(f *frame, e *Effect) error {
	n := len(g.State.Players)
	var others []int
	for i := 1; i < n; i++ {
		others = append(others, (f.player+i)%n)
	}
	if len(others) == 0 {
		g.noop(f, e, "no other players")
		return nil
	}
	target := others[0]
	if len(others) > 1 {
		resp, err := g.decide(DecisionRequest{
			Player:  f.player,
			Kind:    DecisionChoosePlayer,
			Prompt:  fmt.Sprintf("%s: choose a player", f.sourceName()),
			Source:  f.sourceName(),
			Players: others,
			Min:     1,
			Max:     1,
		})
		if err != nil {
			return err
		}
		target = resp.Player
	}
	if e.Attack {
		blocked, err := g.reactionWindow(f, target)
		if err != nil || blocked {
			return err
		}
	}
	return g.runAll(f.forPlayer(target), e.Children)
}

// runDuplicate plays an Action card from hand and runs its whole script
// Count times. Each run is an independent frame.
func (g *Game) runDuplicate(f *frame, e *Effect) error {
	gs := g.State
	filter := e.Filter
	if filter == 0 {
		filter = TypeAction
	}
	sel := &Effect{Filter: filter, Card: e.Card}
	times := g.count(f, e.Count)
	chosen, err := g.chooseCards(f, f.player,
		fmt.Sprintf("%s: choose an Action card to play %d times", f.sourceName(), times),
		g.candidates(f.player, ZoneHand, sel), e.Min, 1)
	if err != nil {
		return err
	}
	if len(chosen) == 0 {
		f.last = nil
		g.noop(f, e, "no Action card chosen")
		return nil
	}
	card := gs.Card(chosen[0])
	if err := gs.moveCards(f.player, ZoneHand, ZonePlay, chosen); err != nil {
		g.noop(f, e, "%v", err)
		return nil
	}
	gs.emit(log.NewPlayEvent(gs.Turn, gs.phase(), f.player, card.Name))
	g.applied(f, e)
	gone := new(bool)
	for i := 0; i < times; i++ {
		df := &frame{player: f.player, attacker: f.player, source: card, trashed: new([]string), gone: gone}
		if err := g.run(df, card.Effect); err != nil {
			return err
		}
	}
	f.last = chosen
	return nil
}

// runNextTurn sets the source card aside and schedules Children for the
// start of its owner's next turn.
func (g *Game) runNextTurn(f *frame, e *Effect) error {
	gs := g.State
	name := f.sourceName()
	if !*f.gone && gs.Players[f.player].CountIn(ZonePlay, name) > 0 {
		if err := gs.moveCards(f.player, ZonePlay, ZoneSetAside, []string{name}); err == nil {
			*f.gone = true
			gs.emit(log.NewSetAsideEvent(gs.Turn, gs.phase(), f.player, name))
		}
	}
	p := gs.Players[f.player]
	p.Pending = append(p.Pending, PendingEffect{Source: name, Effect: e})
	g.applied(f, e)
	return nil
}

// resolveDurations moves set-aside Duration cards back into play and runs
// their scheduled effects.
func (g *Game) resolveDurations(player int) error {
	gs := g.State
	p := gs.Players[player]
	pending := p.Pending
	p.Pending = nil
	gs.MoveAll(player, ZoneSetAside, ZonePlay)
	for _, pe := range pending {
		card := gs.Card(pe.Source)
		if card == nil {
			continue
		}
		if err := g.runAll(newFrame(player, card), pe.Effect.Children); err != nil {
			return err
		}
	}
	return nil
}

// --- Primitives ---

func (g *Game) runPrimitive(f *frame, e *Effect) error {
	gs := g.State
	who := decider(f, e)
	name := f.sourceName()

	switch e.Op {
	case OpDraw:
		n := g.count(f, e.Count)
		if n <= 0 {
			f.last = nil
			g.noop(f, e, "nothing to draw")
			return nil
		}
		f.last = gs.Draw(f.player, n)
		if len(f.last) == 0 {
			g.noop(f, e, "draw and discard piles are empty")
			return nil
		}
		g.applied(f, e)

	case OpAddActions, OpAddBuys, OpAddCoins:
		n := g.count(f, e.Count)
		if n == 0 {
			g.noop(f, e, "zero amount")
			return nil
		}
		c := map[Op]Counter{OpAddActions: CounterActions, OpAddBuys: CounterBuys, OpAddCoins: CounterCoins}[e.Op]
		gs.AddCounter(f.player, c, n)
		g.applied(f, e)

	case OpGain:
		return g.runGain(f, e)

	case OpTrash:
		cands := g.candidates(f.player, ZoneHand, e)
		sel := cands
		if !e.All {
			var err error
			sel, err = g.chooseCards(f, who, fmt.Sprintf("%s: trash %s", name, rangeText(e.Min, e.Max)), cands, e.Min, e.Max)
			if err != nil {
				return err
			}
		}
		f.last = sel
		if len(sel) == 0 {
			g.noop(f, e, "nothing trashed")
			return nil
		}
		if err := gs.TrashCards(f.player, ZoneHand, sel); err != nil {
			f.last = nil
			g.noop(f, e, "%v", err)
			return nil
		}
		*f.trashed = append(*f.trashed, sel...)
		g.applied(f, e)

	case OpTrashSelf:
		if *f.gone || gs.Players[f.player].CountIn(ZonePlay, name) == 0 {
			f.last = nil
			g.noop(f, e, "%s is not in play", name)
			return nil
		}
		if err := gs.TrashCards(f.player, ZonePlay, []string{name}); err != nil {
			g.noop(f, e, "%v", err)
			return nil
		}
		*f.gone = true
		*f.trashed = append(*f.trashed, name)
		f.last = []string{name}
		g.applied(f, e)

	case OpDiscard, OpTopdeck:
		dest, verb := ZoneDiscard, "discard"
		if e.Op == OpTopdeck {
			dest, verb = ZoneDeck, "put onto your deck"
		}
		cands := g.candidates(f.player, ZoneHand, e)
		sel := cands
		if !e.All {
			var err error
			sel, err = g.chooseCards(f, who, fmt.Sprintf("%s: %s %s", name, verb, rangeText(e.Min, e.Max)), cands, e.Min, e.Max)
			if err != nil {
				return err
			}
		}
		f.last = sel
		if len(sel) == 0 {
			if len(cands) == 0 {
				g.noop(f, e, "no matching card in hand")
			} else {
				g.noop(f, e, "nothing chosen")
			}
			return nil
		}
		if err := gs.MoveCards(f.player, ZoneHand, dest, sel); err != nil {
			f.last = nil
			g.noop(f, e, "%v", err)
			return nil
		}
		g.applied(f, e)

	case OpDiscardDownTo:
		keep := g.count(f, e.Count)
		hand := gs.Players[f.player].Hand
		excess := len(hand) - keep
		if excess <= 0 {
			f.last = nil
			g.noop(f, e, "hand already at %d or fewer cards", keep)
			return nil
		}
		sel, err := g.chooseCards(f, who, fmt.Sprintf("%s: discard down to %d cards", name, keep), hand, excess, excess)
		if err != nil {
			return err
		}
		f.last = sel
		if err := gs.MoveCards(f.player, ZoneHand, ZoneDiscard, sel); err != nil {
			f.last = nil
			g.noop(f, e, "%v", err)
			return nil
		}
		g.applied(f, e)

	case OpDiscardDeck:
		f.last = gs.MoveAll(f.player, ZoneDeck, ZoneDiscard)
		if len(f.last) == 0 {
			g.noop(f, e, "draw pile is empty")
			return nil
		}
		g.applied(f, e)

	case OpRevealTop:
		f.last = gs.RevealTop(f.player, g.count(f, e.Count))
		if len(f.last) == 0 {
			g.noop(f, e, "nothing to reveal")
			return nil
		}
		g.applied(f, e)

	case OpTrashRevealed, OpDiscardRevealed, OpRevealedToHand:
		dest := map[Op]Zone{OpTrashRevealed: ZoneTrash, OpDiscardRevealed: ZoneDiscard, OpRevealedToHand: ZoneHand}[e.Op]
		cands := g.candidates(f.player, ZoneRevealed, e)
		sel := cands
		if !e.All {
			var err error
			sel, err = g.chooseCards(f, who, fmt.Sprintf("%s: choose revealed cards for %s (%s)", name, dest, rangeText(e.Min, e.Max)), cands, e.Min, e.Max)
			if err != nil {
				return err
			}
		}
		f.last = sel
		if len(sel) == 0 {
			g.noop(f, e, "no revealed card chosen")
			return nil
		}
		if err := gs.MoveCards(f.player, ZoneRevealed, dest, sel); err != nil {
			f.last = nil
			g.noop(f, e, "%v", err)
			return nil
		}
		if dest == ZoneTrash {
			*f.trashed = append(*f.trashed, sel...)
		}
		g.applied(f, e)

	case OpRevealedToDeck:
		cards := clone(gs.Players[f.player].Revealed)
		if len(cards) == 0 {
			f.last = nil
			g.noop(f, e, "nothing revealed")
			return nil
		}
		order := cards
		if !allSame(cards) {
			resp, err := g.decide(DecisionRequest{
				Player: who,
				Kind:   DecisionChooseOrder,
				Prompt: fmt.Sprintf("%s: order the cards to put back (last is on top)", name),
				Source: name,
				Cards:  cards,
				Min:    len(cards),
				Max:    len(cards),
			})
			if err != nil {
				return err
			}
			order = resp.Cards
		}
		if err := gs.MoveCards(f.player, ZoneRevealed, ZoneDeck, order); err != nil {
			f.last = nil
			g.noop(f, e, "%v", err)
			return nil
		}
		f.last = order
		g.applied(f, e)

	case OpRevealUntil:
		need := g.count(f, e.Count)
		var matched, others []string
		for len(matched) < need {
			top := gs.RevealTop(f.player, 1)
			if len(top) == 0 {
				break
			}
			if g.matches(top[0], e) {
				matched = append(matched, top[0])
			} else {
				others = append(others, top[0])
			}
		}
		f.last = matched
		if len(matched) == 0 && len(others) == 0 {
			g.noop(f, e, "nothing to reveal")
			return nil
		}
		ok := g.settle(f, e, ZoneRevealed, ZoneHand, matched)
		if !g.settle(f, e, ZoneRevealed, ZoneDiscard, others) || !ok {
			return nil
		}
		g.applied(f, e)

	case OpDrawUntil:
		target := g.count(f, e.Count)
		var drawn, aside []string
		for len(gs.Players[f.player].Hand) < target {
			got := gs.Draw(f.player, 1)
			if len(got) == 0 {
				break
			}
			card := got[0]
			drawn = append(drawn, card)
			if e.Filter != 0 && g.matches(card, e) {
				yes, err := g.askYesNo(f, e, fmt.Sprintf("%s: set aside %s?", name, card))
				if err != nil {
					return err
				}
				if yes && g.settle(f, e, ZoneHand, ZoneRevealed, []string{card}) {
					aside = append(aside, card)
				}
			}
		}
		f.last = drawn
		if !g.settle(f, e, ZoneRevealed, ZoneDiscard, aside) {
			return nil
		}
		if len(drawn) == 0 {
			g.noop(f, e, "hand already has %d cards or nothing to draw", target)
			return nil
		}
		g.applied(f, e)

	case OpGainTrashed:
		trashed := *f.trashed
		*f.trashed = nil
		var gained []string
		for _, card := range trashed {
			if !g.matches(card, e) {
				continue
			}
			yes, err := g.askYesNo(f, e, fmt.Sprintf("%s: gain the trashed %s?", name, card))
			if err != nil {
				return err
			}
			if !yes {
				continue
			}
			if err := gs.TakeFromTrash(f.player, card, e.Dest); err == nil {
				gained = append(gained, card)
			}
		}
		f.last = gained
		if len(gained) == 0 {
			g.noop(f, e, "nothing gained from the trash")
			return nil
		}
		g.applied(f, e)

	default:
		g.noop(f, e, "unsupported op %s", e.Op)
	}
	return nil
}

// runGain gains either the fixed card or a supply card chosen under a cost cap.
func (g *Game) runGain(f *frame, e *Effect) error {
	gs := g.State
	if e.MaxCost == nil {
		if err := gs.Gain(f.player, e.Card, e.Dest); err != nil {
			f.last = nil
			g.noop(f, e, "%s", gainReason(e.Card, err))
			return nil
		}
		f.last = []string{e.Card}
		g.applied(f, e)
		return nil
	}

	limit := e.MaxCost.Plus
	if e.MaxCost.Source == CostOfLast {
		if len(f.last) == 0 {
			g.noop(f, e, "no card to base the cost on")
			return nil
		}
		limit += gs.Cost(f.last[0])
	}
	var cands []string
	for _, name := range gs.SupplyOrder {
		if gs.Supply[name].Count > 0 && gs.Cost(name) <= limit && g.matches(name, e) {
			cands = append(cands, name)
		}
	}
	if len(cands) == 0 {
		f.last = nil
		g.noop(f, e, "no card in the supply costs $%d or less", limit)
		return nil
	}
	chosen := cands
	if len(cands) > 1 {
		resp, err := g.decide(DecisionRequest{
			Player: decider(f, e),
			Kind:   DecisionChooseCards,
			Prompt: fmt.Sprintf("%s: gain a card costing up to $%d", f.sourceName(), limit),
			Source: f.sourceName(),
			Cards:  cands,
			Min:    1,
			Max:    1,
		})
		if err != nil {
			return err
		}
		chosen = resp.Cards
	}
	if err := gs.Gain(f.player, chosen[0], e.Dest); err != nil {
		f.last = nil
		g.noop(f, e, "%s", gainReason(chosen[0], err))
		return nil
	}
	f.last = []string{chosen[0]}
	g.applied(f, e)
	return nil
}

func gainReason(card string, err error) string {
	switch {
	case errors.Is(err, ErrPileEmpty):
		return fmt.Sprintf("%s pile is empty", card)
	case errors.Is(err, ErrNotInSupply):
		return fmt.Sprintf("%s is not in the supply", card)
	}
	return err.Error()
}

func rangeText(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d", min)
	case min == max:
		return fmt.Sprintf("exactly %d", min)
	default:
		return fmt.Sprintf("%d to %d", min, max)
	}
}

func allSame(cards []string) bool {
	for _, c := range cards[1:] {
		if c != cards[0] {
			return false
		}
	}
	return true
}

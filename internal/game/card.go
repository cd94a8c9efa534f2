package game

import (
	"fmt"
	"sort"
)

// ReactionKind describes what revealing a Reaction card does to an attack.
type ReactionKind int

const (
	ReactionBlock  ReactionKind = iota // the attack has no effect on the revealing player
	ReactionModify                     // only the reaction's own effect runs; the attack still applies
)

// Reaction is the part of a card that can be revealed from hand when an
// Attack is about to apply to its owner.
type Reaction struct {
	Kind   ReactionKind
	Effect *Effect // optional, runs for the revealing player
}

// Card is an immutable card definition. Cards are owned by a Catalog and
// shared by pointer; zones only hold card names.
type Card struct {
	Name       string
	Cost       int
	Types      CardType
	Coins      int // coins produced when played as a Treasure
	VP         int
	VPPerCards int // 1 VP per this many cards owned (Gardens)
	Text       string
	Effect     *Effect
	Reaction   *Reaction
}

func (c *Card) Is(t CardType) bool { return c.Types.Has(t) }

func (c *Card) IsAction() bool   { return c.Types.Has(TypeAction) }
func (c *Card) IsTreasure() bool { return c.Types.Has(TypeTreasure) }
func (c *Card) IsVictory() bool  { return c.Types.Has(TypeVictory) }
func (c *Card) IsAttack() bool   { return c.Types.Has(TypeAttack) }
func (c *Card) IsReaction() bool { return c.Types.Has(TypeReaction) && c.Reaction != nil }

func (c *Card) String() string {
	return fmt.Sprintf("%s ($%d, %s)", c.Name, c.Cost, c.Types)
}

// Catalog maps card names to their definitions.
type Catalog map[string]*Card

// Lookup returns the card with the given name.
func (c Catalog) Lookup(name string) (*Card, bool) {
	card, ok := c[name]
	return card, ok
}

// Names returns all card names sorted alphabetically.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// With returns a new catalog containing c plus the given cards. Cards in
// extra replace cards of the same name.
func (c Catalog) With(extra ...*Card) Catalog {
	out := make(Catalog, len(c)+len(extra))
	for n, card := range c {
		out[n] = card
	}
	for _, card := range extra {
		out[card.Name] = card
	}
	return out
}

// Validate checks structural well-formedness: names are consistent, costs are
// non-negative and every card name referenced by a script exists.
func (c Catalog) Validate() error {
	for name, card := range c {
		if card == nil {
			return fmt.Errorf("card %q: nil definition", name)
		}
		if card.Name != name {
			return fmt.Errorf("card %q: registered under %q", card.Name, name)
		}
		if card.Cost < 0 {
			return fmt.Errorf("card %q: negative cost %d", name, card.Cost)
		}
		if card.Types == 0 {
			return fmt.Errorf("card %q: no types", name)
		}
		if card.Is(TypeReaction) && card.Reaction == nil {
			return fmt.Errorf("card %q: Reaction type without reaction", name)
		}
		check := func(e *Effect) error {
			if e.Card != "" {
				if _, ok := c[e.Card]; !ok {
					return fmt.Errorf("card %q: %s references unknown card %q", name, e.Op, e.Card)
				}
			}
			if e.Count.Source == CountPile {
				if _, ok := c[e.Count.Card]; !ok {
					return fmt.Errorf("card %q: count references unknown card %q", name, e.Count.Card)
				}
			}
			if e.Op == OpChoose {
				for i, opt := range e.Children {
					if opt.Label == "" {
						return fmt.Errorf("card %q: choose option %d has no label", name, i)
					}
				}
			}
			return nil
		}
		if err := card.Effect.Walk(check); err != nil {
			return err
		}
		if card.Reaction != nil {
			if err := card.Reaction.Effect.Walk(check); err != nil {
				return err
			}
		}
	}
	return nil
}

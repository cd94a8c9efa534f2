// Package catalog loads kingdom presets and data-defined cards from YAML.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/dominion/internal/game"
	"gopkg.in/yaml.v3"
)

// File represents the top-level YAML structure.
type File struct {
	Kingdoms []KingdomEntry `yaml:"kingdoms"`
	Cards    []CardEntry    `yaml:"cards"`
}

// KingdomEntry is a named set of kingdom cards.
type KingdomEntry struct {
	Name  string   `yaml:"name"`
	Cards []string `yaml:"cards"`
}

// CardEntry is a card defined in data rather than code.
type CardEntry struct {
	Name       string         `yaml:"name"`
	Cost       int            `yaml:"cost"`
	Types      string         `yaml:"types"` // e.g. "Action-Attack"
	Coins      int            `yaml:"coins"`
	VP         int            `yaml:"vp"`
	VPPerCards int            `yaml:"vp_per_cards"`
	Text       string         `yaml:"text"`
	Effect     *EffectEntry   `yaml:"effect"`
	Reaction   *ReactionEntry `yaml:"reaction"`
}

// ReactionEntry describes what revealing the card does to an attack.
type ReactionEntry struct {
	Kind   string       `yaml:"kind"` // "block" or "modify"
	Effect *EffectEntry `yaml:"effect"`
}

// EffectEntry is one node of an effect script. Children go under "do".
type EffectEntry struct {
	Op      string         `yaml:"op"`
	Label   string         `yaml:"label"`
	Count   CountEntry     `yaml:"count"`
	Min     int            `yaml:"min"`
	Max     *int           `yaml:"max"` // omitted means no upper bound
	Filter  string         `yaml:"filter"`
	Card    string         `yaml:"card"`
	MaxCost *CostEntry     `yaml:"max_cost"`
	Dest    string         `yaml:"dest"`
	Chooser string         `yaml:"chooser"` // "self" or "attacker"
	Attack  bool           `yaml:"attack"`
	All     bool           `yaml:"all"`
	Do      []*EffectEntry `yaml:"do"`
	Else    []*EffectEntry `yaml:"else"`
}

// CountEntry is either a plain number or a mapping {source, n, card}.
type CountEntry struct {
	Source string `yaml:"source"`
	N      int    `yaml:"n"`
	Card   string `yaml:"card"`
}

func (c *CountEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("line %d: count: %w", value.Line, err)
		}
		*c = CountEntry{N: n}
		return nil
	}
	type plain CountEntry
	return value.Decode((*plain)(c))
}

// CostEntry caps the cost of a gained card. Source "last" adds Plus to the
// cost of the card selected by the previous step.
type CostEntry struct {
	Source string `yaml:"source"`
	Plus   int    `yaml:"plus"`
}

var countSources = map[string]game.CountSource{
	"":              game.CountFixed,
	"fixed":         game.CountFixed,
	"last_selected": game.CountLastSelected,
	"empty_piles":   game.CountEmptyPiles,
	"hand_size":     game.CountHandSize,
	"pile":          game.CountPile,
}

// Parse decodes a catalog file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return &f, nil
}

// Load reads and decodes a catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Open loads the file at path and returns the combined catalog. A missing
// file is not an error: base is returned with an empty File.
func Open(path string, base game.Catalog) (game.Catalog, *File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, &File{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	cat, err := f.Catalog(base)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, f, nil
}

// Catalog returns base plus every card defined in the file, validated.
func (f *File) Catalog(base game.Catalog) (game.Catalog, error) {
	extra := make([]*game.Card, 0, len(f.Cards))
	for _, ce := range f.Cards {
		card, err := ce.Build()
		if err != nil {
			return nil, err
		}
		extra = append(extra, card)
	}
	cat := base.With(extra...)
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Kingdom returns the named kingdom preset.
func (f *File) Kingdom(name string) ([]string, error) {
	for _, k := range f.Kingdoms {
		if strings.EqualFold(k.Name, name) {
			return append([]string(nil), k.Cards...), nil
		}
	}
	return nil, fmt.Errorf("kingdom %q not found", name)
}

// KingdomByNumber returns the Nth kingdom (1-indexed).
func (f *File) KingdomByNumber(n int) (string, []string, error) {
	if n < 1 || n > len(f.Kingdoms) {
		return "", nil, fmt.Errorf("kingdom %d not found (have %d kingdoms)", n, len(f.Kingdoms))
	}
	k := f.Kingdoms[n-1]
	return k.Name, append([]string(nil), k.Cards...), nil
}

// Resolve picks a kingdom from a command-line style spec: a preset number,
// a preset name, or a comma-separated list of card names. An empty spec
// returns nil, which games read as the First Game kingdom.
func (f *File) Resolve(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(spec); err == nil {
		_, cards, err := f.KingdomByNumber(n)
		return cards, err
	}
	if strings.Contains(spec, ",") {
		var cards []string
		for _, c := range strings.Split(spec, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cards = append(cards, c)
			}
		}
		return cards, nil
	}
	return f.Kingdom(spec)
}

// Build converts the entry into a card definition.
func (ce CardEntry) Build() (*game.Card, error) {
	if ce.Name == "" {
		return nil, errors.New("card without a name")
	}
	types, err := game.ParseCardType(ce.Types)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", ce.Name, err)
	}
	card := &game.Card{
		Name:       ce.Name,
		Cost:       ce.Cost,
		Types:      types,
		Coins:      ce.Coins,
		VP:         ce.VP,
		VPPerCards: ce.VPPerCards,
		Text:       ce.Text,
	}
	if ce.Effect != nil {
		if card.Effect, err = ce.Effect.Build(); err != nil {
			return nil, fmt.Errorf("card %q: %w", ce.Name, err)
		}
	}
	if ce.Reaction != nil {
		r := &game.Reaction{}
		switch strings.ToLower(ce.Reaction.Kind) {
		case "", "block":
			r.Kind = game.ReactionBlock
		case "modify":
			r.Kind = game.ReactionModify
		default:
			return nil, fmt.Errorf("card %q: unknown reaction kind %q", ce.Name, ce.Reaction.Kind)
		}
		if ce.Reaction.Effect != nil {
			if r.Effect, err = ce.Reaction.Effect.Build(); err != nil {
				return nil, fmt.Errorf("card %q reaction: %w", ce.Name, err)
			}
		}
		card.Reaction = r
	}
	return card, nil
}

// Build converts the entry and its children into an effect tree.
func (ee *EffectEntry) Build() (*game.Effect, error) {
	op, ok := game.ParseOp(ee.Op)
	if !ok {
		return nil, fmt.Errorf("unknown op %q", ee.Op)
	}
	src, ok := countSources[ee.Count.Source]
	if !ok {
		return nil, fmt.Errorf("%s: unknown count source %q", ee.Op, ee.Count.Source)
	}
	if op == game.OpDuplicate && src == game.CountFixed && ee.Count.N <= 0 {
		return nil, fmt.Errorf("%s: needs a count of at least 1", ee.Op)
	}
	filter, err := game.ParseCardType(ee.Filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ee.Op, err)
	}
	dest, err := game.ParseZone(ee.Dest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ee.Op, err)
	}
	e := &game.Effect{
		Op:     op,
		Label:  ee.Label,
		Count:  game.Count{Source: src, N: ee.Count.N, Card: ee.Count.Card},
		Min:    ee.Min,
		Max:    -1,
		Filter: filter,
		Card:   ee.Card,
		Dest:   dest,
		Attack: ee.Attack,
		All:    ee.All,
	}
	if ee.Max != nil {
		e.Max = *ee.Max
	}
	switch strings.ToLower(ee.Chooser) {
	case "", "self":
		e.Chooser = game.ChooserSelf
	case "attacker":
		e.Chooser = game.ChooserAttacker
	default:
		return nil, fmt.Errorf("%s: unknown chooser %q", ee.Op, ee.Chooser)
	}
	if ee.MaxCost != nil {
		bound := &game.CostBound{Plus: ee.MaxCost.Plus}
		switch strings.ToLower(ee.MaxCost.Source) {
		case "", "fixed":
			bound.Source = game.CostFixed
		case "last":
			bound.Source = game.CostOfLast
		default:
			return nil, fmt.Errorf("%s: unknown cost source %q", ee.Op, ee.MaxCost.Source)
		}
		e.MaxCost = bound
	}
	if len(ee.Do) > 0 && !op.IsComposite() {
		return nil, fmt.Errorf("%s: only composite ops take children", ee.Op)
	}
	if e.Children, err = buildAll(ee.Do); err != nil {
		return nil, err
	}
	if e.Else, err = buildAll(ee.Else); err != nil {
		return nil, err
	}
	return e, nil
}

func buildAll(entries []*EffectEntry) ([]*game.Effect, error) {
	var out []*game.Effect
	for _, c := range entries {
		e, err := c.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

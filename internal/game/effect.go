package game

// Op identifies the kind of an Effect node.
type Op int

const (
	// Composites
	OpSequence       Op = iota // run Children in order
	OpRepeat                   // run Children Count times, Count re-evaluated before every pass
	OpChoose                   // choose Min..Max of Children (by Label) and run them in listed order
	OpMay                      // yes/no; run Children on yes, Else on no
	OpIfLast                   // run Children if the previous step selected anything, Else otherwise
	OpPerOtherPlayer           // run Children for each other player in turn order
	OpTargetPlayer             // choose another player and run Children for them
	OpDuplicate                // choose an Action card in hand and play it Count times
	OpNextTurn                 // set the source aside and run Children at the start of the next turn

	// Primitives
	OpDraw
	OpAddActions
	OpAddBuys
	OpAddCoins
	OpGain          // gain Card, or a chosen supply card matching Filter and MaxCost
	OpTrash         // trash Min..Max matching cards from hand
	OpTrashSelf     // trash the source card from play
	OpDiscard       // discard Min..Max cards from hand
	OpDiscardDownTo // discard down to Count cards in hand
	OpTopdeck       // put Min..Max matching cards from hand onto the draw pile
	OpDiscardDeck   // put the whole draw pile into the discard pile
	OpRevealTop     // move the top Count cards of the draw pile to the revealed zone
	OpTrashRevealed
	OpDiscardRevealed
	OpRevealedToHand
	OpRevealedToDeck // return revealed cards to the draw pile in a chosen order
	OpRevealUntil    // reveal until Count cards match Filter; matches to hand, rest discarded
	OpDrawUntil      // draw until Count cards in hand; matching cards may be set aside
	OpGainTrashed    // may gain each card trashed earlier in this frame
)

var opNames = map[Op]string{
	OpSequence:        "sequence",
	OpRepeat:          "repeat",
	OpChoose:          "choose",
	OpMay:             "may",
	OpIfLast:          "if-last",
	OpPerOtherPlayer:  "per-other-player",
	OpTargetPlayer:    "target-player",
	OpDuplicate:       "duplicate",
	OpNextTurn:        "next-turn",
	OpDraw:            "draw",
	OpAddActions:      "add-actions",
	OpAddBuys:         "add-buys",
	OpAddCoins:        "add-coins",
	OpGain:            "gain",
	OpTrash:           "trash",
	OpTrashSelf:       "trash-self",
	OpDiscard:         "discard",
	OpDiscardDownTo:   "discard-down-to",
	OpTopdeck:         "topdeck",
	OpDiscardDeck:     "discard-deck",
	OpRevealTop:       "reveal-top",
	OpTrashRevealed:   "trash-revealed",
	OpDiscardRevealed: "discard-revealed",
	OpRevealedToHand:  "revealed-to-hand",
	OpRevealedToDeck:  "revealed-to-deck",
	OpRevealUntil:     "reveal-until",
	OpDrawUntil:       "draw-until",
	OpGainTrashed:     "gain-trashed",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "unknown"
}

// ParseOp looks up an Op by its script name.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// IsComposite reports whether the op only sequences other effects.
func (o Op) IsComposite() bool {
	return o <= OpNextTurn
}

// CountSource selects where a Count takes its base value from.
type CountSource int

const (
	CountFixed         CountSource = iota
	CountLastSelected              // cards selected by the previous step
	CountEmptyPiles                // empty supply piles
	CountHandSize                  // cards in the acting player's hand
	CountPile                      // cards left in the supply pile named by Count.Card
)

// Count is a number evaluated against live state when the step runs.
// The value is the source's base plus N (for CountFixed the base is 0).
type Count struct {
	Source CountSource
	N      int
	Card   string
}

// Fixed returns a constant Count.
func Fixed(n int) Count {
	return Count{Source: CountFixed, N: n}
}

// CostSource selects the base of a CostBound.
type CostSource int

const (
	CostFixed  CostSource = iota
	CostOfLast            // cost of the card selected by the previous step
)

// CostBound caps the cost of a chosen card: base + Plus.
type CostBound struct {
	Source CostSource
	Plus   int
}

// Chooser selects who answers the decisions of a step.
type Chooser int

const (
	ChooserSelf     Chooser = iota // the player the step acts on
	ChooserAttacker                // the player who played the source card
)

// Effect is one node of an effect script. Effects are immutable data and are
// shared by reference between the catalog and every game using it.
type Effect struct {
	Op       Op
	Label    string // option text when this node is a child of OpChoose
	Count    Count
	Min      int
	Max      int // -1 means no upper bound
	Filter   CardType
	Card     string     // fixed card for OpGain, or required card for hand selections
	MaxCost  *CostBound // cost cap for chosen gains
	Dest     Zone       // destination for gains (default discard)
	Chooser  Chooser
	Attack   bool // other players get a reaction window before this applies
	All      bool // skip the choice and take every matching card
	Children []*Effect
	Else     []*Effect
}

// --- Script builders used by the card definitions ---

func Seq(children ...*Effect) *Effect {
	return &Effect{Op: OpSequence, Children: children}
}

func Draw(n int) *Effect { return &Effect{Op: OpDraw, Count: Fixed(n)} }

func PlusActions(n int) *Effect { return &Effect{Op: OpAddActions, Count: Fixed(n)} }

func PlusBuys(n int) *Effect { return &Effect{Op: OpAddBuys, Count: Fixed(n)} }

func PlusCoins(n int) *Effect { return &Effect{Op: OpAddCoins, Count: Fixed(n)} }

func GainCard(card string, dest Zone) *Effect {
	return &Effect{Op: OpGain, Card: card, Dest: dest}
}

func GainUpTo(cost int, filter CardType, dest Zone) *Effect {
	return &Effect{Op: OpGain, MaxCost: &CostBound{Source: CostFixed, Plus: cost}, Filter: filter, Dest: dest}
}

func Attack(children ...*Effect) *Effect {
	return &Effect{Op: OpPerOtherPlayer, Attack: true, Children: children}
}

func EachOther(children ...*Effect) *Effect {
	return &Effect{Op: OpPerOtherPlayer, Children: children}
}

func May(children ...*Effect) *Effect {
	return &Effect{Op: OpMay, Children: children}
}

func IfLast(children ...*Effect) *Effect {
	return &Effect{Op: OpIfLast, Children: children}
}

func Repeat(count Count, children ...*Effect) *Effect {
	return &Effect{Op: OpRepeat, Count: count, Children: children}
}

func Option(label string, children ...*Effect) *Effect {
	e := Seq(children...)
	e.Label = label
	return e
}

func ChooseOptions(min, max int, options ...*Effect) *Effect {
	return &Effect{Op: OpChoose, Min: min, Max: max, Children: options}
}

func NextTurn(children ...*Effect) *Effect {
	return &Effect{Op: OpNextTurn, Children: children}
}

// Walk visits e and every descendant in depth-first order.
func (e *Effect) Walk(fn func(*Effect) error) error {
	if e == nil {
		return nil
	}
	if err := fn(e); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	for _, c := range e.Else {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

package game

// --- Basic cards ---

func Copper() *Card {
	return &Card{Name: "Copper", Cost: 0, Types: TypeTreasure, Coins: 1, Text: "$1"}
}

func Silver() *Card {
	return &Card{Name: "Silver", Cost: 3, Types: TypeTreasure, Coins: 2, Text: "$2"}
}

func Gold() *Card {
	return &Card{Name: "Gold", Cost: 6, Types: TypeTreasure, Coins: 3, Text: "$3"}
}

func Estate() *Card {
	return &Card{Name: "Estate", Cost: 2, Types: TypeVictory, VP: 1, Text: "1 VP"}
}

func Duchy() *Card {
	return &Card{Name: "Duchy", Cost: 5, Types: TypeVictory, VP: 3, Text: "3 VP"}
}

func Province() *Card {
	return &Card{Name: "Province", Cost: 8, Types: TypeVictory, VP: 6, Text: "6 VP"}
}

func Curse() *Card {
	return &Card{Name: "Curse", Cost: 0, Types: TypeCurse, VP: -1, Text: "-1 VP"}
}

// --- Kingdom cards ---

// Cellar: +1 Action. Discard any number of cards, then draw that many.
func Cellar() *Card {
	return &Card{
		Name:  "Cellar",
		Cost:  2,
		Types: TypeAction,
		Text:  "+1 Action. Discard any number of cards, then draw that many.",
		Effect: Seq(
			PlusActions(1),
			&Effect{Op: OpDiscard, Min: 0, Max: -1},
			&Effect{Op: OpDraw, Count: Count{Source: CountLastSelected}},
		),
	}
}

// Chapel: Trash up to 4 cards from your hand.
func Chapel() *Card {
	return &Card{
		Name:   "Chapel",
		Cost:   2,
		Types:  TypeAction,
		Text:   "Trash up to 4 cards from your hand.",
		Effect: &Effect{Op: OpTrash, Min: 0, Max: 4},
	}
}

// Moat: +2 Cards. Reveal it from hand to be unaffected by an Attack.
func Moat() *Card {
	return &Card{
		Name:     "Moat",
		Cost:     2,
		Types:    TypeAction | TypeReaction,
		Text:     "+2 Cards. When another player plays an Attack card, you may first reveal this from your hand, to be unaffected by it.",
		Effect:   Draw(2),
		Reaction: &Reaction{Kind: ReactionBlock},
	}
}

func Pawn() *Card {
	return &Card{
		Name:  "Pawn",
		Cost:  2,
		Types: TypeAction,
		Text:  "Choose two: +1 Card; +1 Action; +1 Buy; +$1. The choices must be different.",
		Effect: ChooseOptions(2, 2,
			Option("+1 Card", Draw(1)),
			Option("+1 Action", PlusActions(1)),
			Option("+1 Buy", PlusBuys(1)),
			Option("+$1", PlusCoins(1)),
		),
	}
}

// Chancellor: +$2. You may put your deck into your discard pile.
func Chancellor() *Card {
	may := May(&Effect{Op: OpDiscardDeck})
	may.Label = "put your deck into your discard pile"
	return &Card{
		Name:   "Chancellor",
		Cost:   3,
		Types:  TypeAction,
		Text:   "+$2. You may immediately put your deck into your discard pile.",
		Effect: Seq(PlusCoins(2), may),
	}
}

func Village() *Card {
	return &Card{
		Name:   "Village",
		Cost:   3,
		Types:  TypeAction,
		Text:   "+1 Card, +2 Actions.",
		Effect: Seq(Draw(1), PlusActions(2)),
	}
}

func Woodcutter() *Card {
	return &Card{
		Name:   "Woodcutter",
		Cost:   3,
		Types:  TypeAction,
		Text:   "+1 Buy, +$2.",
		Effect: Seq(PlusBuys(1), PlusCoins(2)),
	}
}

func Workshop() *Card {
	return &Card{
		Name:   "Workshop",
		Cost:   3,
		Types:  TypeAction,
		Text:   "Gain a card costing up to $4.",
		Effect: GainUpTo(4, 0, ZoneDiscard),
	}
}

// Steward: choose one of three.
func Steward() *Card {
	return &Card{
		Name:  "Steward",
		Cost:  3,
		Types: TypeAction,
		Text:  "Choose one: +2 Cards; or +$2; or trash 2 cards from your hand.",
		Effect: ChooseOptions(1, 1,
			Option("+2 Cards", Draw(2)),
			Option("+$2", PlusCoins(2)),
			Option("Trash 2 cards", &Effect{Op: OpTrash, Min: 2, Max: 2}),
		),
	}
}

// FishingVillage: Duration. +2 Actions, +$1; next turn +1 Action, +$1.
func FishingVillage() *Card {
	return &Card{
		Name:   "Fishing Village",
		Cost:   3,
		Types:  TypeAction | TypeDuration,
		Text:   "+2 Actions, +$1. At the start of your next turn: +1 Action, +$1.",
		Effect: Seq(PlusActions(2), PlusCoins(1), NextTurn(PlusActions(1), PlusCoins(1))),
	}
}

// Bureaucrat: gain a Silver onto your deck; others topdeck a Victory card.
func Bureaucrat() *Card {
	return &Card{
		Name:  "Bureaucrat",
		Cost:  4,
		Types: TypeAction | TypeAttack,
		Text:  "Gain a Silver onto your deck. Each other player puts a Victory card from their hand onto their deck.",
		Effect: Seq(
			GainCard("Silver", ZoneDeck),
			Attack(&Effect{Op: OpTopdeck, Filter: TypeVictory, Min: 1, Max: 1}),
		),
	}
}

func Caravan() *Card {
	return &Card{
		Name:   "Caravan",
		Cost:   4,
		Types:  TypeAction | TypeDuration,
		Text:   "+1 Card, +1 Action. At the start of your next turn, +1 Card.",
		Effect: Seq(Draw(1), PlusActions(1), NextTurn(Draw(1))),
	}
}

// Feast: trash this, gain a card costing up to $5.
func Feast() *Card {
	return &Card{
		Name:   "Feast",
		Cost:   4,
		Types:  TypeAction,
		Text:   "Trash this card. Gain a card costing up to $5.",
		Effect: Seq(&Effect{Op: OpTrashSelf}, GainUpTo(5, 0, ZoneDiscard)),
	}
}

func Gardens() *Card {
	return &Card{
		Name:       "Gardens",
		Cost:       4,
		Types:      TypeVictory,
		VPPerCards: 10,
		Text:       "Worth 1 VP per 10 cards you have (round down).",
	}
}

// Militia: +$2. Each other player discards down to 3 cards.
func Militia() *Card {
	return &Card{
		Name:   "Militia",
		Cost:   4,
		Types:  TypeAction | TypeAttack,
		Text:   "+$2. Each other player discards down to 3 cards in hand.",
		Effect: Seq(PlusCoins(2), Attack(&Effect{Op: OpDiscardDownTo, Count: Fixed(3)})),
	}
}

// Moneylender: you may trash a Copper for +$3.
func Moneylender() *Card {
	return &Card{
		Name:  "Moneylender",
		Cost:  4,
		Types: TypeAction,
		Text:  "You may trash a Copper from your hand for +$3.",
		Effect: Seq(
			&Effect{Op: OpTrash, Card: "Copper", Min: 0, Max: 1},
			IfLast(PlusCoins(3)),
		),
	}
}

// Remodel: trash a card, gain one costing up to $2 more.
func Remodel() *Card {
	return &Card{
		Name:  "Remodel",
		Cost:  4,
		Types: TypeAction,
		Text:  "Trash a card from your hand. Gain a card costing up to $2 more than it.",
		Effect: Seq(
			&Effect{Op: OpTrash, Min: 1, Max: 1},
			IfLast(&Effect{Op: OpGain, MaxCost: &CostBound{Source: CostOfLast, Plus: 2}}),
		),
	}
}

func Smithy() *Card {
	return &Card{
		Name:   "Smithy",
		Cost:   4,
		Types:  TypeAction,
		Text:   "+3 Cards.",
		Effect: Draw(3),
	}
}

// Spy: each player reveals their top card; you choose discard or put back.
func Spy() *Card {
	spyOn := func(chooser Chooser) []*Effect {
		return []*Effect{
			{Op: OpRevealTop, Count: Fixed(1)},
			{Op: OpDiscardRevealed, Min: 0, Max: 1, Chooser: chooser},
			{Op: OpRevealedToDeck},
		}
	}
	return &Card{
		Name:  "Spy",
		Cost:  4,
		Types: TypeAction | TypeAttack,
		Text:  "+1 Card, +1 Action. Each player (including you) reveals the top card of their deck and either discards it or puts it back, your choice.",
		Effect: Seq(
			Draw(1),
			PlusActions(1),
			Seq(spyOn(ChooserSelf)...),
			Attack(spyOn(ChooserAttacker)...),
		),
	}
}

// Thief: others reveal 2 cards; you trash a Treasure and may gain it.
func Thief() *Card {
	return &Card{
		Name:  "Thief",
		Cost:  4,
		Types: TypeAction | TypeAttack,
		Text:  "Each other player reveals the top 2 cards of their deck. If they revealed any Treasure cards, they trash one that you choose. You may gain any or all of these trashed cards. They discard the other revealed cards.",
		Effect: Seq(
			Attack(
				&Effect{Op: OpRevealTop, Count: Fixed(2)},
				&Effect{Op: OpTrashRevealed, Filter: TypeTreasure, Min: 1, Max: 1, Chooser: ChooserAttacker},
				&Effect{Op: OpDiscardRevealed, All: true},
			),
			&Effect{Op: OpGainTrashed, Filter: TypeTreasure},
		),
	}
}

// ThroneRoom: play an Action card from your hand twice.
func ThroneRoom() *Card {
	return &Card{
		Name:   "Throne Room",
		Cost:   4,
		Types:  TypeAction,
		Text:   "You may play an Action card from your hand twice.",
		Effect: &Effect{Op: OpDuplicate, Count: Fixed(2)},
	}
}

func CouncilRoom() *Card {
	return &Card{
		Name:   "Council Room",
		Cost:   5,
		Types:  TypeAction,
		Text:   "+4 Cards, +1 Buy. Each other player draws a card.",
		Effect: Seq(Draw(4), PlusBuys(1), EachOther(Draw(1))),
	}
}

func Festival() *Card {
	return &Card{
		Name:   "Festival",
		Cost:   5,
		Types:  TypeAction,
		Text:   "+2 Actions, +1 Buy, +$2.",
		Effect: Seq(PlusActions(2), PlusBuys(1), PlusCoins(2)),
	}
}

func Laboratory() *Card {
	return &Card{
		Name:   "Laboratory",
		Cost:   5,
		Types:  TypeAction,
		Text:   "+2 Cards, +1 Action.",
		Effect: Seq(Draw(2), PlusActions(1)),
	}
}

// Library: draw to 7, optionally skipping Action cards.
func Library() *Card {
	return &Card{
		Name:   "Library",
		Cost:   5,
		Types:  TypeAction,
		Text:   "Draw until you have 7 cards in hand, skipping any Action cards you choose to; set those aside, discarding them afterwards.",
		Effect: &Effect{Op: OpDrawUntil, Count: Fixed(7), Filter: TypeAction},
	}
}

func Market() *Card {
	return &Card{
		Name:   "Market",
		Cost:   5,
		Types:  TypeAction,
		Text:   "+1 Card, +1 Action, +1 Buy, +$1.",
		Effect: Seq(Draw(1), PlusActions(1), PlusBuys(1), PlusCoins(1)),
	}
}

// Mine: trash a Treasure, gain one costing up to $3 more to your hand.
func Mine() *Card {
	return &Card{
		Name:  "Mine",
		Cost:  5,
		Types: TypeAction,
		Text:  "You may trash a Treasure from your hand. Gain a Treasure to your hand costing up to $3 more than it.",
		Effect: Seq(
			&Effect{Op: OpTrash, Filter: TypeTreasure, Min: 0, Max: 1},
			IfLast(&Effect{Op: OpGain, Filter: TypeTreasure, MaxCost: &CostBound{Source: CostOfLast, Plus: 3}, Dest: ZoneHand}),
		),
	}
}

// Sentry: look at the top 2 cards; trash, discard or put back any.
func Sentry() *Card {
	return &Card{
		Name:  "Sentry",
		Cost:  5,
		Types: TypeAction,
		Text:  "+1 Card, +1 Action. Look at the top 2 cards of your deck. Trash and/or discard any number of them. Put the rest back on top in any order.",
		Effect: Seq(
			Draw(1),
			PlusActions(1),
			&Effect{Op: OpRevealTop, Count: Fixed(2)},
			&Effect{Op: OpTrashRevealed, Min: 0, Max: -1},
			&Effect{Op: OpDiscardRevealed, Min: 0, Max: -1},
			&Effect{Op: OpRevealedToDeck},
		),
	}
}

// Witch: +2 Cards. Each other player gains a Curse.
func Witch() *Card {
	return &Card{
		Name:   "Witch",
		Cost:   5,
		Types:  TypeAction | TypeAttack,
		Text:   "+2 Cards. Each other player gains a Curse.",
		Effect: Seq(Draw(2), Attack(GainCard("Curse", ZoneDiscard))),
	}
}

// Adventurer: reveal until 2 Treasures; put them in hand.
func Adventurer() *Card {
	return &Card{
		Name:   "Adventurer",
		Cost:   6,
		Types:  TypeAction,
		Text:   "Reveal cards from your deck until you reveal 2 Treasure cards. Put those into your hand and discard the other revealed cards.",
		Effect: &Effect{Op: OpRevealUntil, Count: Fixed(2), Filter: TypeTreasure},
	}
}

// KingsCourt: play an Action card from your hand three times.
func KingsCourt() *Card {
	return &Card{
		Name:   "King's Court",
		Cost:   7,
		Types:  TypeAction,
		Text:   "You may play an Action card from your hand three times.",
		Effect: &Effect{Op: OpDuplicate, Count: Fixed(3)},
	}
}

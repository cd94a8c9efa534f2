package game

import "fmt"

// CardRegistry maps card names to their constructor functions.
var CardRegistry = map[string]func() *Card{
	"Copper":          Copper,
	"Silver":          Silver,
	"Gold":            Gold,
	"Estate":          Estate,
	"Duchy":           Duchy,
	"Province":        Province,
	"Curse":           Curse,
	"Cellar":          Cellar,
	"Chapel":          Chapel,
	"Moat":            Moat,
	"Pawn":            Pawn,
	"Chancellor":      Chancellor,
	"Village":         Village,
	"Woodcutter":      Woodcutter,
	"Workshop":        Workshop,
	"Steward":         Steward,
	"Fishing Village": FishingVillage,
	"Bureaucrat":      Bureaucrat,
	"Caravan":         Caravan,
	"Feast":           Feast,
	"Gardens":         Gardens,
	"Militia":         Militia,
	"Moneylender":     Moneylender,
	"Remodel":         Remodel,
	"Smithy":          Smithy,
	"Spy":             Spy,
	"Thief":           Thief,
	"Throne Room":     ThroneRoom,
	"Council Room":    CouncilRoom,
	"Festival":        Festival,
	"Laboratory":      Laboratory,
	"Library":         Library,
	"Market":          Market,
	"Mine":            Mine,
	"Sentry":          Sentry,
	"Witch":           Witch,
	"Adventurer":      Adventurer,
	"King's Court":    KingsCourt,
}

// FirstGameKingdom is the recommended kingdom for a first game.
var FirstGameKingdom = []string{
	"Cellar", "Market", "Militia", "Mine", "Moat",
	"Remodel", "Smithy", "Village", "Woodcutter", "Workshop",
}

// LookupCard looks up a card by name and returns a new definition.
// Panics if the card is not found.
func LookupCard(name string) *Card {
	ctor, ok := CardRegistry[name]
	if !ok {
		panic(fmt.Sprintf("card not found in registry: %q", name))
	}
	return ctor()
}

// BaseCatalog builds a catalog of every registered card. Each call returns
// fresh definitions; within one catalog they are shared by every game.
func BaseCatalog() Catalog {
	c := make(Catalog, len(CardRegistry))
	for name, ctor := range CardRegistry {
		c[name] = ctor()
	}
	return c
}

package proto

import (
	"fmt"
	"strings"
)

// --- Locations ---

// Location is the engine's zone bitmask. Overlay material carries the
// carrier's location with LocationOverlay set.
type Location uint8

const (
	LocationNone    Location = 0x00
	LocationDeck    Location = 0x01
	LocationHand    Location = 0x02
	LocationMZone   Location = 0x04
	LocationSZone   Location = 0x08
	LocationGrave   Location = 0x10
	LocationRemoved Location = 0x20
	LocationExtra   Location = 0x40
	LocationOverlay Location = 0x80

	// LocationOnField is the monster and spell/trap zones together.
	LocationOnField = LocationMZone | LocationSZone
)

// Locations lists every ordinary zone kind a player owns.
var Locations = []Location{
	LocationDeck, LocationExtra, LocationGrave, LocationHand,
	LocationMZone, LocationSZone, LocationRemoved,
}

// IsOverlay reports whether the location addresses overlay material.
func (l Location) IsOverlay() bool {
	return l&LocationOverlay != 0
}

// Zone strips the overlay bit.
func (l Location) Zone() Location {
	return l &^ LocationOverlay
}

func (l Location) String() string {
	var name string
	switch l.Zone() {
	case LocationNone:
		name = "None"
	case LocationDeck:
		name = "Deck"
	case LocationHand:
		name = "Hand"
	case LocationMZone:
		name = "Monster Zone"
	case LocationSZone:
		name = "Spell/Trap Zone"
	case LocationGrave:
		name = "Graveyard"
	case LocationRemoved:
		name = "Banished"
	case LocationExtra:
		name = "Extra Deck"
	default:
		name = fmt.Sprintf("Location(0x%02x)", uint8(l.Zone()))
	}
	if l.IsOverlay() {
		return name + " (overlay)"
	}
	return name
}

// --- Positions ---

// Position is the face × orientation bitmask of a card.
type Position uint8

const (
	PositionFaceUpAttack    Position = 0x1
	PositionFaceDownAttack  Position = 0x2
	PositionFaceUpDefense   Position = 0x4
	PositionFaceDownDefense Position = 0x8

	PositionFaceUp   = PositionFaceUpAttack | PositionFaceUpDefense
	PositionFaceDown = PositionFaceDownAttack | PositionFaceDownDefense
	PositionAttack   = PositionFaceUpAttack | PositionFaceDownAttack
	PositionDefense  = PositionFaceUpDefense | PositionFaceDownDefense
)

// IsFaceUp reports whether any face-up bit is set.
func (p Position) IsFaceUp() bool {
	return p&PositionFaceUp != 0
}

func (p Position) String() string {
	var parts []string
	switch {
	case p&PositionFaceUp != 0:
		parts = append(parts, "face-up")
	case p&PositionFaceDown != 0:
		parts = append(parts, "face-down")
	}
	switch {
	case p&PositionAttack != 0:
		parts = append(parts, "ATK")
	case p&PositionDefense != 0:
		parts = append(parts, "DEF")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Position(0x%x)", uint8(p))
	}
	return strings.Join(parts, " ")
}

// --- Phases ---

type Phase uint16

const (
	PhaseDraw        Phase = 0x01
	PhaseStandby     Phase = 0x02
	PhaseMain1       Phase = 0x04
	PhaseBattleStart Phase = 0x08
	PhaseBattleStep  Phase = 0x10
	PhaseDamage      Phase = 0x20
	PhaseDamageCalc  Phase = 0x40
	PhaseBattle      Phase = 0x80
	PhaseMain2       Phase = 0x100
	PhaseEnd         Phase = 0x200
)

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "Draw Phase"
	case PhaseStandby:
		return "Standby Phase"
	case PhaseMain1:
		return "Main Phase 1"
	case PhaseBattleStart:
		return "Battle Start"
	case PhaseBattleStep:
		return "Battle Step"
	case PhaseDamage:
		return "Damage Step"
	case PhaseDamageCalc:
		return "Damage Calc"
	case PhaseBattle:
		return "Battle Phase"
	case PhaseMain2:
		return "Main Phase 2"
	case PhaseEnd:
		return "End Phase"
	default:
		return ""
	}
}

// --- Hints ---

type HintType uint8

const (
	HintEvent      HintType = 1
	HintMessage    HintType = 2
	HintSelectMsg  HintType = 3
	HintOpSelected HintType = 4
	HintEffect     HintType = 5
	HintRace       HintType = 6
	HintAttrib     HintType = 7
	HintCode       HintType = 8
	HintNumber     HintType = 9
	HintCard       HintType = 10
	HintZone       HintType = 11
)

// --- Card query flags ---

// QueryFlag selects the attributes returned by a card query.
type QueryFlag uint32

const (
	QueryCode        QueryFlag = 0x1
	QueryPosition    QueryFlag = 0x2
	QueryAlias       QueryFlag = 0x4
	QueryType        QueryFlag = 0x8
	QueryLevel       QueryFlag = 0x10
	QueryRank        QueryFlag = 0x20
	QueryAttribute   QueryFlag = 0x40
	QueryRace        QueryFlag = 0x80
	QueryAttack      QueryFlag = 0x100
	QueryDefense     QueryFlag = 0x200
	QueryBaseAttack  QueryFlag = 0x400
	QueryBaseDefense QueryFlag = 0x800
	QueryReason      QueryFlag = 0x1000
	QueryReasonCard  QueryFlag = 0x2000
	QueryEquipCard   QueryFlag = 0x4000
	QueryTargetCard  QueryFlag = 0x8000
	QueryOverlayCard QueryFlag = 0x10000
	QueryCounters    QueryFlag = 0x20000
	QueryOwner       QueryFlag = 0x40000
	QueryStatus      QueryFlag = 0x80000
	QueryIsPublic    QueryFlag = 0x100000
	QueryLScale      QueryFlag = 0x200000
	QueryRScale      QueryFlag = 0x400000
	QueryLink        QueryFlag = 0x800000
)

// LocInfo is the packed controller/location/sequence/position quadruple used
// throughout the protocol. For overlay locations Position holds the
// sub-sequence within the carrier's material list.
type LocInfo struct {
	Controller uint8    `json:"controller"`
	Location   Location `json:"location"`
	Sequence   uint8    `json:"sequence"`
	Position   uint8    `json:"pos_or_subseq"`
}

// Subsequence returns the overlay index carried in the position byte.
func (li LocInfo) Subsequence() int {
	return int(li.Position)
}

func (li LocInfo) String() string {
	return fmt.Sprintf("P%d %s#%d", li.Controller+1, li.Location, li.Sequence)
}

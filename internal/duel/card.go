package duel

import (
	"github.com/ghlin/ego/internal/proto"
)

// CardID is a handle into the state's card arena. Zero means no card.
type CardID int

// Print is the static print data of a card, filled in by refreshes once the
// card is known.
type Print struct {
	Type       uint32 `json:"type,omitempty"`
	Level      uint32 `json:"level,omitempty"`
	Rank       uint32 `json:"rank,omitempty"`
	Attribute  uint32 `json:"attribute,omitempty"`
	Race       uint32 `json:"race,omitempty"`
	Attack     int32  `json:"attack,omitempty"`
	Defense    int32  `json:"defense,omitempty"`
	LScale     uint32 `json:"lscale,omitempty"`
	RScale     uint32 `json:"rscale,omitempty"`
	LinkMarker uint32 `json:"link_marker,omitempty"`
}

// Snapshot is the mutable part of a card at one point in time.
type Snapshot struct {
	Code       uint32         `json:"code"`
	Controller uint8          `json:"controller"`
	Location   proto.Location `json:"location"`
	Sequence   int            `json:"sequence"`
	Position   proto.Position `json:"position"`
	Print
}

// Card is a read-only copy of a card. Previous holds the snapshot taken
// before the message being applied; Dirty marks cards touched by it.
type Card struct {
	ID CardID `json:"id"`
	Snapshot
	Previous Snapshot `json:"previous"`
	Dirty    bool     `json:"dirty"`
	Carrier  CardID   `json:"carrier,omitempty"`
	Overlay  []CardID `json:"overlay,omitempty"`
}

// Moved reports whether the card changed zone, controller or slot during
// the last message.
func (c Card) Moved() bool {
	return c.Controller != c.Previous.Controller ||
		c.Location != c.Previous.Location ||
		c.Sequence != c.Previous.Sequence
}

type card struct {
	id      CardID
	cur     Snapshot
	prev    Snapshot
	dirty   bool
	carrier CardID
	overlay []CardID
}

func (c *card) view() Card {
	v := Card{
		ID:       c.id,
		Snapshot: c.cur,
		Previous: c.prev,
		Dirty:    c.dirty,
		Carrier:  c.carrier,
	}
	if len(c.overlay) > 0 {
		v.Overlay = append([]CardID(nil), c.overlay...)
	}
	return v
}

func (c *card) applyInfo(info *proto.CardInfo) {
	c.dirty = true
	if info.Has(proto.QueryCode) && info.Code != 0 {
		c.cur.Code = info.Code
	}
	if info.Has(proto.QueryPosition) && info.Position != 0 {
		c.cur.Position = info.Position
	}
	p := &c.cur.Print
	if info.Has(proto.QueryType) {
		p.Type = info.CardType
	}
	if info.Has(proto.QueryLevel) {
		p.Level = info.Level
	}
	if info.Has(proto.QueryRank) {
		p.Rank = info.Rank
	}
	if info.Has(proto.QueryAttribute) {
		p.Attribute = info.Attribute
	}
	if info.Has(proto.QueryRace) {
		p.Race = info.Race
	}
	if info.Has(proto.QueryAttack) {
		p.Attack = info.Attack
	}
	if info.Has(proto.QueryDefense) {
		p.Defense = info.Defense
	}
	if info.Has(proto.QueryLScale) {
		p.LScale = info.LScale
	}
	if info.Has(proto.QueryRScale) {
		p.RScale = info.RScale
	}
	if info.Has(proto.QueryLink) {
		p.LinkMarker = info.LinkMarker
	}
}

package view

import (
	"fmt"

	"github.com/ghlin/ego/internal/duel"
	"github.com/ghlin/ego/internal/log"
	"github.com/ghlin/ego/internal/proto"
)

// CardName names code through cat. Unknown cards read "(unknown card)".
func CardName(cat duel.Catalog, code uint32) string {
	if code == 0 {
		return "(unknown card)"
	}
	if cat != nil {
		if name, ok := cat.Name(code); ok {
			return name
		}
	}
	return fmt.Sprintf("#%d", code)
}

// BuildBoard renders s.
func BuildBoard(s *duel.State, cat duel.Catalog) *BoardView {
	st := s.Status()
	bv := &BoardView{
		Turn:       st.Turn,
		Phase:      phaseName(st.Phase),
		TurnPlayer: int(st.TurnPlayer),
		Event:      st.Event,
		Winner:     st.Winner,
	}
	if m := s.Current(); m != nil {
		bv.Current = m.Type().String()
	}
	if c, ok := s.ChainTarget(); ok {
		cv := cardView(c, cat)
		bv.Chain = &cv
	}
	for p := range 2 {
		bv.Players[p] = buildPlayer(s, cat, uint8(p), st.LP[p])
	}
	return bv
}

func buildPlayer(s *duel.State, cat duel.Catalog, p uint8, lp int32) PlayerView {
	pv := PlayerView{
		LP:         lp,
		Hand:       cardViews(s.Zone(p, proto.LocationHand), cat),
		Grave:      cardViews(s.Zone(p, proto.LocationGrave), cat),
		Removed:    cardViews(s.Zone(p, proto.LocationRemoved), cat),
		Extra:      cardViews(s.Zone(p, proto.LocationExtra), cat),
		DeckCount:  len(s.Zone(p, proto.LocationDeck)),
		ExtraCount: len(s.Zone(p, proto.LocationExtra)),
	}
	for i, c := range s.Zone(p, proto.LocationMZone) {
		if i < len(pv.MZone) {
			pv.MZone[i] = zoneView(s, c, cat)
		}
	}
	for i, c := range s.Zone(p, proto.LocationSZone) {
		if i < len(pv.SZone) {
			pv.SZone[i] = zoneView(s, c, cat)
		}
	}
	return pv
}

func phaseName(p proto.Phase) string {
	if p == 0 {
		return ""
	}
	return p.String()
}

func cardView(c duel.Card, cat duel.Catalog) CardView {
	cv := CardView{Code: c.Code, FaceUp: c.Position.IsFaceUp()}
	cv.Name = CardName(cat, c.Code)
	if c.Position != 0 {
		cv.Position = c.Position.String()
	}
	return cv
}

func cardViews(cards []duel.Card, cat duel.Catalog) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c, cat))
	}
	return out
}

func zoneView(s *duel.State, c duel.Card, cat duel.Catalog) ZoneView {
	if c.ID == 0 {
		return ZoneView{Empty: true}
	}
	zv := ZoneView{
		FaceDown: !c.Position.IsFaceUp(),
		Code:     c.Code,
		Name:     CardName(cat, c.Code),
		ATK:      c.Attack,
		DEF:      c.Defense,
	}
	switch {
	case c.Position&proto.PositionAttack != 0:
		zv.Position = "ATK"
	case c.Position&proto.PositionDefense != 0:
		zv.Position = "DEF"
	}
	for _, m := range s.Materials(c.ID) {
		zv.Materials = append(zv.Materials, CardName(cat, m.Code))
	}
	return zv
}

// EventViews converts logged game events.
func EventViews(events []log.GameEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{
			Seq:     e.Seq,
			Turn:    e.Turn,
			Phase:   e.Phase,
			Player:  e.Player,
			Type:    e.Type.String(),
			Card:    e.Card,
			Details: e.Details,
		})
	}
	return out
}

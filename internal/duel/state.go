// Package duel reconstructs the board from the engine's message stream.
// Every card lives in an arena addressed by CardID; zone containers hold
// handles, and overlay materials are owned by their carrier.
package duel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
	"github.com/ghlin/ego/internal/strconf"
)

// Zone sizes as the engine's field query reports them: the monster zone
// includes both extra monster zones, the spell/trap zone the field and
// pendulum slots.
const (
	MZoneSlots = 7
	SZoneSlots = 8
)

// Catalog resolves card names and effect texts for display.
type Catalog interface {
	Name(code uint32) (string, bool)
	Text(code uint32, index int) (string, bool)
}

// Options configures a State.
type Options struct {
	// Validate checks container sequence consistency after every change.
	Validate  bool
	Logger    *zap.Logger
	Templates *strconf.Templates
	Catalog   Catalog
	Observer  Observer
}

// StartInfo seeds a fresh duel.
type StartInfo struct {
	StartLP [2]int32
	Main    [2]int
	Extra   [2]int
}

// StartFromMessage builds a StartInfo from MSG_START.
func StartFromMessage(m *proto.Start) StartInfo {
	var info StartInfo
	info.StartLP = m.StartLP
	for p := range 2 {
		info.Main[p] = m.DeckCount[p].Main
		info.Extra[p] = m.DeckCount[p].Extra
	}
	return info
}

// StartFromReplay builds a StartInfo from a replay's decks. Replays carry no
// MSG_START of their own.
func StartFromReplay(r *replay.Replay) StartInfo {
	var info StartInfo
	for p := 0; p < 2 && p < len(r.Players); p++ {
		info.StartLP[p] = r.StartLP
		info.Main[p] = len(r.Players[p].Main)
		info.Extra[p] = len(r.Players[p].Extra)
	}
	return info
}

// Status is the scalar part of the duel.
type Status struct {
	Turn       int         `json:"turn"`
	TurnPlayer uint8       `json:"turn_player"`
	Phase      proto.Phase `json:"phase"`
	LP         [2]int32    `json:"lp"`
	// Winner is -1 until MSG_WIN.
	Winner    int    `json:"winner"`
	WinReason uint8  `json:"win_reason,omitempty"`
	Event     string `json:"event,omitempty"`
}

const zoneKinds = 7

// State is the reconstructed duel.
type State struct {
	cards       []*card
	zones       [2][zoneKinds][]CardID
	status      Status
	chainTarget CardID
	current     proto.Message

	opts Options
	obs  Observer
	log  *zap.Logger
}

// New returns a state with empty containers. Refreshes may arrive before
// Init and still find their zones.
func New(opts Options) *State {
	s := &State{opts: opts, obs: opts.Observer, log: opts.Logger}
	if s.obs == nil {
		s.obs = NopObserver{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.reset()
	return s
}

// Observe adds an observer after construction.
func (s *State) Observe(o Observer) {
	switch cur := s.obs.(type) {
	case NopObserver:
		s.obs = o
	case Observers:
		s.obs = append(cur, o)
	default:
		s.obs = Observers{cur, o}
	}
}

func (s *State) reset() {
	s.cards = nil
	for p := range 2 {
		for z := range s.zones[p] {
			s.zones[p][z] = nil
		}
		s.zones[p][zoneIndex(proto.LocationMZone)] = make([]CardID, MZoneSlots)
		s.zones[p][zoneIndex(proto.LocationSZone)] = make([]CardID, SZoneSlots)
	}
	s.status = Status{Winner: -1}
	s.chainTarget = 0
}

// Init starts the duel over: containers are cleared, life points set, and
// each deck and extra deck is filled with unknown face-down cards.
func (s *State) Init(info StartInfo) {
	s.reset()
	s.status.LP = info.StartLP
	for p := range 2 {
		s.fill(uint8(p), proto.LocationDeck, info.Main[p])
		s.fill(uint8(p), proto.LocationExtra, info.Extra[p])
	}
}

func (s *State) fill(controller uint8, loc proto.Location, n int) {
	for i := range n {
		c := s.newCard(Snapshot{
			Controller: controller,
			Location:   loc,
			Sequence:   i,
			Position:   proto.PositionFaceDownAttack,
		})
		s.obs.OnNewCard(c.view())
		cont := s.container(controller, loc)
		*cont = append(*cont, c.id)
		s.obs.OnSpawn(c.view())
	}
}

func zoneIndex(loc proto.Location) int {
	switch loc {
	case proto.LocationDeck:
		return 0
	case proto.LocationHand:
		return 1
	case proto.LocationMZone:
		return 2
	case proto.LocationSZone:
		return 3
	case proto.LocationGrave:
		return 4
	case proto.LocationRemoved:
		return 5
	case proto.LocationExtra:
		return 6
	}
	return -1
}

func isPile(loc proto.Location) bool {
	return loc != proto.LocationMZone && loc != proto.LocationSZone
}

func (s *State) container(controller uint8, loc proto.Location) *[]CardID {
	return &s.zones[controller][zoneIndex(loc)]
}

func (s *State) newCard(snap Snapshot) *card {
	c := &card{id: CardID(len(s.cards) + 1), cur: snap, prev: snap, dirty: true}
	s.cards = append(s.cards, c)
	return c
}

func (s *State) get(id CardID) *card {
	if id <= 0 || int(id) > len(s.cards) {
		return nil
	}
	return s.cards[id-1]
}

func (s *State) destroy(c *card) {
	s.cards[c.id-1] = nil
}

func (s *State) fail(controller uint8, loc proto.Location, seq int, format string, args ...any) error {
	var msg proto.MsgType
	if s.current != nil {
		msg = s.current.Type()
	}
	return &StateError{
		Controller: controller,
		Location:   loc,
		Sequence:   seq,
		Message:    msg,
		Reason:     fmt.Sprintf(format, args...),
	}
}

// locate returns the container for an ordinary zone.
func (s *State) locate(controller uint8, loc proto.Location) (*[]CardID, error) {
	if controller > 1 {
		return nil, s.fail(controller, loc, -1, "no such player")
	}
	if zoneIndex(loc) < 0 {
		return nil, s.fail(controller, loc, -1, "no such zone")
	}
	return s.container(controller, loc), nil
}

// at resolves a card by location. For overlay locations sequence addresses
// the carrier and subseq the material.
func (s *State) at(controller uint8, loc proto.Location, seq, subseq int) (*card, error) {
	cont, err := s.locate(controller, loc.Zone())
	if err != nil {
		return nil, err
	}
	if seq < 0 || seq >= len(*cont) || (*cont)[seq] == 0 {
		return nil, s.fail(controller, loc, seq, "no card at slot")
	}
	c := s.get((*cont)[seq])
	if !loc.IsOverlay() {
		return c, nil
	}
	if subseq < 0 || subseq >= len(c.overlay) {
		return nil, s.fail(controller, loc, seq, "no overlay material %d", subseq)
	}
	return s.get(c.overlay[subseq]), nil
}

// put places c into a zone following that zone's insertion policy.
func (s *State) put(c *card, controller uint8, loc proto.Location, seq int) error {
	cont, err := s.locate(controller, loc)
	if err != nil {
		return err
	}
	c.dirty = true
	c.cur.Controller = controller
	c.cur.Location = loc

	switch loc {
	case proto.LocationMZone, proto.LocationSZone:
		if seq < 0 || seq >= len(*cont) {
			return s.fail(controller, loc, seq, "no such slot")
		}
		if (*cont)[seq] != 0 {
			return s.fail(controller, loc, seq, "slot occupied by card %d", (*cont)[seq])
		}
		(*cont)[seq] = c.id
		c.cur.Sequence = seq
	case proto.LocationDeck:
		if seq != 0 {
			s.appendTo(cont, c)
		} else {
			s.insertAt(cont, 0, c)
		}
	case proto.LocationExtra:
		if c.cur.Position.IsFaceUp() {
			s.appendTo(cont, c)
		} else if i := s.firstFaceUp(*cont); i < 0 {
			s.appendTo(cont, c)
		} else {
			s.insertAt(cont, i, c)
		}
	default:
		s.appendTo(cont, c)
	}
	return s.check(controller, loc, *cont)
}

// placeAt puts c at exactly seq, ignoring the zone's insertion policy.
func (s *State) placeAt(c *card, controller uint8, loc proto.Location, seq int) error {
	if !isPile(loc) {
		return s.put(c, controller, loc, seq)
	}
	cont, err := s.locate(controller, loc)
	if err != nil {
		return err
	}
	c.dirty = true
	c.cur.Controller = controller
	c.cur.Location = loc
	if seq < 0 || seq > len(*cont) {
		return s.fail(controller, loc, seq, "no such slot")
	}
	if seq == len(*cont) {
		s.appendTo(cont, c)
	} else {
		s.insertAt(cont, seq, c)
	}
	return s.check(controller, loc, *cont)
}

func (s *State) appendTo(cont *[]CardID, c *card) {
	*cont = append(*cont, c.id)
	c.cur.Sequence = len(*cont) - 1
}

func (s *State) insertAt(cont *[]CardID, i int, c *card) {
	*cont = append(*cont, 0)
	copy((*cont)[i+1:], (*cont)[i:])
	(*cont)[i] = c.id
	s.renumber(*cont)
}

func (s *State) firstFaceUp(cont []CardID) int {
	for i, id := range cont {
		if s.get(id).cur.Position.IsFaceUp() {
			return i
		}
	}
	return -1
}

// remove takes the card out of an ordinary zone. Field slots are vacated;
// piles close the gap.
func (s *State) remove(controller uint8, loc proto.Location, seq int) (*card, error) {
	cont, err := s.locate(controller, loc)
	if err != nil {
		return nil, err
	}
	if seq < 0 || seq >= len(*cont) || (*cont)[seq] == 0 {
		return nil, s.fail(controller, loc, seq, "no card to remove")
	}
	c := s.get((*cont)[seq])
	c.dirty = true
	if !isPile(loc) {
		(*cont)[seq] = 0
		return c, nil
	}
	*cont = append((*cont)[:seq], (*cont)[seq+1:]...)
	s.renumber(*cont)
	return c, s.check(controller, loc, *cont)
}

// renumber rewrites the sequence of every card in an ordered container and
// reports the container to observers.
func (s *State) renumber(ids []CardID) {
	views := make([]Card, 0, len(ids))
	for i, id := range ids {
		c := s.get(id)
		if c == nil {
			continue
		}
		if c.cur.Sequence != i {
			c.cur.Sequence = i
			c.dirty = true
		}
		views = append(views, c.view())
	}
	s.obs.OnAdjustSequence(views)
}

func (s *State) check(controller uint8, loc proto.Location, ids []CardID) error {
	if !s.opts.Validate {
		return nil
	}
	return s.verify(controller, loc, ids)
}

func (s *State) verify(controller uint8, loc proto.Location, ids []CardID) error {
	for i, id := range ids {
		if id == 0 {
			continue
		}
		c := s.get(id)
		if c == nil {
			return s.fail(controller, loc, i, "dangling card %d", id)
		}
		if c.cur.Sequence != i {
			return s.fail(controller, loc, i, "card %d believes it is at %d", id, c.cur.Sequence)
		}
		for j, mid := range c.overlay {
			m := s.get(mid)
			if m == nil || m.cur.Sequence != j || m.carrier != id {
				return s.fail(controller, loc|proto.LocationOverlay, i, "material %d out of place", j)
			}
		}
	}
	return nil
}

// Validate checks every container and every material's carrier handle.
func (s *State) Validate() error {
	for p := range 2 {
		for _, loc := range proto.Locations {
			if err := s.verify(uint8(p), loc, *s.container(uint8(p), loc)); err != nil {
				return err
			}
		}
	}
	for _, c := range s.cards {
		if c == nil || c.carrier == 0 {
			continue
		}
		if s.get(c.carrier) == nil {
			return s.fail(c.cur.Controller, c.cur.Location, c.cur.Sequence, "material %d held by freed card %d", c.id, c.carrier)
		}
	}
	return nil
}

// Snapshot remembers every card's current attributes as its previous ones
// and clears the dirty flags.
func (s *State) Snapshot() {
	for _, c := range s.cards {
		if c == nil {
			continue
		}
		c.prev = c.cur
		c.dirty = false
	}
}

// --- Queries ---

// Status returns the scalar duel state.
func (s *State) Status() Status {
	return s.status
}

// Card returns the card with the given handle.
func (s *State) Card(id CardID) (Card, bool) {
	c := s.get(id)
	if c == nil {
		return Card{}, false
	}
	return c.view(), true
}

// At returns the card at a location, with overlay addressing as in MSG_MOVE.
func (s *State) At(controller uint8, loc proto.Location, seq, subseq int) (Card, error) {
	c, err := s.at(controller, loc, seq, subseq)
	if err != nil {
		return Card{}, err
	}
	return c.view(), nil
}

// Zone returns a zone's slots in order. Vacant field slots have ID zero.
func (s *State) Zone(controller uint8, loc proto.Location) []Card {
	if controller > 1 || zoneIndex(loc) < 0 {
		return nil
	}
	ids := *s.container(controller, loc)
	out := make([]Card, len(ids))
	for i, id := range ids {
		if c := s.get(id); c != nil {
			out[i] = c.view()
		}
	}
	return out
}

// Materials returns the overlay materials of a card.
func (s *State) Materials(id CardID) []Card {
	c := s.get(id)
	if c == nil {
		return nil
	}
	out := make([]Card, 0, len(c.overlay))
	for _, mid := range c.overlay {
		out = append(out, s.get(mid).view())
	}
	return out
}

// Cards returns every live card in handle order.
func (s *State) Cards() []Card {
	out := make([]Card, 0, len(s.cards))
	for _, c := range s.cards {
		if c != nil {
			out = append(out, c.view())
		}
	}
	return out
}

// Changed returns the cards touched by the last message.
func (s *State) Changed() []Card {
	var out []Card
	for _, c := range s.cards {
		if c != nil && c.dirty {
			out = append(out, c.view())
		}
	}
	return out
}

// ChainTarget returns the card that most recently started a chain link.
func (s *State) ChainTarget() (Card, bool) {
	return s.Card(s.chainTarget)
}

// Current returns the message being or last applied.
func (s *State) Current() proto.Message {
	return s.current
}

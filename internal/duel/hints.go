package duel

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/strconf"
)

// System string ids used by the log.
const (
	strConfirmDecktop = 207
	strLocationBase   = 1000
	strSZoneSpell     = 1003
	strFieldZone      = 1008
	strPendulumZone   = 1009
	strAttributeBase  = 1010
	strRaceBase       = 1020
	strTypeBase       = 1050
	strOpSelected     = 1510
	strDeclared       = 1511
	strSet            = 1601
	strSummoning      = 1603
	strSummoned       = 1604
	strSpSummoning    = 1605
	strSpSummoned     = 1606
	strFlipSummoning  = 1607
	strFlipSummoned   = 1608
	strChained        = 1609
	strBecomeTarget   = 1610
)

func (s *State) system(id int, args ...any) string {
	return s.opts.Templates.Render(strconf.System, id, args...)
}

func (s *State) name(code uint32) string {
	if s.opts.Catalog != nil {
		if name, ok := s.opts.Catalog.Name(code); ok {
			return name
		}
	}
	return fmt.Sprintf("<<missing entry: %d>>", code)
}

// Describe renders a packed description: values below 10000 are system
// strings, anything else is code<<4 | text index.
func (s *State) Describe(desc int32) string {
	if desc < 10000 {
		return s.system(int(desc))
	}
	code, id := uint32(desc)>>4, int(desc&0xF)
	if s.opts.Catalog == nil {
		return fmt.Sprintf("<<missing entry: %d#%d>>", code, id)
	}
	if _, ok := s.opts.Catalog.Name(code); !ok {
		return fmt.Sprintf("<<missing entry: %d#%d>>", code, id)
	}
	text, ok := s.opts.Catalog.Text(code, id)
	if !ok {
		return fmt.Sprintf("<<missing entry text: %d#%d>>", code, id)
	}
	return text
}

// FormatLocation names a zone the way the log does.
func (s *State) FormatLocation(loc proto.Location, seq int) string {
	loc = loc.Zone()
	if loc == proto.LocationSZone {
		switch {
		case seq < 5:
			return s.system(strSZoneSpell)
		case seq == 5:
			return s.system(strFieldZone)
		default:
			return s.system(strPendulumZone)
		}
	}
	if loc == proto.LocationNone {
		return "<token pile>"
	}
	index := strLocationBase
	for filter := 1; filter < 0x100; filter <<= 1 {
		if proto.Location(filter) == loc {
			return s.system(index)
		}
		index++
	}
	return fmt.Sprintf("<<unknown location: 0x%x>>", uint8(loc))
}

// formatFlags joins the system strings of every bit set in value, starting
// at base for bit 0 and stopping before limit.
func (s *State) formatFlags(value, limit uint32, base int) string {
	var parts []string
	index := base
	for filter := uint32(1); filter != limit; filter <<= 1 {
		if value&filter != 0 {
			parts = append(parts, s.system(index))
		}
		index++
	}
	return strings.Join(parts, ", ")
}

// FormatRace names the races in a race bitmask.
func (s *State) FormatRace(race uint32) string {
	return s.formatFlags(race, 0x2000000, strRaceBase)
}

// FormatAttribute names the attributes in an attribute bitmask.
func (s *State) FormatAttribute(attr uint32) string {
	return s.formatFlags(attr, 0x80, strAttributeBase)
}

// FormatType names the card types in a type bitmask.
func (s *State) FormatType(typ uint32) string {
	return s.formatFlags(typ, 0x8000000, strTypeBase)
}

func (s *State) hint(m *proto.Hint) {
	switch m.HintType {
	case proto.HintEvent:
		s.status.Event = s.system(int(m.Data))
	case proto.HintMessage:
		s.obs.OnHintMessage(s.Describe(m.Data))
	case proto.HintOpSelected:
		s.obs.OnHintMessage(s.system(strOpSelected, s.Describe(m.Data)))
	case proto.HintCard, proto.HintEffect:
		s.obs.OnHighlightCode(uint32(m.Data))
	case proto.HintRace:
		s.obs.OnHintMessage(s.system(strDeclared, s.FormatRace(uint32(m.Data))))
	case proto.HintAttrib:
		s.obs.OnHintMessage(s.system(strDeclared, s.FormatAttribute(uint32(m.Data))))
	case proto.HintCode:
		code := uint32(m.Data)
		if s.opts.Catalog == nil {
			s.log.Warn("declared card has no entry", zap.Uint32("code", code))
		} else if _, ok := s.opts.Catalog.Name(code); !ok {
			s.log.Warn("declared card has no entry", zap.Uint32("code", code))
		}
		s.obs.OnHintMessage(s.system(strDeclared, s.name(code)))
	}
}

func (s *State) confirm(m *proto.ConfirmCards) error {
	switch m.Msg {
	case proto.MsgConfirmDecktop:
		return s.confirmTop(m, proto.LocationDeck)
	case proto.MsgConfirmExtratop:
		return s.confirmTop(m, proto.LocationExtra)
	}
	// Confirmed cards elsewhere are shown; a miss does not stop the duel.
	for _, cl := range m.Cards {
		c, err := s.at(cl.Controller, cl.Location, int(cl.Sequence), 0)
		if err != nil {
			s.log.Debug("confirmed card not found", zap.Error(err))
			continue
		}
		if cl.Code != 0 {
			s.setCode(c, cl.Code)
		}
		s.obs.OnReveal(c.view())
	}
	return nil
}

// confirmTop reveals cards counted from the top of a pile. The top of the
// extra deck is the last face-down card.
func (s *State) confirmTop(m *proto.ConfirmCards, loc proto.Location) error {
	cont, err := s.locate(m.Player, loc)
	if err != nil {
		return err
	}
	top := len(*cont) - 1
	if loc == proto.LocationExtra {
		if i := s.firstFaceUp(*cont); i >= 0 {
			top = i - 1
		}
	}
	s.obs.OnLog(s.system(strConfirmDecktop, len(m.Cards)))
	for i, cl := range m.Cards {
		idx := top - i
		if idx < 0 || idx >= len(*cont) {
			return s.fail(m.Player, loc, idx, "confirmed card %d past the pile", i)
		}
		c := s.get((*cont)[idx])
		if cl.Code != 0 {
			s.setCode(c, cl.Code)
		}
		s.obs.OnReveal(c.view())
		s.obs.OnLog(" * [" + s.name(c.cur.Code) + "]")
	}
	return nil
}

// deckTop reveals one deck card. The high bit of the code marks a face-up
// card in a reversed deck.
func (s *State) deckTop(m *proto.DeckTop) error {
	cont, err := s.locate(m.Player, proto.LocationDeck)
	if err != nil {
		return err
	}
	idx := len(*cont) - 1 - int(m.Sequence)
	if idx < 0 {
		return s.fail(m.Player, proto.LocationDeck, idx, "deck top %d past the pile", m.Sequence)
	}
	c := s.get((*cont)[idx])
	if code := m.Code &^ 0x80000000; code != 0 {
		s.setCode(c, code)
	}
	s.obs.OnReveal(c.view())
	return nil
}

func (s *State) summoning(m *proto.Summoning) {
	id := strSummoning
	switch m.Msg {
	case proto.MsgSpSummoning:
		id = strSpSummoning
	case proto.MsgFlipSummoning:
		id = strFlipSummoning
	}
	s.obs.OnHintMessage(s.system(id, s.name(m.Code)))
}

func (s *State) simple(m *proto.Simple) {
	switch m.Msg {
	case proto.MsgSummoned:
		s.obs.OnHintMessage(s.system(strSummoned))
	case proto.MsgSpSummoned:
		s.obs.OnHintMessage(s.system(strSpSummoned))
	case proto.MsgFlipSummoned:
		s.obs.OnHintMessage(s.system(strFlipSummoned))
	}
}

func (s *State) chaining(m *proto.Chaining) error {
	c, err := s.at(m.Controller, m.Location, int(m.Sequence), int(m.Subsequence))
	if err != nil {
		return err
	}
	s.chainTarget = c.id
	s.obs.OnHighlight(c.view())
	return nil
}

func (s *State) chainStep(m *proto.ChainStep) {
	if m.Msg != proto.MsgChained {
		return
	}
	c := s.get(s.chainTarget)
	if c == nil {
		s.log.Warn("chained without a chaining card", zap.Uint8("chain", m.Chain))
		return
	}
	s.obs.OnHintMessage(s.system(strChained, s.name(c.cur.Code)))
	s.chainTarget = 0
}

func (s *State) becomeTarget(m *proto.Targets) error {
	for _, li := range m.Cards {
		c, err := s.at(li.Controller, li.Location, int(li.Sequence), li.Subsequence())
		if err != nil {
			return err
		}
		seq := int(li.Sequence)
		s.obs.OnLog(s.system(strBecomeTarget, s.name(c.cur.Code), s.FormatLocation(li.Location, seq), seq+1))
		s.obs.OnHighlight(c.view())
	}
	return nil
}

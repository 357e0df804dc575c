package duel

import (
	"github.com/ghlin/ego/internal/proto"
)

// move applies MSG_MOVE. Location 0 on either side means the card comes
// from or goes to outside the duel (tokens and the like).
func (s *State) move(m *proto.Move) error {
	prev, cur := m.Previous, m.Current
	switch {
	case prev.Location == proto.LocationNone:
		return s.spawn(m)
	case cur.Location == proto.LocationNone:
		return s.despawn(m)
	case !prev.Location.IsOverlay() && !cur.Location.IsOverlay():
		return s.relocate(m)
	case !prev.Location.IsOverlay():
		return s.attach(m)
	case !cur.Location.IsOverlay():
		return s.detach(m)
	default:
		return s.transfer(m)
	}
}

func (s *State) spawn(m *proto.Move) error {
	cur := m.Current
	c := s.newCard(Snapshot{Position: proto.Position(cur.Position)})
	s.obs.OnNewCard(c.view())
	s.setCode(c, m.Code)
	if err := s.put(c, cur.Controller, cur.Location, int(cur.Sequence)); err != nil {
		return err
	}
	s.obs.OnSpawn(c.view())
	return nil
}

func (s *State) despawn(m *proto.Move) error {
	prev := m.Previous
	c, err := s.at(prev.Controller, prev.Location, int(prev.Sequence), prev.Subsequence())
	if err != nil {
		return err
	}
	if len(c.overlay) > 0 {
		return s.fail(prev.Controller, prev.Location, int(prev.Sequence), "card %d leaves the duel holding %d materials", c.id, len(c.overlay))
	}
	if m.Code != 0 {
		s.setCode(c, m.Code)
	}
	if prev.Location.IsOverlay() {
		s.unlink(c)
	} else if _, err := s.remove(prev.Controller, prev.Location, int(prev.Sequence)); err != nil {
		return err
	}
	s.obs.OnDespawn(c.view())
	s.destroy(c)
	return nil
}

func (s *State) relocate(m *proto.Move) error {
	prev, cur := m.Previous, m.Current
	c, err := s.remove(prev.Controller, prev.Location, int(prev.Sequence))
	if err != nil {
		return err
	}
	// Position first: the extra deck orders by face.
	c.cur.Position = proto.Position(cur.Position)
	if err := s.put(c, cur.Controller, cur.Location, int(cur.Sequence)); err != nil {
		return err
	}
	if m.Code != 0 || cur.Location == proto.LocationExtra {
		s.setCode(c, m.Code)
	}
	s.carry(c)
	s.obs.OnMove(c.view())
	return nil
}

// carry keeps a carrier's materials addressed through it after it moves.
func (s *State) carry(carrier *card) {
	for _, id := range carrier.overlay {
		mat := s.get(id)
		mat.cur.Controller = carrier.cur.Controller
		mat.cur.Location = carrier.cur.Location | proto.LocationOverlay
		mat.dirty = true
	}
}

// attach turns an ordinary card into overlay material.
func (s *State) attach(m *proto.Move) error {
	prev, cur := m.Previous, m.Current
	c, err := s.at(prev.Controller, prev.Location, int(prev.Sequence), 0)
	if err != nil {
		return err
	}
	carrier, err := s.at(cur.Controller, cur.Location.Zone(), int(cur.Sequence), 0)
	if err != nil {
		return err
	}
	if _, err := s.remove(prev.Controller, prev.Location, int(prev.Sequence)); err != nil {
		return err
	}
	s.link(carrier, c)
	if m.Code != 0 {
		s.setCode(c, m.Code)
	}
	s.obs.OnMove(c.view())
	return nil
}

// detach turns overlay material back into an ordinary card.
func (s *State) detach(m *proto.Move) error {
	prev, cur := m.Previous, m.Current
	c, err := s.at(prev.Controller, prev.Location, int(prev.Sequence), prev.Subsequence())
	if err != nil {
		return err
	}
	s.unlink(c)
	c.cur.Position = proto.Position(cur.Position)
	if err := s.put(c, cur.Controller, cur.Location, int(cur.Sequence)); err != nil {
		return err
	}
	if m.Code != 0 || cur.Location == proto.LocationExtra {
		s.setCode(c, m.Code)
	}
	s.obs.OnMove(c.view())
	return nil
}

// transfer moves material from one carrier to another.
func (s *State) transfer(m *proto.Move) error {
	prev, cur := m.Previous, m.Current
	c, err := s.at(prev.Controller, prev.Location, int(prev.Sequence), prev.Subsequence())
	if err != nil {
		return err
	}
	carrier, err := s.at(cur.Controller, cur.Location.Zone(), int(cur.Sequence), 0)
	if err != nil {
		return err
	}
	s.unlink(c)
	s.link(carrier, c)
	if m.Code != 0 {
		s.setCode(c, m.Code)
	}
	s.obs.OnMove(c.view())
	return nil
}

func (s *State) link(carrier, c *card) {
	carrier.overlay = append(carrier.overlay, c.id)
	carrier.dirty = true
	c.carrier = carrier.id
	c.dirty = true
	c.cur.Controller = carrier.cur.Controller
	c.cur.Location = carrier.cur.Location | proto.LocationOverlay
	c.cur.Sequence = len(carrier.overlay) - 1
}

// unlink removes material from its carrier and closes the gap.
func (s *State) unlink(c *card) {
	carrier := s.get(c.carrier)
	c.carrier = 0
	c.dirty = true
	if carrier == nil {
		return
	}
	for i, id := range carrier.overlay {
		if id == c.id {
			carrier.overlay = append(carrier.overlay[:i], carrier.overlay[i+1:]...)
			break
		}
	}
	carrier.dirty = true
	s.renumber(carrier.overlay)
}

package duel

import (
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/proto"
)

// Handle snapshots the state and applies one message.
func (s *State) Handle(m proto.Message) error {
	s.Snapshot()
	return s.Apply(m)
}

// Apply applies one message without taking a snapshot first. Messages with
// no effect on the board are accepted and ignored.
func (s *State) Apply(m proto.Message) error {
	s.current = m
	prev := s.status
	if err := s.apply(m); err != nil {
		s.log.Debug("state diverged", zap.Stringer("msg", m.Type()), zap.Error(err))
		return err
	}
	if prev != s.status {
		if so, ok := s.obs.(StatusObserver); ok {
			so.OnStatus(prev, s.status)
		}
	}
	if s.opts.Validate {
		return s.Validate()
	}
	return nil
}

func (s *State) apply(m proto.Message) error {
	switch m := m.(type) {
	case *proto.Start:
		s.Init(StartFromMessage(m))
	case *proto.UpdateData:
		return s.updateData(m)
	case *proto.UpdateCard:
		s.updateCard(m)
	case *proto.Hint:
		s.hint(m)
	case *proto.ConfirmCards:
		return s.confirm(m)
	case *proto.DeckTop:
		return s.deckTop(m)
	case *proto.PlayerEvent:
		if m.Msg == proto.MsgShuffleDeck {
			return s.shuffleDeck(m.Player)
		}
	case *proto.ShuffleCodes:
		if m.Msg == proto.MsgShuffleHand {
			return s.shuffleHand(m)
		}
	case *proto.NewTurn:
		s.status.Turn++
		s.status.TurnPlayer = m.Player
	case *proto.NewPhase:
		s.status.Phase = m.Phase
	case *proto.Move:
		return s.move(m)
	case *proto.PosChange:
		return s.posChange(m)
	case *proto.Set:
		s.obs.OnHintMessage(s.system(strSet))
	case *proto.Swap:
		return s.swap(m)
	case *proto.Summoning:
		s.summoning(m)
	case *proto.Simple:
		s.simple(m)
	case *proto.Chaining:
		return s.chaining(m)
	case *proto.ChainStep:
		s.chainStep(m)
	case *proto.Targets:
		if m.Msg == proto.MsgBecomeTarget {
			return s.becomeTarget(m)
		}
	case *proto.Draw:
		return s.draw(m)
	case *proto.LifePoints:
		s.lifePoints(m)
	case *proto.Win:
		s.status.Winner = int(m.Player)
		s.status.WinReason = m.Reason
	}
	return nil
}

// --- Refreshes ---

func (s *State) updateData(m *proto.UpdateData) error {
	cont, err := s.locate(m.Player, m.Location)
	if err != nil {
		return err
	}
	for i := range m.Cards {
		info := &m.Cards[i]
		if i >= len(*cont) {
			s.log.Warn("refresh has more records than the zone has cards",
				zap.Stringer("location", m.Location), zap.Int("records", len(m.Cards)), zap.Int("cards", len(*cont)))
			break
		}
		c := s.get((*cont)[i])
		if c == nil {
			if !info.Empty {
				s.log.Warn("refresh describes a vacant slot",
					zap.Stringer("location", m.Location), zap.Int("sequence", i), zap.Uint32("code", info.Code))
			}
			continue
		}
		if info.Empty {
			continue
		}
		c.applyInfo(info)
		s.obs.OnUpdateCard(c.view())
	}
	return nil
}

func (s *State) updateCard(m *proto.UpdateCard) {
	c, err := s.at(m.Player, m.Location, int(m.Sequence), 0)
	if err != nil {
		s.log.Warn("refresh for a missing card", zap.Error(err))
		return
	}
	if m.Info.Empty {
		return
	}
	c.applyInfo(&m.Info)
	s.obs.OnUpdateCard(c.view())
}

// --- Position and code ---

func (s *State) posChange(m *proto.PosChange) error {
	c, err := s.at(m.Controller, m.Location, int(m.Sequence), 0)
	if err != nil {
		return err
	}
	c.cur.Position = m.Current
	c.dirty = true
	s.obs.OnSetPosition(c.view())
	return nil
}

func (s *State) setCode(c *card, code uint32) {
	c.cur.Code = code
	c.dirty = true
	s.obs.OnSetCode(c.view())
}

// --- Piles ---

func (s *State) draw(m *proto.Draw) error {
	deck, err := s.locate(m.Player, proto.LocationDeck)
	if err != nil {
		return err
	}
	n := len(m.Cards)
	if n > len(*deck) {
		return s.fail(m.Player, proto.LocationDeck, len(*deck), "drawing %d from %d cards", n, len(*deck))
	}
	taken := append([]CardID(nil), (*deck)[len(*deck)-n:]...)
	*deck = (*deck)[:len(*deck)-n]
	for i, id := range taken {
		c := s.get(id)
		s.setCode(c, m.Cards[i])
		if err := s.put(c, m.Player, proto.LocationHand, 0); err != nil {
			return err
		}
		s.obs.OnMove(c.view())
	}
	s.renumber(*s.container(m.Player, proto.LocationHand))
	return nil
}

func (s *State) shuffleDeck(player uint8) error {
	deck, err := s.locate(player, proto.LocationDeck)
	if err != nil {
		return err
	}
	views := make([]Card, 0, len(*deck))
	for _, id := range *deck {
		c := s.get(id)
		s.setCode(c, 0)
		views = append(views, c.view())
	}
	s.obs.OnShuffle(player, proto.LocationDeck, views)
	return nil
}

func (s *State) shuffleHand(m *proto.ShuffleCodes) error {
	hand, err := s.locate(m.Player, proto.LocationHand)
	if err != nil {
		return err
	}
	if len(m.Codes) > len(*hand) {
		return s.fail(m.Player, proto.LocationHand, len(*hand), "shuffle of %d cards in a hand of %d", len(m.Codes), len(*hand))
	}
	views := make([]Card, 0, len(*hand))
	for i, id := range *hand {
		c := s.get(id)
		if i < len(m.Codes) {
			s.setCode(c, m.Codes[i])
		}
		views = append(views, c.view())
	}
	s.obs.OnShuffle(m.Player, proto.LocationHand, views)
	return nil
}

func (s *State) swap(m *proto.Swap) error {
	fst, err := s.at(m.First.Controller, m.First.Location, int(m.First.Sequence), 0)
	if err != nil {
		return err
	}
	snd, err := s.at(m.Second.Controller, m.Second.Location, int(m.Second.Sequence), 0)
	if err != nil {
		return err
	}
	a := fst.cur
	if _, err := s.remove(a.Controller, a.Location, a.Sequence); err != nil {
		return err
	}
	// Re-resolve: removing from a pile may have shifted the second card.
	b := snd.cur
	if _, err := s.remove(b.Controller, b.Location, b.Sequence); err != nil {
		return err
	}
	if err := s.placeAt(fst, b.Controller, b.Location, b.Sequence); err != nil {
		return err
	}
	if err := s.placeAt(snd, a.Controller, a.Location, a.Sequence); err != nil {
		return err
	}
	s.obs.OnMove(fst.view())
	s.obs.OnMove(snd.view())
	return nil
}

// --- Life points ---

func (s *State) lifePoints(m *proto.LifePoints) {
	if m.Player > 1 {
		return
	}
	lp := &s.status.LP[m.Player]
	switch m.Msg {
	case proto.MsgDamage, proto.MsgPayLPCost:
		*lp -= m.Value
		if *lp < 0 {
			*lp = 0
		}
	case proto.MsgRecover:
		*lp += m.Value
	case proto.MsgLPUpdate:
		*lp = m.Value
	}
}

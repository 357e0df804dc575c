package duel

import (
	"fmt"
	"strings"

	"github.com/ghlin/ego/internal/log"
	"github.com/ghlin/ego/internal/proto"
)

// EventLog turns observations into game log events.
type EventLog struct {
	NopObserver
	state *State
	out   log.EventLogger
}

// NewEventLog subscribes a logger to s.
func NewEventLog(s *State, out log.EventLogger) *EventLog {
	e := &EventLog{state: s, out: out}
	s.Observe(e)
	return e
}

func (e *EventLog) stamp() (int, string) {
	st := e.state.status
	return st.Turn, st.Phase.String()
}

func (e *EventLog) cardName(c Card) string {
	if c.Code == 0 {
		return "(unknown card)"
	}
	if e.state.opts.Catalog != nil {
		if name, ok := e.state.opts.Catalog.Name(c.Code); ok {
			return name
		}
	}
	return fmt.Sprintf("#%d", c.Code)
}

func where(s Snapshot) string {
	if s.Location.IsOverlay() {
		return fmt.Sprintf("%s material %d", s.Location, s.Sequence+1)
	}
	if isPile(s.Location) {
		return s.Location.String()
	}
	return fmt.Sprintf("%s #%d", s.Location, s.Sequence+1)
}

func (e *EventLog) OnMove(c Card) {
	turn, phase := e.stamp()
	if c.Previous.Location == proto.LocationDeck && c.Location == proto.LocationHand {
		e.out.Log(log.NewDrawEvent(turn, phase, int(c.Controller), e.cardName(c)))
		return
	}
	e.out.Log(log.NewMoveEvent(turn, phase, int(c.Controller), e.cardName(c), where(c.Previous), where(c.Snapshot)))
}

func (e *EventLog) OnSpawn(c Card) {
	// Deck placeholders created at start are not news.
	if c.Code == 0 {
		return
	}
	turn, phase := e.stamp()
	e.out.Log(log.NewSpawnEvent(turn, phase, int(c.Controller), e.cardName(c), where(c.Snapshot)))
}

func (e *EventLog) OnDespawn(c Card) {
	turn, phase := e.stamp()
	e.out.Log(log.NewDespawnEvent(turn, phase, int(c.Controller), e.cardName(c), where(c.Previous)))
}

func (e *EventLog) OnSetPosition(c Card) {
	turn, phase := e.stamp()
	e.out.Log(log.NewChangePositionEvent(turn, phase, int(c.Controller), e.cardName(c), c.Position.String()))
}

func (e *EventLog) OnReveal(c Card) {
	turn, phase := e.stamp()
	e.out.Log(log.NewRevealEvent(turn, phase, int(c.Controller), e.cardName(c), where(c.Snapshot)))
}

func (e *EventLog) OnShuffle(controller uint8, loc proto.Location, _ []Card) {
	turn, phase := e.stamp()
	e.out.Log(log.NewShuffleEvent(turn, phase, int(controller), strings.ToLower(loc.String())))
}

func (e *EventLog) OnHighlight(c Card) {
	if _, ok := e.state.current.(*proto.Chaining); !ok {
		return
	}
	turn, phase := e.stamp()
	e.out.Log(log.NewChainLinkEvent(turn, phase, int(c.Controller), e.cardName(c)))
}

func (e *EventLog) OnHintMessage(text string) {
	turn, phase := e.stamp()
	e.out.Log(log.NewHintEvent(turn, phase, text))
}

func (e *EventLog) OnLog(line string) {
	turn, phase := e.stamp()
	e.out.Log(log.NewNoteEvent(turn, phase, line))
}

func (e *EventLog) OnStatus(prev, cur Status) {
	phase := cur.Phase.String()
	if cur.Turn != prev.Turn {
		e.out.Log(log.NewTurnEvent(cur.Turn, int(cur.TurnPlayer)))
	}
	if cur.Phase != prev.Phase {
		e.out.Log(log.NewPhaseChangeEvent(cur.Turn, phase))
	}
	for p := range 2 {
		if cur.LP[p] != prev.LP[p] && prev.Turn > 0 {
			e.out.Log(log.NewHPChangeEvent(cur.Turn, phase, p, int(prev.LP[p]), int(cur.LP[p])))
		}
	}
	if cur.Winner >= 0 && prev.Winner < 0 {
		e.out.Log(log.NewWinEvent(cur.Turn, phase, cur.Winner, int(cur.WinReason)))
	}
}

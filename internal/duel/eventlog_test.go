package duel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghlin/ego/internal/log"
	"github.com/ghlin/ego/internal/proto"
)

func TestEventLogFollowsTheDuel(t *testing.T) {
	s, _ := newTestState(t)
	ml := log.NewMemoryLogger()
	NewEventLog(s, ml)
	s.Init(StartInfo{StartLP: [2]int32{8000, 8000}, Main: [2]int{10, 10}})
	assert.Empty(t, ml.Events(), "start placeholders are not logged")

	for _, m := range []proto.Message{
		&proto.NewTurn{Player: 0},
		&proto.NewPhase{Phase: proto.PhaseDraw},
		&proto.Draw{Player: 0, Cards: []uint32{1001}},
		&proto.NewPhase{Phase: proto.PhaseMain1},
		move(1001, loc(0, proto.LocationHand, 0, 0), loc(0, proto.LocationSZone, 1, uint8(proto.PositionFaceUpAttack))),
		&proto.Chaining{Code: 1001, Controller: 0, Location: proto.LocationSZone, Sequence: 1},
		&proto.ChainStep{Msg: proto.MsgChained, Chain: 1},
		&proto.LifePoints{Msg: proto.MsgDamage, Player: 1, Value: 8000},
		&proto.Win{Player: 0, Reason: 1},
	} {
		require.NoError(t, s.Handle(m))
	}

	var types []log.EventType
	for _, e := range ml.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []log.EventType{
		log.EventNewTurn,
		log.EventPhaseChange,
		log.EventDraw,
		log.EventPhaseChange,
		log.EventMove,
		log.EventChainLink,
		log.EventHint,
		log.EventHPChange,
		log.EventWin,
	}, types)

	draw := ml.EventsOfType(log.EventDraw)[0]
	assert.Equal(t, "Pot of Greed", draw.Card)
	assert.Equal(t, "Draw Phase", draw.Phase)
	assert.Equal(t, 1, draw.Turn)
	assert.Equal(t, "P2 LP: 8000 → 0", ml.EventsOfType(log.EventHPChange)[0].Details)
	assert.Equal(t, "Pot of Greed: Hand → Spell/Trap Zone #2", ml.EventsOfType(log.EventMove)[0].Details)
	assert.Equal(t, log.EventWin, ml.LastEvent().Type)
	assert.Equal(t, 9, ml.LastEvent().Seq)
}

func TestEventLogWritesText(t *testing.T) {
	s, _ := newTestState(t)
	var buf bytes.Buffer
	NewEventLog(s, log.NewTextLogger(&buf))
	s.Init(StartInfo{Main: [2]int{1, 0}})
	require.NoError(t, s.Handle(&proto.NewTurn{Player: 1}))
	require.NoError(t, s.Handle(&proto.PlayerEvent{Msg: proto.MsgShuffleDeck, Player: 0}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "=== Turn 1 (P2) ===")
	assert.Contains(t, lines[1], "P1 shuffled their deck")
}

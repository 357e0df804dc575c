package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/laminate"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

func testDoc(t *testing.T, forfeit bool) *laminate.Document {
	t.Helper()
	doc := &laminate.Document{
		StartLP: 8000,
		Players: []replay.Player{
			{Name: "alice", Main: []uint32{1001, 1002, 1003}, Extra: []uint32{2001}},
			{Name: "bob", Main: []uint32{1004, 1005}},
		},
		Cards: map[uint32]cardb.Record{
			1001: {Code: 1001, Name: "Gemini Elf"},
		},
		Forfeit: forfeit,
	}
	for _, m := range []proto.Message{
		&proto.NewTurn{Player: 0},
		&proto.NewPhase{Phase: proto.PhaseDraw},
		&proto.Draw{Player: 0, Cards: []uint32{1001}},
		&proto.NewPhase{Phase: proto.PhaseMain1},
		&proto.Move{
			Code:     1001,
			Previous: proto.LocInfo{Controller: 0, Location: proto.LocationHand},
			Current:  proto.LocInfo{Controller: 0, Location: proto.LocationMZone, Sequence: 2, Position: uint8(proto.PositionFaceUpAttack)},
		},
		&proto.SelectYesNo{Player: 1, Description: 30},
	} {
		env, err := proto.Wrap(m)
		require.NoError(t, err)
		doc.Messages = append(doc.Messages, env)
	}
	return doc
}

func TestPlayerSteps(t *testing.T) {
	p, err := NewPlayer("duel.yrp", testDoc(t, false), Options{Validate: true})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{"alice", "bob"}, p.Players())
	assert.Equal(t, 6, p.Len())

	b := p.Board()
	assert.Equal(t, 3, b.Players[0].DeckCount)
	assert.Equal(t, 1, b.Players[0].ExtraCount)
	assert.Equal(t, int32(8000), b.Players[1].LP)
	assert.Equal(t, -1, b.Winner)

	events, err := p.Step(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "NewTurn", events[0].Type)
	assert.Equal(t, "Draw", events[2].Type)
	assert.Equal(t, "Gemini Elf", events[2].Card)

	b = p.Board()
	assert.Equal(t, 1, b.Turn)
	assert.Equal(t, "Draw Phase", b.Phase)
	require.Len(t, b.Players[0].Hand, 1)
	assert.Equal(t, "Gemini Elf", b.Players[0].Hand[0].Name)
	assert.Equal(t, 2, b.Players[0].DeckCount)
	assert.Equal(t, "MSG_DRAW", b.Current)

	events, err = p.Step(0)
	require.NoError(t, err)
	assert.True(t, p.Done())
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	assert.Equal(t, []string{"PhaseChange", "Move", "Question"}, types)

	b = p.Board()
	assert.Empty(t, b.Players[0].Hand)
	zone := b.Players[0].MZone[2]
	assert.False(t, zone.Empty)
	assert.Equal(t, "Gemini Elf", zone.Name)
	assert.Equal(t, "ATK", zone.Position)
	assert.True(t, b.Players[0].MZone[0].Empty)

	require.NotNil(t, p.Pending())
	assert.Equal(t, 1, p.Pending().Player)
	assert.Equal(t, "select yesno", p.Pending().Question)
}

func TestPlayerForfeit(t *testing.T) {
	p, err := NewPlayer("duel.yrp", testDoc(t, true), Options{})
	require.NoError(t, err)
	events, err := p.Step(0)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, "Forfeit", last.Type)
	assert.Equal(t, 1, last.Player)

	again, err := p.Step(1)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestPlayerSeek(t *testing.T) {
	p, err := NewPlayer("duel.yrp", testDoc(t, false), Options{})
	require.NoError(t, err)
	_, err = p.Step(0)
	require.NoError(t, err)

	require.NoError(t, p.Seek(3))
	assert.Equal(t, 3, p.Pos())
	assert.Len(t, p.Board().Players[0].Hand, 1)
	assert.Len(t, p.Events(), 3)
	assert.Nil(t, p.Pending())

	events, err := p.Step(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "PhaseChange", events[0].Type)

	assert.Error(t, p.Seek(99))
	assert.Error(t, p.Seek(-1))
}

func TestPlayerReportsDivergence(t *testing.T) {
	doc := testDoc(t, false)
	env, err := proto.Wrap(&proto.Draw{Player: 1, Cards: []uint32{1, 2, 3}})
	require.NoError(t, err)
	doc.Messages = append([]proto.Envelope{env}, doc.Messages...)

	p, err := NewPlayer("bad.yrp", doc, Options{})
	require.NoError(t, err)
	_, err = p.Step(0)
	assert.ErrorContains(t, err, "message 0 (MSG_DRAW)")
	assert.Equal(t, 0, p.Pos())
}

func TestCardName(t *testing.T) {
	store := cardb.NewStore()
	store.Add(cardb.Record{Code: 7, Name: "Seven"})
	assert.Equal(t, "Seven", CardName(store, 7))
	assert.Equal(t, "#8", CardName(store, 8))
	assert.Equal(t, "(unknown card)", CardName(store, 0))
	assert.Equal(t, "#7", CardName(nil, 7))
}

func TestQuestionName(t *testing.T) {
	assert.Equal(t, "select idlecmd", QuestionName(proto.MsgSelectIdleCmd))
}

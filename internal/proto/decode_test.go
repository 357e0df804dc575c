package proto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMove(t *testing.T) {
	buf := NewBuilder(MsgMove).
		U32(89631139).
		Loc(LocInfo{Controller: 0, Location: LocationHand, Sequence: 2}).
		Loc(LocInfo{Controller: 0, Location: LocationMZone, Sequence: 1, Position: uint8(PositionFaceUpAttack)}).
		U32(0x20).
		Bytes()

	msgs, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	mv, ok := msgs[0].(*Move)
	require.True(t, ok, "got %T", msgs[0])
	assert.Equal(t, uint32(89631139), mv.Code)
	assert.Equal(t, LocationHand, mv.Previous.Location)
	assert.Equal(t, uint8(2), mv.Previous.Sequence)
	assert.Equal(t, LocationMZone, mv.Current.Location)
	assert.Equal(t, uint8(PositionFaceUpAttack), mv.Current.Position)
	assert.Equal(t, uint32(0x20), mv.Reason)
}

func TestDecodeConcatenated(t *testing.T) {
	var buf []byte
	buf = append(buf, NewBuilder(MsgNewTurn).U8(1).Bytes()...)
	buf = append(buf, NewBuilder(MsgNewPhase).U16(uint16(PhaseStandby)).Bytes()...)
	buf = append(buf, NewBuilder(MsgDraw).U8(1).U8(2).U32(10).U32(20).Bytes()...)
	buf = append(buf, NewBuilder(MsgChainEnd).Bytes()...)

	msgs, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, &NewTurn{Player: 1}, msgs[0])
	assert.Equal(t, &NewPhase{Phase: PhaseStandby}, msgs[1])
	assert.Equal(t, &Draw{Player: 1, Cards: []uint32{10, 20}}, msgs[2])
	assert.Equal(t, MsgChainEnd, msgs[3].Type())
}

func TestDecodeQuestions(t *testing.T) {
	idle := NewBuilder(MsgSelectIdleCmd).
		U8(0).
		U8(1).U32(100).U8(0).U8(uint8(LocationHand)).U8(0). // summonable
		U8(0). // spsummon
		U8(0). // repos
		U8(0). // mset
		U8(0). // sset
		U8(1).U32(200).U8(0).U8(uint8(LocationSZone)).U8(1).I32(3200). // activatable
		U8(1).U8(1).U8(0).
		Bytes()

	m, err := DecodeOne(idle)
	require.NoError(t, err)
	require.True(t, IsQuestion(m))

	cmd := m.(*SelectIdleCmd)
	assert.Equal(t, uint8(0), cmd.Responder())
	require.Len(t, cmd.Summonable, 1)
	assert.Equal(t, uint32(100), cmd.Summonable[0].Code)
	require.Len(t, cmd.Activatable, 1)
	assert.Equal(t, int32(3200), cmd.Activatable[0].Description)
	assert.True(t, cmd.CanBattle)
	assert.True(t, cmd.CanEnd)
	assert.False(t, cmd.CanShuffle)

	yn, err := DecodeOne(NewBuilder(MsgSelectYesNo).U8(1).I32(30).Bytes())
	require.NoError(t, err)
	q, ok := yn.(Question)
	require.True(t, ok)
	assert.Equal(t, uint8(1), q.Responder())

	tribute, err := DecodeOne(NewBuilder(MsgSelectTribute).U8(0).U8(0).U8(1).U8(2).U8(0).Bytes())
	require.NoError(t, err)
	assert.Equal(t, MsgSelectTribute, tribute.Type())
	assert.True(t, IsQuestion(tribute))

	assert.False(t, IsQuestion(&Move{}))
	assert.False(t, IsQuestion(&Simple{Msg: MsgRetry}))
}

func TestDecodeUpdateData(t *testing.T) {
	buf := NewBuilder(MsgUpdateData).U8(1).U8(uint8(LocationMZone)).
		Raw(QueryRecord(QueryCode|QueryPosition, 46986414, uint32(PositionFaceUpDefense)<<24)).
		Raw(EmptyRecord()).
		Raw(QueryRecord(QueryCode|QueryOverlayCard, 84013237, 2, 1, 2)).
		Bytes()

	m, err := DecodeOne(buf)
	require.NoError(t, err)
	ud := m.(*UpdateData)
	assert.Equal(t, uint8(1), ud.Player)
	assert.Equal(t, LocationMZone, ud.Location)
	require.Len(t, ud.Cards, 3)

	assert.Equal(t, uint32(46986414), ud.Cards[0].Code)
	assert.Equal(t, PositionFaceUpDefense, ud.Cards[0].Position)
	assert.True(t, ud.Cards[0].Has(QueryPosition))
	assert.True(t, ud.Cards[1].Empty)
	assert.Equal(t, []uint32{1, 2}, ud.Cards[2].Overlay)
}

func TestDecodeUpdateCard(t *testing.T) {
	buf := NewBuilder(MsgUpdateCard).U8(0).U8(uint8(LocationHand)).U8(3).
		Raw(QueryRecord(QueryCode|QueryAttack|QueryLink, 1861629, 2500, 4, 0x1ff)).
		Bytes()

	m, err := DecodeOne(buf)
	require.NoError(t, err)
	uc := m.(*UpdateCard)
	assert.Equal(t, uint8(3), uc.Sequence)
	assert.Equal(t, uint32(1861629), uc.Info.Code)
	assert.Equal(t, int32(2500), uc.Info.Attack)
	assert.Equal(t, uint32(4), uc.Info.LinkRating)
	assert.Equal(t, uint32(0x1ff), uc.Info.LinkMarker)
}

func TestDecodeUnknownType(t *testing.T) {
	buf := []byte{0xEE, 1, 2, 3}
	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocolParse))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, buf, pe.Buffer)
	assert.Equal(t, 0, pe.Offset)
	assert.Contains(t, pe.Dump(), "ee 01 02 03")
}

func TestDecodeTruncated(t *testing.T) {
	buf := NewBuilder(MsgMove).U32(1).U8(0).Bytes()
	_, err := Decode(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocolParse)
}

func TestDecodeBadCount(t *testing.T) {
	buf := NewBuilder(MsgDraw).U8(0).U8(200).U32(1).Bytes()
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrProtocolParse)
}

func TestEnvelopeRoundTripKeepsConcreteType(t *testing.T) {
	msgs := []Message{
		&Move{Code: 7, Current: LocInfo{Location: LocationGrave}},
		&ChainStep{Msg: MsgChainSolved, Chain: 2},
		&SelectCard{Msg: MsgSelectTribute, Player: 1, Max: 2},
		&Simple{Msg: MsgChainEnd},
	}
	for _, m := range msgs {
		data, err := MarshalEnvelope(m)
		require.NoError(t, err)
		back, err := UnmarshalEnvelope(data)
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
}

func TestEnvelopeUnknownName(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte(`{"type":"MSG_NOPE","body":{}}`))
	assert.ErrorIs(t, err, ErrProtocolParse)
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "Graveyard", LocationGrave.String())
	assert.Equal(t, "Monster Zone (overlay)", (LocationMZone | LocationOverlay).String())
	assert.Equal(t, LocationMZone, (LocationMZone | LocationOverlay).Zone())
	assert.Equal(t, "face-down DEF", PositionFaceDownDefense.String())
	assert.Equal(t, "MSG_MOVE", MsgMove.String())
	assert.Equal(t, "MSG_250", MsgType(250).String())
}

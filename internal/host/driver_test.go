package host_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/host/hosttest"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

func concat(bufs ...[]byte) []byte {
	return bytes.Join(bufs, nil)
}

func msgDraw(player uint8, codes ...uint32) []byte {
	b := proto.NewBuilder(proto.MsgDraw).U8(player).U8(uint8(len(codes)))
	for _, c := range codes {
		b.U32(c)
	}
	return b.Bytes()
}

func msgYesNo(player uint8) []byte {
	return proto.NewBuilder(proto.MsgSelectYesNo).U8(player).I32(30).Bytes()
}

func msgWin(player uint8) []byte {
	return proto.NewBuilder(proto.MsgWin).U8(player).U8(0).Bytes()
}

func msgNewTurn(player uint8) []byte {
	return proto.NewBuilder(proto.MsgNewTurn).U8(player).Bytes()
}

func testConfig() host.Config {
	return host.Config{
		Seed:      42,
		StartLP:   8000,
		StartHand: 5,
		DrawCount: 1,
		Options:   0x20,
		Players: []host.Deck{
			{Main: []uint32{1, 2, 3}, Extra: []uint32{4}},
			{Main: []uint32{5, 6}},
		},
	}
}

func TestNewDriverSetsUpDuel(t *testing.T) {
	engine := &hosttest.Engine{}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	duel := engine.Last
	assert.Equal(t, uint32(42), duel.Seed)
	assert.True(t, duel.Started)
	assert.Equal(t, uint32(0x20), duel.Options)
	assert.Equal(t, []hosttest.PlayerInfo{
		{Player: 0, LP: 8000, StartHand: 5, DrawCount: 1},
		{Player: 1, LP: 8000, StartHand: 5, DrawCount: 1},
	}, duel.Players)

	require.Len(t, duel.Cards, 6)
	assert.Equal(t, host.NewCard{Code: 1, Owner: 0, Player: 0, Location: proto.LocationDeck, Position: proto.PositionFaceDown}, duel.Cards[0])
	assert.Equal(t, host.NewCard{Code: 4, Owner: 0, Player: 0, Location: proto.LocationExtra, Position: proto.PositionFaceDown}, duel.Cards[3])
	assert.Equal(t, host.NewCard{Code: 6, Owner: 1, Player: 1, Location: proto.LocationDeck, Position: proto.PositionFaceDown}, duel.Cards[5])

	require.NoError(t, d.Release())
	assert.True(t, duel.Ended)
	require.NoError(t, d.Release())
}

func TestStepPullsOneMessageAtATime(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{concat(msgNewTurn(0), msgDraw(0, 10))},
	}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	outs, err := d.Step()
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, &proto.NewTurn{Player: 0}, outs[0].Message)

	outs, err = d.Step()
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, proto.MsgDraw, outs[0].Message.Type())
	assert.Equal(t, 1, engine.Last.Processed)
}

func TestQuestionIsRedeliveredUntilFed(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{msgYesNo(1), msgNewTurn(1)},
	}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	outs, err := d.Step()
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.False(t, outs[0].Awaiting())
	assert.NotNil(t, d.Pending())

	outs, err = d.Step()
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Awaiting())
	assert.Equal(t, []uint8{1}, outs[0].To)

	ok, err := d.Feed([]byte{1, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, d.Pending())
	assert.Equal(t, [][]byte{{1, 0, 0, 0}}, engine.Last.Responses)

	outs, err = d.Step()
	require.NoError(t, err)
	assert.Equal(t, &proto.NewTurn{Player: 1}, outs[0].Message)
}

func TestFeedDetectsRetry(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{msgYesNo(0), msgWin(0)},
		Reject:  func(resp []byte) bool { return resp[0] == 0xFF },
	}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	_, err = d.Step()
	require.NoError(t, err)

	ok, err := d.Feed([]byte{0xFF})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, d.Pending())

	ok, err = d.Feed([]byte{1})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWinFinishesDuel(t *testing.T) {
	engine := &hosttest.Engine{Batches: [][]byte{msgWin(1)}}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	outs, err := d.Step()
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, &proto.Win{Player: 1}, outs[0].Message)
	assert.True(t, outs[1].Finished)
	assert.True(t, d.Finished())

	_, err = d.Step()
	assert.ErrorIs(t, err, host.ErrDuelFinished)
}

func TestUndecodableBatchIsHostError(t *testing.T) {
	engine := &hosttest.Engine{Batches: [][]byte{{0xEE}}}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	_, err = d.Step()
	require.Error(t, err)
	assert.ErrorIs(t, err, proto.ErrProtocolParse)
	var he *host.HostError
	assert.True(t, errors.As(err, &he))
}

func TestEmptyBatchesAreSkipped(t *testing.T) {
	engine := &hosttest.Engine{Batches: [][]byte{nil, nil, msgNewTurn(0)}}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	outs, err := d.Step()
	require.NoError(t, err)
	assert.Equal(t, &proto.NewTurn{Player: 0}, outs[0].Message)
}

func TestStartRefreshesPiles(t *testing.T) {
	engine := &hosttest.Engine{}
	d, err := host.NewDriver(engine, testConfig())
	require.NoError(t, err)

	outs, err := d.Start()
	require.NoError(t, err)
	require.Len(t, outs, 4)
	for _, o := range outs {
		assert.Equal(t, proto.MsgUpdateData, o.Message.Type())
	}
}

func testReplay(responses ...[]byte) *replay.Replay {
	var stream []byte
	for _, r := range responses {
		stream = replay.AppendResponse(stream, r)
	}
	return &replay.Replay{
		Seed:      5489,
		StartLP:   8000,
		StartHand: 5,
		DrawCount: 1,
		Players: []replay.Player{
			{Name: "a", Main: []uint32{1, 2}},
			{Name: "b", Main: []uint32{3}},
		},
		ResponseStream: stream,
	}
}

func TestRunReplayToWin(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{
			concat(msgNewTurn(0), msgYesNo(0)),
			concat(msgDraw(0, 2), msgWin(0)),
		},
	}
	var seen []proto.MsgType
	res, err := host.RunReplay(context.Background(), engine, testReplay([]byte{1}), nil, func(m proto.Message) error {
		seen = append(seen, m.Type())
		return nil
	})
	require.NoError(t, err)

	assert.True(t, res.Finished)
	assert.False(t, res.Forfeit)
	assert.Equal(t, 1, res.Responses)
	assert.Equal(t, uint32(3499211612), engine.Last.Seed)
	assert.True(t, engine.Last.Ended)
	assert.Equal(t, []proto.MsgType{
		proto.MsgUpdateData, proto.MsgUpdateData, proto.MsgUpdateData, proto.MsgUpdateData,
		proto.MsgNewTurn, proto.MsgSelectYesNo, proto.MsgDraw, proto.MsgWin,
	}, seen)
	assert.Equal(t, len(seen), res.Messages)
}

func TestRunReplayExhaustedIsForfeit(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{msgYesNo(0), msgYesNo(1)},
	}
	res, err := host.RunReplay(context.Background(), engine, testReplay([]byte{1}), nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Forfeit)
	assert.False(t, res.Finished)
	assert.Equal(t, 1, res.Responses)
	assert.True(t, engine.Last.Ended)
}

func TestRunReplayRejectedResponse(t *testing.T) {
	engine := &hosttest.Engine{
		Batches: [][]byte{msgYesNo(0), msgWin(0)},
		Reject:  func([]byte) bool { return true },
	}
	_, err := host.RunReplay(context.Background(), engine, testReplay([]byte{9}), nil, nil)
	assert.ErrorIs(t, err, host.ErrResponseRejected)
	assert.True(t, engine.Last.Ended)
}

func TestRunReplaySinkErrorStops(t *testing.T) {
	stop := errors.New("stop")
	engine := &hosttest.Engine{Batches: [][]byte{msgWin(0)}}
	_, err := host.RunReplay(context.Background(), engine, testReplay(), nil, func(proto.Message) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestRunReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := &hosttest.Engine{Batches: [][]byte{msgWin(0)}}
	_, err := host.RunReplay(ctx, engine, testReplay(), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReplayRejectsTag(t *testing.T) {
	r := testReplay()
	r.Flags = replay.FlagTag
	_, err := host.RunReplay(context.Background(), &hosttest.Engine{}, r, nil, nil)
	assert.ErrorIs(t, err, host.ErrTagUnsupported)
}

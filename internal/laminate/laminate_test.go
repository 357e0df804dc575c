package laminate

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/host/hosttest"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

func testEngine() *hosttest.Engine {
	yesNo := proto.NewBuilder(proto.MsgSelectYesNo).U8(0).I32(30).Bytes()
	draw := proto.NewBuilder(proto.MsgDraw).U8(0).U8(1).U32(1002).Bytes()
	win := proto.NewBuilder(proto.MsgWin).U8(0).U8(0).Bytes()
	return &hosttest.Engine{
		Batches: [][]byte{yesNo, append(draw, win...)},
	}
}

func testReplay() *replay.Replay {
	return &replay.Replay{
		Seed:      5489,
		StartLP:   8000,
		StartHand: 5,
		DrawCount: 1,
		Players: []replay.Player{
			{Name: "a", Main: []uint32{1001, 1002}, Extra: []uint32{2001}},
			{Name: "b", Main: []uint32{1003}},
		},
		ResponseStream: replay.AppendResponse(nil, []byte{1}),
	}
}

func TestLaminateRecordsMessages(t *testing.T) {
	doc, err := Laminate(context.Background(), testEngine(), testReplay(), nil)
	require.NoError(t, err)
	assert.False(t, doc.Forfeit)
	assert.Equal(t, "a", doc.Players[0].Name)
	info := doc.StartInfo()
	assert.Equal(t, [2]int32{8000, 8000}, info.StartLP)
	assert.Equal(t, [2]int{2, 1}, info.Main)
	assert.Equal(t, [2]int{1, 0}, info.Extra)

	msgs, err := doc.Decode()
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, proto.MsgWin, last.Type())
	assert.Equal(t, "MSG_WIN", doc.Messages[len(doc.Messages)-1].Type)

	var draws int
	for _, m := range msgs {
		if d, ok := m.(*proto.Draw); ok {
			draws++
			assert.Equal(t, []uint32{1002}, d.Cards)
		}
	}
	assert.Equal(t, 1, draws)
}

func TestLaminateForfeit(t *testing.T) {
	r := testReplay()
	r.ResponseStream = nil
	doc, err := Laminate(context.Background(), testEngine(), r, nil)
	require.NoError(t, err)
	assert.True(t, doc.Forfeit)
}

func TestReferencedAndAttachCards(t *testing.T) {
	doc := &Document{Players: testReplay().Players}
	for _, m := range []proto.Message{
		&proto.Draw{Player: 0, Cards: []uint32{1002, 1004}},
		&proto.SelectYesNo{Player: 0, Description: 30},
	} {
		env, err := proto.Wrap(m)
		require.NoError(t, err)
		doc.Messages = append(doc.Messages, env)
	}
	assert.Equal(t, []uint32{1001, 1002, 1003, 1004, 2001}, doc.Referenced())

	store := cardb.NewStore()
	store.Add(cardb.Record{Code: 1002, Name: "Pot of Greed"})
	store.Add(cardb.Record{Code: 3000, Name: "Unused"})
	assert.Equal(t, 1, doc.AttachCards(store))
	name, ok := doc.CardStore().Name(1002)
	require.True(t, ok)
	assert.Equal(t, "Pot of Greed", name)
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc, err := Laminate(context.Background(), testEngine(), testReplay(), nil)
	require.NoError(t, err)

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, doc, compress))
		assert.Equal(t, compress, bytes.HasPrefix(buf.Bytes(), zstdMagic))

		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, len(doc.Messages), len(got.Messages))
		assert.Equal(t, doc.Players, got.Players)
	}
}

func TestFiles(t *testing.T) {
	assert.Equal(t, "duel.laminated.json", OutputName("/replays/duel.yrp", false))
	assert.Equal(t, "duel.laminated.json.zst", OutputName("duel.yrp", true))

	doc := &Document{Players: testReplay().Players}
	path := filepath.Join(t.TempDir(), OutputName("x.yrp", true))
	require.NoError(t, WriteFile(path, doc))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Players, got.Players)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

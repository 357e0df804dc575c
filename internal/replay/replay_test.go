package replay

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReplay(flags Flag) *Replay {
	var stream []byte
	stream = AppendResponse(stream, []byte{1, 0, 0, 0})
	stream = AppendResponse(stream, []byte{0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00})
	stream = AppendResponse(stream, nil)

	players := []Player{
		{Name: "Yugi", Main: []uint32{89631139, 46986414, 0}, Extra: []uint32{84013237}},
		{Name: "海馬", Main: []uint32{38033121}, Extra: nil},
	}
	if flags&FlagTag != 0 {
		players = append(players,
			Player{Name: "Joey", Main: []uint32{1}, Extra: []uint32{}},
			Player{Name: "Mai", Main: []uint32{2, 3}, Extra: []uint32{4}},
		)
	}
	return &Replay{
		ID:             0x31707279,
		Version:        0x1353,
		Flags:          flags,
		Seed:           5489,
		Hash:           -1,
		StartLP:        8000,
		StartHand:      5,
		DrawCount:      1,
		Options:        0x20,
		Players:        players,
		ResponseStream: stream,
	}
}

func TestDecodeUncompressed(t *testing.T) {
	src := sampleReplay(0)
	data, err := Encode(src)
	require.NoError(t, err)

	r, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, src.ID, r.ID)
	assert.Equal(t, src.Version, r.Version)
	assert.Equal(t, int32(5489), r.Seed)
	assert.Equal(t, int32(8000), r.StartLP)
	assert.Equal(t, uint32(5), r.StartHand)
	assert.Equal(t, uint32(1), r.DrawCount)
	assert.Equal(t, uint32(0x20), r.Options)
	require.Len(t, r.Players, 2)
	assert.Equal(t, "Yugi", r.Players[0].Name)
	assert.Equal(t, "海馬", r.Players[1].Name)
	assert.Equal(t, []uint32{89631139, 46986414, 0}, r.Players[0].Main)
	assert.Equal(t, []uint32{84013237}, r.Players[0].Extra)
	assert.Empty(t, r.Players[1].Extra)
	assert.Equal(t, src.ResponseStream, r.ResponseStream)
}

func TestDecodeCompressed(t *testing.T) {
	src := sampleReplay(FlagCompressed)
	data, err := Encode(src)
	require.NoError(t, err)

	r, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, FlagCompressed, r.Flags)
	require.Len(t, r.Players, 2)
	assert.Equal(t, "Yugi", r.Players[0].Name)
	assert.Equal(t, []uint32{38033121}, r.Players[1].Main)
	assert.Equal(t, src.ResponseStream, r.ResponseStream)
}

func TestDecodeTagHasFourPlayers(t *testing.T) {
	data, err := Encode(sampleReplay(FlagTag | FlagCompressed))
	require.NoError(t, err)

	r, err := Decode(data)
	require.NoError(t, err)
	require.True(t, r.Tag())
	require.Len(t, r.Players, 4)
	assert.Equal(t, "Mai", r.Players[3].Name)
	assert.Equal(t, []uint32{2, 3}, r.Players[3].Main)
	assert.Equal(t, []uint32{4}, r.Players[3].Extra)
}

func TestDecodeShortHeader(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptReplay))
}

func TestDecodeUnknownFlags(t *testing.T) {
	data, err := Encode(sampleReplay(0))
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[8:], 0x100)

	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrCorruptReplay)
}

func TestDecodeTruncatedBody(t *testing.T) {
	data, err := Encode(sampleReplay(0))
	require.NoError(t, err)

	_, err = Decode(data[:HeaderSize+2*nameSize+6])
	assert.ErrorIs(t, err, ErrCorruptReplay)
}

func TestDecodeGarbageCompressedBody(t *testing.T) {
	data, err := Encode(sampleReplay(0))
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[8:], uint32(FlagCompressed))
	data[24] = 0xFF // invalid lc/lp/pb byte

	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrCorruptReplay)
}

func TestNameStopsAtFirstZeroUnit(t *testing.T) {
	raw := make([]byte, nameSize)
	copy(raw, []byte{'A', 0, 'B', 0, 0, 0, 'C', 0})
	assert.Equal(t, "AB", decodeName(raw))
	assert.Equal(t, "", decodeName(make([]byte, nameSize)))
}

func TestEngineSeedIsFirstMTOutput(t *testing.T) {
	r := &Replay{Seed: 5489}
	assert.Equal(t, uint32(3499211612), r.EngineSeed())

	r = &Replay{Seed: 1}
	assert.Equal(t, uint32(1791095845), r.EngineSeed())

	data, err := Encode(sampleReplay(FlagCompressed))
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(3499211612), decoded.EngineSeed())
}

func TestMT19937Sequence(t *testing.T) {
	mt := NewMT19937(5489)
	want := []uint32{3499211612, 581869302, 3890346734, 3586334585, 545404204}
	for i, w := range want {
		assert.Equal(t, w, mt.Uint32(), "output %d", i)
	}
}

func TestResponsesCursor(t *testing.T) {
	r := sampleReplay(0)
	cur := r.Responses()

	first, ok := cur.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 0, 0, 0}, first)

	second, ok := cur.Next()
	require.True(t, ok)
	assert.Len(t, second, 8)

	third, ok := cur.Next()
	require.True(t, ok)
	assert.Empty(t, third)

	assert.True(t, cur.Done())
	_, ok = cur.Next()
	assert.False(t, ok)

	assert.Len(t, r.Responses().All(), 3)
}

func TestResponsesTruncatedTail(t *testing.T) {
	cur := NewResponses([]byte{4, 1, 2})
	resp, ok := cur.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, resp)
	assert.True(t, cur.Done())
}

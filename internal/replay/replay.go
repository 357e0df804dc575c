// Package replay decodes recorded duel files: header, player decks and the
// stream of recorded responses.
package replay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz/lzma"
	"golang.org/x/text/encoding/unicode"
)

// ErrCorruptReplay is returned when the container cannot be decoded.
var ErrCorruptReplay = errors.New("corrupt replay")

// Flag is the container flag word.
type Flag uint32

const (
	FlagCompressed Flag = 0x1
	FlagTag        Flag = 0x2
	FlagDecoded    Flag = 0x4
	FlagSingleMode Flag = 0x8

	knownFlags = FlagCompressed | FlagTag | FlagDecoded | FlagSingleMode
)

const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 32
	nameSize   = 40
)

// Player is one duelist's name and deck lists. Code 0 is an unrevealed card.
type Player struct {
	Name  string   `json:"name"`
	Main  []uint32 `json:"main"`
	Extra []uint32 `json:"extra"`
}

// Replay is a decoded container. It is not modified after Decode returns.
type Replay struct {
	ID      int32
	Version int32
	Flags   Flag
	// Seed is the stored seed; EngineSeed derives the value the engine uses.
	Seed int32
	// CompressedSize holds the four raw size bytes copied into the
	// synthesized LZMA header.
	CompressedSize [4]byte
	Hash           int32
	Props          [8]byte

	StartLP   int32
	StartHand uint32
	DrawCount uint32
	Options   uint32

	Players        []Player
	ResponseStream []byte
}

// Tag reports whether this is a four-player tag duel.
func (r *Replay) Tag() bool {
	return r.Flags&FlagTag != 0
}

// When interprets the stored seed as the recording timestamp.
func (r *Replay) When() time.Time {
	return time.Unix(int64(r.Seed), 0)
}

// EngineSeed returns the first MT19937 output seeded with the stored seed.
func (r *Replay) EngineSeed() uint32 {
	return NewMT19937(uint32(r.Seed)).Uint32()
}

// Responses returns a fresh cursor over the recorded responses.
func (r *Replay) Responses() *Responses {
	return &Responses{buf: r.ResponseStream}
}

// Decode parses a replay file.
func Decode(data []byte) (*Replay, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrCorruptReplay, HeaderSize, len(data))
	}

	le := binary.LittleEndian
	r := &Replay{
		ID:      int32(le.Uint32(data[0:])),
		Version: int32(le.Uint32(data[4:])),
		Flags:   Flag(le.Uint32(data[8:])),
		Seed:    int32(le.Uint32(data[12:])),
		Hash:    int32(le.Uint32(data[20:])),
	}
	copy(r.CompressedSize[:], data[16:20])
	copy(r.Props[:], data[24:32])

	if r.Flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: unknown flags 0x%x", ErrCorruptReplay, uint32(r.Flags&^knownFlags))
	}

	body := data[HeaderSize:]
	if r.Flags&FlagCompressed != 0 {
		var err error
		body, err = inflate(r.Props, r.CompressedSize, body)
		if err != nil {
			return nil, err
		}
	}

	if err := r.decodeBody(body); err != nil {
		return nil, err
	}
	return r, nil
}

// inflate rebuilds the 13-byte LZMA header the container strips: five
// property bytes, the four stored size bytes and four zero bytes.
func inflate(props [8]byte, size [4]byte, body []byte) ([]byte, error) {
	header := make([]byte, 0, 13)
	header = append(header, props[:5]...)
	header = append(header, size[:]...)
	header = append(header, 0, 0, 0, 0)

	zr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma header: %v", ErrCorruptReplay, err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma body: %v", ErrCorruptReplay, err)
	}
	return out, nil
}

func (r *Replay) decodeBody(body []byte) error {
	br := &bodyReader{buf: body}

	n := 2
	if r.Tag() {
		n = 4
	}
	r.Players = make([]Player, n)
	for i := range r.Players {
		r.Players[i].Name = decodeName(br.bytes(nameSize))
	}

	r.StartLP = int32(br.u32())
	r.StartHand = br.u32()
	r.DrawCount = br.u32()
	r.Options = br.u32()

	for i := range r.Players {
		r.Players[i].Main = br.deck()
		r.Players[i].Extra = br.deck()
	}
	if br.err != nil {
		return br.err
	}

	r.ResponseStream = body[br.off:]
	return nil
}

// decodeName reads UTF-16LE up to the first zero code unit.
func decodeName(raw []byte) string {
	n := 0
	for n+1 < len(raw) && (raw[n] != 0 || raw[n+1] != 0) {
		n += 2
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.Bytes(raw[:n])
	if err != nil {
		return ""
	}
	return string(s)
}

type bodyReader struct {
	buf []byte
	off int
	err error
}

func (b *bodyReader) bytes(n int) []byte {
	if b.err != nil {
		return nil
	}
	if b.off+n > len(b.buf) {
		b.err = fmt.Errorf("%w: body truncated at offset %d (need %d bytes, %d left)", ErrCorruptReplay, b.off, n, len(b.buf)-b.off)
		return nil
	}
	out := b.buf[b.off : b.off+n]
	b.off += n
	return out
}

func (b *bodyReader) u32() uint32 {
	p := b.bytes(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (b *bodyReader) deck() []uint32 {
	count := b.u32()
	if b.err != nil {
		return nil
	}
	if int(count) > (len(b.buf)-b.off)/4 {
		b.err = fmt.Errorf("%w: deck of %d cards exceeds body", ErrCorruptReplay, count)
		return nil
	}
	codes := make([]uint32, count)
	for i := range codes {
		codes[i] = b.u32()
	}
	return codes
}

package replay

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/xz/lzma"
	"golang.org/x/text/encoding/unicode"
)

// Encode writes r in container form. When FlagCompressed is set the body is
// LZMA-compressed and the stream header is folded into the Props and
// CompressedSize fields, the inverse of what Decode undoes.
func Encode(r *Replay) ([]byte, error) {
	body, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	props := r.Props
	size := r.CompressedSize
	if r.Flags&FlagCompressed != 0 {
		var packed bytes.Buffer
		w, err := lzma.WriterConfig{
			SizeInHeader: true,
			Size:         int64(len(body)),
			EOSMarker:    false,
		}.NewWriter(&packed)
		if err != nil {
			return nil, fmt.Errorf("lzma writer: %w", err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("lzma write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lzma close: %w", err)
		}
		stream := packed.Bytes()
		props = [8]byte{}
		copy(props[:5], stream[0:5])
		copy(size[:], stream[5:9])
		body = stream[13:]
	}

	le := binary.LittleEndian
	out := make([]byte, 0, HeaderSize+len(body))
	out = le.AppendUint32(out, uint32(r.ID))
	out = le.AppendUint32(out, uint32(r.Version))
	out = le.AppendUint32(out, uint32(r.Flags))
	out = le.AppendUint32(out, uint32(r.Seed))
	out = append(out, size[:]...)
	out = le.AppendUint32(out, uint32(r.Hash))
	out = append(out, props[:]...)
	return append(out, body...), nil
}

func (r *Replay) encodeBody() ([]byte, error) {
	want := 2
	if r.Tag() {
		want = 4
	}
	if len(r.Players) != want {
		return nil, fmt.Errorf("replay needs %d players, has %d", want, len(r.Players))
	}

	le := binary.LittleEndian
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	var out []byte
	for _, p := range r.Players {
		name, err := enc.Bytes([]byte(p.Name))
		if err != nil {
			return nil, fmt.Errorf("encoding name %q: %w", p.Name, err)
		}
		field := make([]byte, nameSize)
		copy(field[:nameSize-2], name)
		out = append(out, field...)
	}
	out = le.AppendUint32(out, uint32(r.StartLP))
	out = le.AppendUint32(out, r.StartHand)
	out = le.AppendUint32(out, r.DrawCount)
	out = le.AppendUint32(out, r.Options)
	for _, p := range r.Players {
		for _, deck := range [][]uint32{p.Main, p.Extra} {
			out = le.AppendUint32(out, uint32(len(deck)))
			for _, code := range deck {
				out = le.AppendUint32(out, code)
			}
		}
	}
	return append(out, r.ResponseStream...), nil
}

// AppendResponse appends one length-prefixed response to a stream.
func AppendResponse(stream, resp []byte) []byte {
	if len(resp) > 0xFF {
		resp = resp[:0xFF]
	}
	stream = append(stream, byte(len(resp)))
	return append(stream, resp...)
}

package proto

import "encoding/binary"

// Builder appends little-endian fields to a message buffer. It is used to
// synthesize refresh messages around raw query results.
type Builder struct {
	buf []byte
}

// NewBuilder starts a buffer with the given message tag.
func NewBuilder(t MsgType) *Builder {
	return &Builder{buf: []byte{byte(t)}}
}

func (b *Builder) U8(v uint8) *Builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *Builder) U16(v uint16) *Builder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *Builder) I32(v int32) *Builder {
	return b.U32(uint32(v))
}

// Loc appends a packed location quadruple.
func (b *Builder) Loc(li LocInfo) *Builder {
	b.buf = append(b.buf, li.Controller, byte(li.Location), li.Sequence, li.Position)
	return b
}

func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *Builder) Bytes() []byte {
	return b.buf
}

// QueryRecord encodes a card query record: length prefix, flags and the
// given field words in flag order.
func QueryRecord(flags QueryFlag, fields ...uint32) []byte {
	size := 8 + 4*len(fields)
	out := binary.LittleEndian.AppendUint32(nil, uint32(size))
	out = binary.LittleEndian.AppendUint32(out, uint32(flags))
	for _, f := range fields {
		out = binary.LittleEndian.AppendUint32(out, f)
	}
	return out
}

// EmptyRecord is the query record of a vacant slot.
func EmptyRecord() []byte {
	return []byte{4, 0, 0, 0}
}

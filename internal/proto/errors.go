package proto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrProtocolParse is returned (wrapped in *ParseError) when an engine buffer
// cannot be decoded.
var ErrProtocolParse = errors.New("protocol parse error")

// ParseError retains the buffer that failed to decode.
type ParseError struct {
	Buffer []byte
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("protocol parse error at offset %d of %d: %s", e.Offset, len(e.Buffer), e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrProtocolParse
}

// Dump renders the offending buffer for diagnostics.
func (e *ParseError) Dump() string {
	return HexDump(e.Buffer)
}

// HexDump formats buf as offset-annotated hex lines.
func HexDump(buf []byte) string {
	return hex.Dump(buf)
}

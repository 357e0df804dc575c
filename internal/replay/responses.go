package replay

// Responses walks the recorded response stream: a length byte followed by
// that many bytes, repeated until the stream ends.
type Responses struct {
	buf []byte
	off int
}

// NewResponses wraps a raw response stream.
func NewResponses(stream []byte) *Responses {
	return &Responses{buf: stream}
}

// Next returns the next response. A trailing record shorter than its length
// byte is returned as far as it goes.
func (r *Responses) Next() ([]byte, bool) {
	if r.off >= len(r.buf) {
		return nil, false
	}
	n := int(r.buf[r.off])
	r.off++
	end := min(r.off+n, len(r.buf))
	resp := r.buf[r.off:end]
	r.off = end
	return resp, true
}

// Done reports whether the stream is exhausted.
func (r *Responses) Done() bool {
	return r.off >= len(r.buf)
}

// All drains the cursor.
func (r *Responses) All() [][]byte {
	var out [][]byte
	for {
		resp, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, resp)
	}
}

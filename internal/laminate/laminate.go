// Package laminate expands a replay into the full message stream the engine
// produced for it, so it can be viewed without the engine.
package laminate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/duel"
	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

// Document is a laminated replay.
type Document struct {
	Players  []replay.Player         `json:"players"`
	StartLP  int32                   `json:"start_lp"`
	Messages []proto.Envelope        `json:"messages"`
	Cards    map[uint32]cardb.Record `json:"cards,omitempty"`
	Forfeit  bool                    `json:"forfeit,omitempty"`
}

// Laminate runs r through engine and records every message.
func Laminate(ctx context.Context, engine host.Engine, r *replay.Replay, log *zap.Logger) (*Document, error) {
	doc := &Document{Players: r.Players, StartLP: r.StartLP}
	res, err := host.RunReplay(ctx, engine, r, log, func(m proto.Message) error {
		env, err := proto.Wrap(m)
		if err != nil {
			return err
		}
		doc.Messages = append(doc.Messages, env)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("laminate: %w", err)
	}
	doc.Forfeit = res.Forfeit
	return doc, nil
}

// StartInfo seeds a duel state for replaying the document.
func (d *Document) StartInfo() duel.StartInfo {
	return duel.StartFromReplay(&replay.Replay{StartLP: d.StartLP, Players: d.Players})
}

// Decode restores the concrete messages.
func (d *Document) Decode() ([]proto.Message, error) {
	msgs := make([]proto.Message, 0, len(d.Messages))
	for i, env := range d.Messages {
		m, err := env.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Referenced returns every value stored under a code-like key in the
// messages, plus the players' decks, in ascending order. Not every value
// is a real card code.
func (d *Document) Referenced() []uint32 {
	marks := make(map[uint32]struct{})
	for _, env := range d.Messages {
		var body any
		if err := json.Unmarshal(env.Body, &body); err != nil {
			continue
		}
		walk(body, "", marks)
	}
	for _, p := range d.Players {
		for _, c := range p.Main {
			marks[c] = struct{}{}
		}
		for _, c := range p.Extra {
			marks[c] = struct{}{}
		}
	}
	delete(marks, 0)
	codes := make([]uint32, 0, len(marks))
	for c := range marks {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func walk(v any, key string, marks map[uint32]struct{}) {
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			walk(e, key, marks)
		}
	case map[string]any:
		for k, e := range v {
			walk(e, k, marks)
		}
	case float64:
		if (strings.Contains(key, "code") || strings.Contains(key, "card")) && v > 0 && v <= 0xFFFFFFFF {
			marks[uint32(v)] = struct{}{}
		}
	}
}

// AttachCards copies the records of every referenced card found in store,
// so viewers can name cards without the database.
func (d *Document) AttachCards(store *cardb.Store) int {
	d.Cards = make(map[uint32]cardb.Record)
	for _, code := range d.Referenced() {
		if r, ok := store.Lookup(code); ok {
			d.Cards[code] = *r
		}
	}
	return len(d.Cards)
}

// CardStore returns the attached records as a store.
func (d *Document) CardStore() *cardb.Store {
	s := cardb.NewStore()
	for _, r := range d.Cards {
		s.Add(r)
	}
	return s
}

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Write encodes doc as JSON, zstd-compressed when compress is set.
func Write(w io.Writer, doc *Document, compress bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode laminated replay: %w", err)
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("compress laminated replay: %w", err)
	}
	return zw.Close()
}

// Read decodes a document written by Write, compressed or not.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer zr.Close()
		data, err = zr.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress laminated replay: %w", err)
		}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode laminated replay: %w", err)
	}
	return &doc, nil
}

// OutputName names the laminated file for a replay: "<base>.laminated.json",
// with ".zst" appended when compressed.
func OutputName(replayPath string, compress bool) string {
	base := replayPath
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	name := base + ".laminated.json"
	if compress {
		name += ".zst"
	}
	return name
}

// WriteFile writes doc to path, compressing when path ends in ".zst".
func WriteFile(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc, strings.HasSuffix(path, ".zst")); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadFile reads a laminated replay from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

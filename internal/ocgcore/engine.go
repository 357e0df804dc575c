package ocgcore

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/proto"
)

const (
	// MaxResponse is the size of the engine's response buffer.
	MaxResponse = 64

	messageBufferSize = 0x10000
	queryBufferSize   = 0x10000
)

// ErrResponseTooLarge is returned for responses over MaxResponse bytes.
var ErrResponseTooLarge = errors.New("response too large")

// ErrEnded is returned by calls on a duel that was already ended.
var ErrEnded = errors.New("duel already ended")

// cardData mirrors the engine's card_data struct.
type cardData struct {
	Code       uint32
	Alias      uint32
	Setcode    uint64
	Type       uint32
	Level      uint32
	Attribute  uint32
	Race       uint32
	Attack     int32
	Defense    int32
	LScale     uint32
	RScale     uint32
	LinkMarker uint32
}

func packRecord(r *cardb.Record) cardData {
	return cardData{
		Code:       r.Code,
		Alias:      r.Alias,
		Setcode:    r.Setcode,
		Type:       r.Type,
		Level:      r.Level,
		Attribute:  r.Attribute,
		Race:       r.Race,
		Attack:     r.Attack,
		Defense:    r.Defense,
		LScale:     r.LScale,
		RScale:     r.RScale,
		LinkMarker: r.LinkMarker,
	}
}

// The engine's reader callbacks are process-wide, so every engine call runs
// under engineMu with current pointing at the calling engine.
var (
	engineMu     sync.Mutex
	current      *Engine
	readersOnce  sync.Once
	scriptReader uintptr
	cardReader   uintptr
	emptyScript  = []byte{0}
)

// Engine is a loaded rule engine together with the card data and scripts
// its callbacks serve.
type Engine struct {
	lib     *library
	cards   *cardb.Store
	scripts *Scripts
	log     *zap.Logger
}

var _ host.Engine = (*Engine)(nil)

// Open loads the engine library at path.
func Open(path string, cards *cardb.Store, scripts *Scripts, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	lib, err := openLibrary(path)
	if err != nil {
		return nil, err
	}
	readersOnce.Do(func() {
		scriptReader = purego.NewCallback(readScript)
		cardReader = purego.NewCallback(readCard)
	})
	e := &Engine{lib: lib, cards: cards, scripts: scripts, log: log}
	release := e.enter()
	lib.setScriptReader(scriptReader)
	lib.setCardReader(cardReader)
	release()
	log.Info("engine loaded", zap.String("path", path),
		zap.Int("cards", cards.Len()), zap.Int("scripts", scripts.Len()))
	return e, nil
}

// Close unloads the library. Duels must be ended first.
func (e *Engine) Close() error {
	return e.lib.close()
}

// enter takes the engine lock and returns its release.
func (e *Engine) enter() func() {
	engineMu.Lock()
	current = e
	return engineMu.Unlock
}

func readScript(name, length uintptr) uintptr {
	e := current
	n := (*int32)(unsafe.Pointer(length))
	script := cString(name)
	if e != nil {
		if buf, ok := e.scripts.raw(script); ok {
			*n = int32(len(buf) - 1)
			return uintptr(unsafe.Pointer(&buf[0]))
		}
		e.log.Debug("script not found", zap.String("name", script))
	}
	*n = 0
	return uintptr(unsafe.Pointer(&emptyScript[0]))
}

func readCard(code, data uintptr) uintptr {
	e := current
	if e == nil {
		return 1
	}
	r, ok := e.cards.Lookup(uint32(code))
	if !ok {
		e.log.Warn("card not found", zap.Uint32("code", uint32(code)))
		return 1
	}
	*(*cardData)(unsafe.Pointer(data)) = packRecord(r)
	return 0
}

func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var b []byte
	for i := uintptr(0); ; i++ {
		c := *(*byte)(unsafe.Pointer(p + i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

// CreateDuel creates a duel seeded with seed.
func (e *Engine) CreateDuel(seed uint32) (host.Duel, error) {
	defer e.enter()()
	ptr := e.lib.createDuel(seed)
	if ptr == 0 {
		return nil, fmt.Errorf("create_duel returned null")
	}
	return &duel{e: e, ptr: ptr, msg: make([]byte, messageBufferSize), query: make([]byte, queryBufferSize)}, nil
}

type duel struct {
	e     *Engine
	ptr   uintptr
	ended bool
	msg   []byte
	query []byte
	resp  [MaxResponse]byte
}

func (d *duel) call(fn func()) error {
	defer d.e.enter()()
	if d.ended {
		return ErrEnded
	}
	fn()
	return nil
}

func (d *duel) SetPlayerInfo(player uint8, lp int32, startHand, drawCount uint32) error {
	return d.call(func() {
		d.e.lib.setPlayerInfo(d.ptr, int32(player), lp, int32(startHand), int32(drawCount))
	})
}

func (d *duel) NewCard(c host.NewCard) error {
	return d.call(func() {
		d.e.lib.newCard(d.ptr, c.Code, c.Owner, c.Player, uint8(c.Location), c.Sequence, uint8(c.Position))
	})
}

func (d *duel) Start(options uint32) error {
	return d.call(func() {
		d.e.lib.startDuel(d.ptr, int32(options))
	})
}

// Process runs the engine until it produces output or needs a response.
// The high half of the result carries engine flags we do not need.
func (d *duel) Process() ([]byte, error) {
	var out []byte
	err := d.call(func() {
		result := d.e.lib.process(d.ptr)
		d.e.lib.getMessage(d.ptr, &d.msg[0])
		out = clip(d.msg, result&0xFFFF)
	})
	return out, err
}

func (d *duel) SetResponse(resp []byte) error {
	if len(resp) > MaxResponse {
		return fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, len(resp))
	}
	return d.call(func() {
		d.resp = [MaxResponse]byte{}
		copy(d.resp[:], resp)
		d.e.lib.setResponseb(d.ptr, &d.resp[0])
	})
}

func (d *duel) QueryCard(player uint8, loc proto.Location, seq uint8, flags proto.QueryFlag) ([]byte, error) {
	var out []byte
	err := d.call(func() {
		n := d.e.lib.queryCard(d.ptr, player, uint8(loc), seq, int32(flags), &d.query[0], 0)
		out = clip(d.query, n)
	})
	return out, err
}

func (d *duel) QueryFieldCard(player uint8, loc proto.Location, flags proto.QueryFlag) ([]byte, error) {
	var out []byte
	err := d.call(func() {
		n := d.e.lib.queryFieldCard(d.ptr, player, uint8(loc), int32(flags), &d.query[0], 0)
		out = clip(d.query, n)
	})
	return out, err
}

// clip copies the first n bytes the engine wrote into buf.
func clip(buf []byte, n int32) []byte {
	if n <= 0 {
		return nil
	}
	if int(n) > len(buf) {
		n = int32(len(buf))
	}
	return append([]byte(nil), buf[:n]...)
}

func (d *duel) End() error {
	defer d.e.enter()()
	if d.ended {
		return nil
	}
	d.ended = true
	d.e.lib.endDuel(d.ptr)
	return nil
}

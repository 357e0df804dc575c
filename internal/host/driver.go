package host

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

// Deck is one player's starting card list.
type Deck struct {
	Main  []uint32
	Extra []uint32
}

// Config holds everything needed to set up a duel.
type Config struct {
	Seed      uint32
	StartLP   int32
	StartHand uint32
	DrawCount uint32
	Options   uint32
	Players   []Deck
	Logger    *zap.Logger
}

// ConfigFromReplay derives the duel setup recorded in r.
func ConfigFromReplay(r *replay.Replay) (Config, error) {
	if r.Tag() {
		return Config{}, ErrTagUnsupported
	}
	cfg := Config{
		Seed:      r.EngineSeed(),
		StartLP:   r.StartLP,
		StartHand: r.StartHand,
		DrawCount: r.DrawCount,
		Options:   r.Options,
	}
	for _, p := range r.Players {
		cfg.Players = append(cfg.Players, Deck{Main: p.Main, Extra: p.Extra})
	}
	return cfg, nil
}

// Output is one item produced by a driver step. To is set only when a
// pending question is handed to the player who must answer it; Finished
// marks the end of the duel and carries no message.
type Output struct {
	Message  proto.Message
	To       []uint8
	Finished bool
}

// Awaiting reports whether the caller must feed a response before stepping
// again.
func (o Output) Awaiting() bool {
	return len(o.To) == 1 && o.Message != nil && proto.IsQuestion(o.Message)
}

// Driver runs one duel inside the engine.
type Driver struct {
	duel     Duel
	queue    *messageQueue
	log      *zap.Logger
	pending  proto.Question
	finished bool
	released bool
}

// NewDriver creates the duel, registers both decks face-down and starts it.
func NewDriver(engine Engine, cfg Config) (*Driver, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	duel, err := engine.CreateDuel(cfg.Seed)
	if err != nil {
		return nil, hostErr("create_duel", err)
	}

	if err := setup(duel, cfg); err != nil {
		_ = duel.End()
		return nil, err
	}

	d := &Driver{duel: duel, log: log}
	d.queue = newMessageQueue(d.pump)
	log.Debug("duel started",
		zap.Uint32("seed", cfg.Seed),
		zap.Int32("lp", cfg.StartLP),
		zap.Int("players", len(cfg.Players)))
	return d, nil
}

func setup(duel Duel, cfg Config) error {
	for i, deck := range cfg.Players {
		player := uint8(i)
		if err := duel.SetPlayerInfo(player, cfg.StartLP, cfg.StartHand, cfg.DrawCount); err != nil {
			return hostErr("set_player_info", err)
		}
		piles := []struct {
			codes []uint32
			loc   proto.Location
		}{
			{deck.Main, proto.LocationDeck},
			{deck.Extra, proto.LocationExtra},
		}
		for _, pile := range piles {
			for _, code := range pile.codes {
				err := duel.NewCard(NewCard{
					Code:     code,
					Owner:    player,
					Player:   player,
					Location: pile.loc,
					Sequence: 0,
					Position: proto.PositionFaceDown,
				})
				if err != nil {
					return hostErr("new_card", err)
				}
			}
		}
	}
	if err := duel.Start(cfg.Options); err != nil {
		return hostErr("start_duel", err)
	}
	return nil
}

func (d *Driver) pump() ([]proto.Message, error) {
	buf, err := d.duel.Process()
	if err != nil {
		return nil, hostErr("process", err)
	}
	msgs, err := proto.Decode(buf)
	if err != nil {
		var pe *proto.ParseError
		if errors.As(err, &pe) {
			d.log.Error("undecodable engine buffer",
				zap.Int("offset", pe.Offset),
				zap.String("dump", pe.Dump()))
		}
		return nil, hostErr("decode engine messages", err)
	}
	return msgs, nil
}

// Start returns the initial Deck and Extra refreshes.
func (d *Driver) Start() ([]Output, error) {
	msgs, err := InitialRefresh(d.duel)
	if err != nil {
		return nil, err
	}
	return wrap(msgs), nil
}

// Step pulls the next engine message and returns it together with its
// refreshes. While a question is pending, Step hands that question to the
// responding player instead of advancing.
func (d *Driver) Step() ([]Output, error) {
	if d.finished {
		return nil, ErrDuelFinished
	}
	if d.pending != nil {
		return []Output{{Message: d.pending, To: []uint8{d.pending.Responder()}}}, nil
	}

	m, err := d.queue.pull()
	if err != nil {
		return nil, hostErr("pull", err)
	}
	msgs, err := Inflate(d.duel, m)
	if err != nil {
		return nil, err
	}
	out := wrap(msgs)

	if q, ok := m.(proto.Question); ok {
		d.pending = q
	}
	if m.Type() == proto.MsgWin {
		d.finished = true
		out = append(out, Output{Finished: true})
	}
	return out, nil
}

// Feed submits a response to the pending question. It reports false when
// the engine asks for the response again.
func (d *Driver) Feed(resp []byte) (bool, error) {
	if err := d.duel.SetResponse(resp); err != nil {
		return false, hostErr("set_responseb", err)
	}
	next, err := d.queue.peek()
	if err != nil {
		return false, hostErr("peek", err)
	}
	if next.Type() == proto.MsgRetry {
		d.log.Debug("response rejected", zap.Binary("response", resp))
		// drop the retry so a resubmission peeks at fresh output
		if _, err := d.queue.pull(); err != nil {
			return false, hostErr("pull", err)
		}
		return false, nil
	}
	d.pending = nil
	return true, nil
}

// Pending returns the question awaiting a response, if any.
func (d *Driver) Pending() proto.Question {
	return d.pending
}

// Finished reports whether a win message has been delivered.
func (d *Driver) Finished() bool {
	return d.finished
}

// Release ends the duel inside the engine. It is safe to call twice.
func (d *Driver) Release() error {
	if d.released {
		return nil
	}
	d.released = true
	if err := d.duel.End(); err != nil {
		return fmt.Errorf("end duel: %w", hostErr("end_duel", err))
	}
	return nil
}

func wrap(msgs []proto.Message) []Output {
	out := make([]Output, len(msgs))
	for i, m := range msgs {
		out[i] = Output{Message: m}
	}
	return out
}

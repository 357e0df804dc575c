// Package hosttest provides a scripted engine for exercising the driver
// without the native rule engine.
package hosttest

import (
	"errors"

	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/proto"
)

// ErrScriptExhausted is returned by Process once every batch was consumed.
var ErrScriptExhausted = errors.New("hosttest: script exhausted")

// Query records one refresh request.
type Query struct {
	Player   uint8
	Location proto.Location
	Sequence uint8
	Flags    proto.QueryFlag
	Single   bool
}

// PlayerInfo records a set_player_info call.
type PlayerInfo struct {
	Player    uint8
	LP        int32
	StartHand uint32
	DrawCount uint32
}

// Engine hands out duels that replay Batches in order.
type Engine struct {
	// Batches are returned by successive Process calls.
	Batches [][]byte
	// FieldData answers field queries; nil yields an empty zone.
	FieldData func(player uint8, loc proto.Location) []byte
	// CardData answers single-card queries; nil yields a vacant record.
	CardData func(player uint8, loc proto.Location, seq uint8) []byte
	// Reject makes the engine answer a response with a retry.
	Reject func(resp []byte) bool
	// QueryErr, when set, fails every query.
	QueryErr error

	Last *Duel
}

// CreateDuel implements host.Engine.
func (e *Engine) CreateDuel(seed uint32) (host.Duel, error) {
	d := &Duel{engine: e, Seed: seed, batches: append([][]byte(nil), e.Batches...)}
	e.Last = d
	return d, nil
}

// Duel is a scripted duel. Its exported fields record every call.
type Duel struct {
	engine  *Engine
	batches [][]byte

	Seed      uint32
	Players   []PlayerInfo
	Cards     []host.NewCard
	Options   uint32
	Started   bool
	Ended     bool
	Processed int
	Responses [][]byte
	Queries   []Query
}

func (d *Duel) SetPlayerInfo(player uint8, lp int32, startHand, drawCount uint32) error {
	d.Players = append(d.Players, PlayerInfo{Player: player, LP: lp, StartHand: startHand, DrawCount: drawCount})
	return nil
}

func (d *Duel) NewCard(c host.NewCard) error {
	d.Cards = append(d.Cards, c)
	return nil
}

func (d *Duel) Start(options uint32) error {
	d.Options = options
	d.Started = true
	return nil
}

func (d *Duel) Process() ([]byte, error) {
	if len(d.batches) == 0 {
		return nil, ErrScriptExhausted
	}
	b := d.batches[0]
	d.batches = d.batches[1:]
	d.Processed++
	return b, nil
}

func (d *Duel) SetResponse(resp []byte) error {
	d.Responses = append(d.Responses, append([]byte(nil), resp...))
	if d.engine.Reject != nil && d.engine.Reject(resp) {
		retry := proto.NewBuilder(proto.MsgRetry).Bytes()
		d.batches = append([][]byte{retry}, d.batches...)
	}
	return nil
}

func (d *Duel) QueryCard(player uint8, loc proto.Location, seq uint8, flags proto.QueryFlag) ([]byte, error) {
	d.Queries = append(d.Queries, Query{Player: player, Location: loc, Sequence: seq, Flags: flags, Single: true})
	if d.engine.QueryErr != nil {
		return nil, d.engine.QueryErr
	}
	if d.engine.CardData != nil {
		return d.engine.CardData(player, loc, seq), nil
	}
	return proto.EmptyRecord(), nil
}

func (d *Duel) QueryFieldCard(player uint8, loc proto.Location, flags proto.QueryFlag) ([]byte, error) {
	d.Queries = append(d.Queries, Query{Player: player, Location: loc, Flags: flags})
	if d.engine.QueryErr != nil {
		return nil, d.engine.QueryErr
	}
	if d.engine.FieldData != nil {
		return d.engine.FieldData(player, loc), nil
	}
	return nil, nil
}

func (d *Duel) End() error {
	d.Ended = true
	return nil
}

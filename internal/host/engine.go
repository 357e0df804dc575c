// Package host drives a rule engine from a recorded replay: it primes the
// duel, pumps engine messages one at a time, splices in the refresh queries
// needed to keep the stream self-contained and feeds recorded responses.
package host

import (
	"errors"
	"fmt"

	"github.com/ghlin/ego/internal/proto"
)

var (
	// ErrDuelFinished is returned by Step after a win message was delivered.
	ErrDuelFinished = errors.New("duel finished")
	// ErrResponseRejected means the engine answered a recorded response with
	// a retry request.
	ErrResponseRejected = errors.New("response rejected")
	// ErrExhaustedResponses means the recording ran out before the duel
	// concluded. RunReplay reports it as a forfeit, not a failure.
	ErrExhaustedResponses = errors.New("responses exhausted")
	// ErrTagUnsupported is returned for four-player tag replays.
	ErrTagUnsupported = errors.New("tag duels are not supported")
)

// NewCard places one card during duel setup.
type NewCard struct {
	Code     uint32
	Owner    uint8
	Player   uint8
	Location proto.Location
	Sequence uint8
	Position proto.Position
}

// Querier is the read side of a running duel used by the refresh planner.
// Both calls return the engine's raw query bytes.
type Querier interface {
	QueryCard(player uint8, loc proto.Location, seq uint8, flags proto.QueryFlag) ([]byte, error)
	QueryFieldCard(player uint8, loc proto.Location, flags proto.QueryFlag) ([]byte, error)
}

// Duel is one duel instance inside the rule engine.
type Duel interface {
	Querier

	SetPlayerInfo(player uint8, lp int32, startHand, drawCount uint32) error
	NewCard(c NewCard) error
	Start(options uint32) error
	// Process advances the engine and returns the messages it produced.
	Process() ([]byte, error)
	SetResponse(resp []byte) error
	End() error
}

// Engine creates duels.
type Engine interface {
	CreateDuel(seed uint32) (Duel, error)
}

// HostError wraps a failure that happened on the engine side of the
// boundary: an engine call or the decoding of its output.
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host: %s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

func hostErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var he *HostError
	if errors.As(err, &he) {
		return err
	}
	return &HostError{Op: op, Err: err}
}

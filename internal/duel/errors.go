package duel

import (
	"errors"
	"fmt"

	"github.com/ghlin/ego/internal/proto"
)

// ErrInconsistentState means the message stream and the model diverged.
// It is never recovered from.
var ErrInconsistentState = errors.New("inconsistent duel state")

// StateError describes where the model diverged.
type StateError struct {
	Controller uint8
	Location   proto.Location
	Sequence   int
	Message    proto.MsgType
	Reason     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("inconsistent duel state: %s (controller %d, location %s, sequence %d) while applying %s",
		e.Reason, e.Controller, e.Location, e.Sequence, e.Message)
}

func (e *StateError) Unwrap() error {
	return ErrInconsistentState
}

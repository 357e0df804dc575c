package host

import (
	"errors"

	"github.com/ghlin/ego/internal/proto"
)

// maxEmptyPumps bounds how many consecutive empty engine batches the queue
// tolerates before giving up.
const maxEmptyPumps = 1 << 12

var errEngineStalled = errors.New("engine produced no messages")

// messageQueue buffers one decoded engine batch and hands messages out one
// at a time, refilling only when the batch is used up.
type messageQueue struct {
	pump  func() ([]proto.Message, error)
	queue []proto.Message
	index int
}

func newMessageQueue(pump func() ([]proto.Message, error)) *messageQueue {
	return &messageQueue{pump: pump}
}

func (q *messageQueue) pull() (proto.Message, error) {
	if err := q.fill(); err != nil {
		return nil, err
	}
	m := q.queue[q.index]
	q.index++
	return m, nil
}

func (q *messageQueue) peek() (proto.Message, error) {
	if err := q.fill(); err != nil {
		return nil, err
	}
	return q.queue[q.index], nil
}

func (q *messageQueue) fill() error {
	for empty := 0; q.index == len(q.queue); empty++ {
		if empty == maxEmptyPumps {
			return errEngineStalled
		}
		batch, err := q.pump()
		if err != nil {
			return err
		}
		q.queue, q.index = batch, 0
	}
	return nil
}

package host

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
)

// Sink receives every message of a run in stream order.
type Sink func(m proto.Message) error

// Result summarizes one run.
type Result struct {
	Messages  int
	Responses int
	// Finished is set when the engine declared a winner.
	Finished bool
	// Forfeit is set when the recorded responses ran out first.
	Forfeit bool
}

// RunReplay plays the recording r through the engine, passing every message
// to sink. Running out of responses ends the run early without an error.
func RunReplay(ctx context.Context, engine Engine, r *replay.Replay, log *zap.Logger, sink Sink) (Result, error) {
	cfg, err := ConfigFromReplay(r)
	if err != nil {
		return Result{}, err
	}
	cfg.Logger = log
	return Run(ctx, engine, cfg, r.Responses(), sink)
}

// Run drives a duel configured by cfg, answering questions from responses.
func Run(ctx context.Context, engine Engine, cfg Config, responses *replay.Responses, sink Sink) (res Result, err error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	d, err := NewDriver(engine, cfg)
	if err != nil {
		return res, err
	}
	defer func() {
		if rerr := d.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	emit := func(m proto.Message) error {
		res.Messages++
		if sink == nil {
			return nil
		}
		return sink(m)
	}

	start, err := d.Start()
	if err != nil {
		return res, err
	}
	for _, o := range start {
		if err := emit(o.Message); err != nil {
			return res, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		outs, err := d.Step()
		if err != nil {
			return res, err
		}
		for _, o := range outs {
			switch {
			case o.Finished:
				res.Finished = true
				log.Debug("duel finished", zap.Int("messages", res.Messages), zap.Int("responses", res.Responses))
				return res, nil

			case o.Awaiting():
				resp, err := nextResponse(responses)
				if errors.Is(err, ErrExhaustedResponses) {
					res.Forfeit = true
					log.Debug("responses exhausted", zap.Int("messages", res.Messages), zap.Int("responses", res.Responses))
					return res, nil
				}
				ok, err := d.Feed(resp)
				if err != nil {
					return res, err
				}
				if !ok {
					return res, fmt.Errorf("%w: response #%d to %s", ErrResponseRejected, res.Responses, o.Message.Type())
				}
				res.Responses++

			default:
				if err := emit(o.Message); err != nil {
					return res, err
				}
			}
		}
	}
}

func nextResponse(responses *replay.Responses) ([]byte, error) {
	if responses == nil {
		return nil, ErrExhaustedResponses
	}
	resp, ok := responses.Next()
	if !ok {
		return nil, ErrExhaustedResponses
	}
	return resp, nil
}

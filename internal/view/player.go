package view

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/duel"
	"github.com/ghlin/ego/internal/laminate"
	"github.com/ghlin/ego/internal/log"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/strconf"
)

// Options configures a Player.
type Options struct {
	Catalog   duel.Catalog
	Templates *strconf.Templates
	Logger    *zap.Logger
	Validate  bool
}

// Player replays a laminated document through a duel state, one message at
// a time. A Player is not safe for concurrent use.
type Player struct {
	ID   string
	Name string

	doc  *laminate.Document
	msgs []proto.Message
	opts Options

	state   *duel.State
	events  *log.MemoryLogger
	next    int
	seen    int
	pending proto.Question
	ended   bool
}

// NewPlayer decodes doc and positions the player before its first message.
// A nil Catalog falls back to the cards attached to doc.
func NewPlayer(name string, doc *laminate.Document, opts Options) (*Player, error) {
	msgs, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if opts.Catalog == nil && len(doc.Cards) > 0 {
		opts.Catalog = doc.CardStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := &Player{ID: uuid.NewString(), Name: name, doc: doc, msgs: msgs, opts: opts}
	p.rewind()
	return p, nil
}

func (p *Player) rewind() {
	p.events = log.NewMemoryLogger()
	p.state = duel.New(duel.Options{
		Validate:  p.opts.Validate,
		Logger:    p.opts.Logger,
		Templates: p.opts.Templates,
		Catalog:   p.opts.Catalog,
	})
	duel.NewEventLog(p.state, p.events)
	p.state.Init(p.doc.StartInfo())
	p.next, p.seen = 0, 0
	p.pending = nil
	p.ended = false
}

// Players returns the duelists' names.
func (p *Player) Players() []string {
	names := make([]string, 0, len(p.doc.Players))
	for _, pl := range p.doc.Players {
		names = append(names, pl.Name)
	}
	return names
}

// Len returns the number of messages.
func (p *Player) Len() int { return len(p.msgs) }

// Pos returns the number of messages applied.
func (p *Player) Pos() int { return p.next }

// Done reports whether every message was applied.
func (p *Player) Done() bool { return p.next >= len(p.msgs) }

// State exposes the reconstructed duel.
func (p *Player) State() *duel.State { return p.state }

// Step applies up to n messages, all remaining ones when n <= 0, and
// returns the events they produced.
func (p *Player) Step(n int) ([]EventView, error) {
	end := len(p.msgs)
	if n > 0 && p.next+n < end {
		end = p.next + n
	}
	for p.next < end {
		m := p.msgs[p.next]
		if err := p.state.Handle(m); err != nil {
			return p.drain(), fmt.Errorf("message %d (%s): %w", p.next, m.Type(), err)
		}
		p.next++
		p.track(m)
	}
	if p.Done() && !p.ended {
		p.ended = true
		if p.doc.Forfeit && p.pending != nil {
			st := p.state.Status()
			p.events.Log(log.NewForfeitEvent(st.Turn, phaseName(st.Phase), int(p.pending.Responder())))
		}
	}
	return p.drain(), nil
}

func (p *Player) track(m proto.Message) {
	q, ok := m.(proto.Question)
	if !ok {
		if m.Type() != proto.MsgRetry {
			p.pending = nil
		}
		return
	}
	p.pending = q
	st := p.state.Status()
	p.events.Log(log.NewQuestionEvent(st.Turn, phaseName(st.Phase), int(q.Responder()), QuestionName(m.Type())))
}

// Seek replays from the start up to pos messages.
func (p *Player) Seek(pos int) error {
	if pos < 0 || pos > len(p.msgs) {
		return fmt.Errorf("seek %d: out of range [0, %d]", pos, len(p.msgs))
	}
	if pos < p.next {
		p.rewind()
	}
	if pos == p.next {
		p.seen = len(p.events.Events())
		return nil
	}
	_, err := p.Step(pos - p.next)
	return err
}

func (p *Player) drain() []EventView {
	all := p.events.Events()
	out := EventViews(all[p.seen:])
	p.seen = len(all)
	return out
}

// Events returns every event logged so far.
func (p *Player) Events() []EventView {
	return EventViews(p.events.Events())
}

// Board renders the current duel.
func (p *Player) Board() *BoardView {
	return BuildBoard(p.state, p.opts.Catalog)
}

// Pending returns the question the replay last stopped at, if it is still
// unanswered.
func (p *Player) Pending() *PendingView {
	if p.pending == nil {
		return nil
	}
	return &PendingView{Player: int(p.pending.Responder()), Question: QuestionName(p.pending.Type())}
}

// QuestionName turns a question message type into a short label:
// MSG_SELECT_IDLECMD reads "select idlecmd".
func QuestionName(t proto.MsgType) string {
	name := strings.TrimPrefix(t.String(), "MSG_")
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}

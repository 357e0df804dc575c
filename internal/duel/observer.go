package duel

import (
	"github.com/ghlin/ego/internal/proto"
)

// Observer receives one callback per kind of transition. Callbacks run
// synchronously inside Apply and get copies; they may read the state but
// must not change it.
type Observer interface {
	OnNewCard(c Card)
	OnAdjustSequence(cards []Card)
	OnMove(c Card)
	OnSetPosition(c Card)
	OnUpdateCard(c Card)
	OnSpawn(c Card)
	OnDespawn(c Card)
	OnSetCode(c Card)
	OnHighlight(c Card)
	OnHighlightCode(code uint32)
	OnLog(line string)
	OnHintMessage(text string)
	OnReveal(c Card)
	OnShuffle(controller uint8, loc proto.Location, cards []Card)
}

// StatusObserver is optionally implemented by observers that follow turn,
// phase, life point and winner changes.
type StatusObserver interface {
	OnStatus(prev, cur Status)
}

// NopObserver ignores everything. Embed it to subscribe to a subset.
type NopObserver struct{}

func (NopObserver) OnNewCard(Card)                           {}
func (NopObserver) OnAdjustSequence([]Card)                  {}
func (NopObserver) OnMove(Card)                              {}
func (NopObserver) OnSetPosition(Card)                       {}
func (NopObserver) OnUpdateCard(Card)                        {}
func (NopObserver) OnSpawn(Card)                             {}
func (NopObserver) OnDespawn(Card)                           {}
func (NopObserver) OnSetCode(Card)                           {}
func (NopObserver) OnHighlight(Card)                         {}
func (NopObserver) OnHighlightCode(uint32)                   {}
func (NopObserver) OnLog(string)                             {}
func (NopObserver) OnHintMessage(string)                     {}
func (NopObserver) OnReveal(Card)                            {}
func (NopObserver) OnShuffle(uint8, proto.Location, []Card) {}

// Observers fans every callback out in order.
type Observers []Observer

func (os Observers) OnNewCard(c Card) {
	for _, o := range os {
		o.OnNewCard(c)
	}
}

func (os Observers) OnAdjustSequence(cards []Card) {
	for _, o := range os {
		o.OnAdjustSequence(cards)
	}
}

func (os Observers) OnMove(c Card) {
	for _, o := range os {
		o.OnMove(c)
	}
}

func (os Observers) OnSetPosition(c Card) {
	for _, o := range os {
		o.OnSetPosition(c)
	}
}

func (os Observers) OnUpdateCard(c Card) {
	for _, o := range os {
		o.OnUpdateCard(c)
	}
}

func (os Observers) OnSpawn(c Card) {
	for _, o := range os {
		o.OnSpawn(c)
	}
}

func (os Observers) OnDespawn(c Card) {
	for _, o := range os {
		o.OnDespawn(c)
	}
}

func (os Observers) OnSetCode(c Card) {
	for _, o := range os {
		o.OnSetCode(c)
	}
}

func (os Observers) OnHighlight(c Card) {
	for _, o := range os {
		o.OnHighlight(c)
	}
}

func (os Observers) OnHighlightCode(code uint32) {
	for _, o := range os {
		o.OnHighlightCode(code)
	}
}

func (os Observers) OnLog(line string) {
	for _, o := range os {
		o.OnLog(line)
	}
}

func (os Observers) OnHintMessage(text string) {
	for _, o := range os {
		o.OnHintMessage(text)
	}
}

func (os Observers) OnReveal(c Card) {
	for _, o := range os {
		o.OnReveal(c)
	}
}

func (os Observers) OnShuffle(controller uint8, loc proto.Location, cards []Card) {
	for _, o := range os {
		o.OnShuffle(controller, loc, cards)
	}
}

func (os Observers) OnStatus(prev, cur Status) {
	for _, o := range os {
		if so, ok := o.(StatusObserver); ok {
			so.OnStatus(prev, cur)
		}
	}
}

// EventKind names an observation.
type EventKind string

const (
	KindNewCard        EventKind = "new_card"
	KindAdjustSequence EventKind = "adjust_sequence"
	KindMove           EventKind = "move"
	KindSetPosition    EventKind = "set_position"
	KindUpdateCard     EventKind = "update_card"
	KindSpawn          EventKind = "spawn"
	KindDespawn        EventKind = "despawn"
	KindSetCode        EventKind = "set_code"
	KindHighlight      EventKind = "highlight"
	KindHighlightCode  EventKind = "highlight_code"
	KindLog            EventKind = "log"
	KindHintMessage    EventKind = "hint"
	KindReveal         EventKind = "reveal"
	KindShuffle        EventKind = "shuffle"
)

// Event is one observation as a value.
type Event struct {
	Kind       EventKind      `json:"kind"`
	Card       *Card          `json:"card,omitempty"`
	Cards      []Card         `json:"cards,omitempty"`
	Code       uint32         `json:"code,omitempty"`
	Text       string         `json:"text,omitempty"`
	Controller uint8          `json:"controller,omitempty"`
	Location   proto.Location `json:"location,omitempty"`
}

// Recorder collects observations as events.
type Recorder struct {
	Events []Event
}

// Reset drops recorded events and returns what was collected.
func (r *Recorder) Reset() []Event {
	out := r.Events
	r.Events = nil
	return out
}

// OfKind returns the recorded events of one kind.
func (r *Recorder) OfKind(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) card(kind EventKind, c Card) {
	r.Events = append(r.Events, Event{Kind: kind, Card: &c})
}

func (r *Recorder) OnNewCard(c Card)     { r.card(KindNewCard, c) }
func (r *Recorder) OnMove(c Card)        { r.card(KindMove, c) }
func (r *Recorder) OnSetPosition(c Card) { r.card(KindSetPosition, c) }
func (r *Recorder) OnUpdateCard(c Card)  { r.card(KindUpdateCard, c) }
func (r *Recorder) OnSpawn(c Card)       { r.card(KindSpawn, c) }
func (r *Recorder) OnDespawn(c Card)     { r.card(KindDespawn, c) }
func (r *Recorder) OnSetCode(c Card)     { r.card(KindSetCode, c) }
func (r *Recorder) OnHighlight(c Card)   { r.card(KindHighlight, c) }
func (r *Recorder) OnReveal(c Card)      { r.card(KindReveal, c) }

func (r *Recorder) OnAdjustSequence(cards []Card) {
	r.Events = append(r.Events, Event{Kind: KindAdjustSequence, Cards: cards})
}

func (r *Recorder) OnHighlightCode(code uint32) {
	r.Events = append(r.Events, Event{Kind: KindHighlightCode, Code: code})
}

func (r *Recorder) OnLog(line string) {
	r.Events = append(r.Events, Event{Kind: KindLog, Text: line})
}

func (r *Recorder) OnHintMessage(text string) {
	r.Events = append(r.Events, Event{Kind: KindHintMessage, Text: text})
}

func (r *Recorder) OnShuffle(controller uint8, loc proto.Location, cards []Card) {
	r.Events = append(r.Events, Event{Kind: KindShuffle, Controller: controller, Location: loc, Cards: cards})
}

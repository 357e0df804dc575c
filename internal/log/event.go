package log

// EventType enumerates the observable replay events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventDraw
	EventMove
	EventSpawn
	EventDespawn
	EventChangePosition
	EventReveal
	EventShuffle
	EventHint
	EventChainLink
	EventTarget
	EventHPChange
	EventWin
	EventQuestion
	EventForfeit
	EventNote // free-form log lines rendered from system strings
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventMove:
		return "Move"
	case EventSpawn:
		return "Spawn"
	case EventDespawn:
		return "Despawn"
	case EventChangePosition:
		return "ChangePosition"
	case EventReveal:
		return "Reveal"
	case EventShuffle:
		return "Shuffle"
	case EventHint:
		return "Hint"
	case EventChainLink:
		return "ChainLink"
	case EventTarget:
		return "Target"
	case EventHPChange:
		return "HPChange"
	case EventWin:
		return "Win"
	case EventQuestion:
		return "Question"
	case EventForfeit:
		return "Forfeit"
	case EventNote:
		return "Note"
	default:
		return "Unknown"
	}
}

// GameEvent is a single observable event in a replayed duel.
type GameEvent struct {
	Seq     int       `json:"seq"`               // monotonic sequence number
	Turn    int       `json:"turn"`              // which turn (1-based, 0 before the first)
	Phase   string    `json:"phase,omitempty"`   // current phase name (e.g. "Main Phase 1")
	Player  int       `json:"player"`            // acting player (0 or 1)
	Type    EventType `json:"type"`              // event type
	Card    string    `json:"card,omitempty"`    // card name (if applicable)
	Details string    `json:"details,omitempty"` // human-readable detail string
}

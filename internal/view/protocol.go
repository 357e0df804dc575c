// Package view renders the reconstructed duel as JSON-friendly views and
// plays laminated replays step by step for the viewer and agent tools.
package view

// Message types for the viewer's JSON protocol over websocket.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "opened"
	Session string   `json:"session,omitempty"`
	Players []string `json:"players,omitempty"`
	Total   int      `json:"total,omitempty"`

	// For "step"
	Pos     int          `json:"pos,omitempty"`
	Events  []EventView  `json:"events,omitempty"`
	Board   *BoardView   `json:"board,omitempty"`
	Pending *PendingView `json:"pending,omitempty"`
	Done    bool         `json:"done,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// PendingView names the player the replay is waiting on.
type PendingView struct {
	Player   int    `json:"player"`
	Question string `json:"question"`
}

// CardView describes one card outside the field zones.
type CardView struct {
	Code     uint32 `json:"code,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	FaceUp   bool   `json:"face_up,omitempty"`
}

// BoardView is the whole duel as the replay knows it.
type BoardView struct {
	Turn       int           `json:"turn"`
	Phase      string        `json:"phase"`
	TurnPlayer int           `json:"turn_player"`
	Players    [2]PlayerView `json:"players"`
	Chain      *CardView     `json:"chain,omitempty"`
	Event      string        `json:"event,omitempty"`
	Current    string        `json:"current,omitempty"`
	Winner     int           `json:"winner"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	LP         int32       `json:"lp"`
	Hand       []CardView  `json:"hand"`
	MZone      [7]ZoneView `json:"mzone"`
	SZone      [8]ZoneView `json:"szone"`
	Grave      []CardView  `json:"grave"`
	Removed    []CardView  `json:"removed"`
	Extra      []CardView  `json:"extra"`
	DeckCount  int         `json:"deck_count"`
	ExtraCount int         `json:"extra_count"`
}

// ZoneView describes a single zone on the field.
type ZoneView struct {
	Empty     bool     `json:"empty,omitempty"`
	FaceDown  bool     `json:"face_down,omitempty"`
	Code      uint32   `json:"code,omitempty"`
	Name      string   `json:"name,omitempty"`
	ATK       int32    `json:"atk,omitempty"`
	DEF       int32    `json:"def,omitempty"`
	Position  string   `json:"position,omitempty"` // "ATK" or "DEF"
	Materials []string `json:"materials,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "open"
	Name string `json:"name,omitempty"`

	// For "step"
	Count int `json:"count,omitempty"`

	// For "seek"
	Pos int `json:"pos,omitempty"`
}

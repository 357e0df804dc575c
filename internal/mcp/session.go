package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/laminate"
	"github.com/ghlin/ego/internal/replay"
	"github.com/ghlin/ego/internal/view"
)

// ToolResponse is the JSON envelope returned by the replay tools.
type ToolResponse struct {
	Session string            `json:"session"`
	Players []string          `json:"players,omitempty"`
	Pos     int               `json:"pos"`
	Total   int               `json:"total"`
	Events  []view.EventView  `json:"events"`
	Board   *view.BoardView   `json:"board,omitempty"`
	Pending *view.PendingView `json:"pending,omitempty"`
	Done    bool              `json:"done"`
	Error   string            `json:"error,omitempty"`
}

// Config tells the tools where replays live and how to expand raw ones.
type Config struct {
	// Dir resolves relative replay paths.
	Dir string
	// Engine, when set, lets open_replay laminate raw .yrp replays.
	Engine host.Engine
	// Cards names cards and is attached to laminated documents.
	Cards *cardb.Store
	View  view.Options
}

// Sessions holds the open replays of one MCP server.
type Sessions struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu     sync.Mutex
	player *view.Player
}

// NewSessions creates an empty session table.
func NewSessions(cfg Config) *Sessions {
	log := cfg.View.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.View.Catalog == nil && cfg.Cards != nil {
		cfg.View.Catalog = cfg.Cards
	}
	return &Sessions{cfg: cfg, log: log, sessions: make(map[string]*session)}
}

func (s *Sessions) resolve(path string) string {
	if filepath.IsAbs(path) || s.cfg.Dir == "" {
		return path
	}
	return filepath.Join(s.cfg.Dir, path)
}

// Open loads a laminated replay, or laminates a raw replay when an engine
// is configured, and starts a session on it.
func (s *Sessions) Open(ctx context.Context, path string) (*view.Player, error) {
	full := s.resolve(path)
	var doc *laminate.Document
	if strings.Contains(filepath.Base(full), ".laminated.json") {
		d, err := laminate.ReadFile(full)
		if err != nil {
			return nil, err
		}
		doc = d
	} else {
		if s.cfg.Engine == nil {
			return nil, fmt.Errorf("%s is not a laminated replay and no engine is configured", path)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		r, err := replay.Decode(data)
		if err != nil {
			return nil, err
		}
		doc, err = laminate.Laminate(ctx, s.cfg.Engine, r, s.log)
		if err != nil {
			return nil, err
		}
		if s.cfg.Cards != nil {
			doc.AttachCards(s.cfg.Cards)
		}
	}

	p, err := view.NewPlayer(filepath.Base(full), doc, s.cfg.View)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[p.ID] = &session{player: p}
	s.mu.Unlock()
	s.log.Info("replay opened", zap.String("session", p.ID), zap.String("path", full), zap.Int("messages", p.Len()))
	return p, nil
}

// With runs fn on the session's player while holding its lock.
func (s *Sessions) With(id string, fn func(p *view.Player) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no replay session %q", id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.player)
}

// Close forgets a session.
func (s *Sessions) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// respond builds a ToolResponse for p. Board is included when withBoard
// is set.
func respond(p *view.Player, events []view.EventView, withBoard bool) *ToolResponse {
	if events == nil {
		events = []view.EventView{}
	}
	resp := &ToolResponse{
		Session: p.ID,
		Pos:     p.Pos(),
		Total:   p.Len(),
		Events:  events,
		Pending: p.Pending(),
		Done:    p.Done(),
	}
	if withBoard {
		resp.Board = p.Board()
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}

// Package web serves a browser viewer for laminated replays. The browser
// opens a replay over websocket and steps through it; every step returns
// the new game events and the board.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/laminate"
	"github.com/ghlin/ego/internal/view"
)

//go:embed static
var staticFiles embed.FS

// ReplayInfo is the JSON representation of a replay for /api/replays.
type ReplayInfo struct {
	Name     string   `json:"name"`
	Players  []string `json:"players,omitempty"`
	Messages int      `json:"messages,omitempty"`
	Forfeit  bool     `json:"forfeit,omitempty"`
	Size     int64    `json:"size"`
}

// Server is the replay viewer server.
type Server struct {
	dir  string
	opts view.Options
	log  *zap.Logger
	mux  *http.ServeMux
}

// NewServer creates a viewer for the laminated replays in dir.
func NewServer(dir string, opts view.Options) (*Server, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("replay dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("replay dir: %s is not a directory", dir)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		dir:  dir,
		opts: opts,
		log:  log,
		mux:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/replays", s.handleList)
	s.mux.HandleFunc("GET /api/replays/{name}", s.handleReplay)
	s.mux.HandleFunc("GET /api/replays/{name}/board", s.handleBoard)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// IsLaminated reports whether name looks like a laminated replay file.
func IsLaminated(name string) bool {
	return strings.HasSuffix(name, ".laminated.json") || strings.HasSuffix(name, ".laminated.json.zst")
}

var errBadName = errors.New("bad replay name")

func (s *Server) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !IsLaminated(name) {
		return "", fmt.Errorf("%w: %q", errBadName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Server) load(name string) (*laminate.Document, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return laminate.ReadFile(path)
}

func (s *Server) open(name string) (*view.Player, error) {
	doc, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return view.NewPlayer(name, doc, s.opts)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "replay not found", http.StatusNotFound)
	default:
		s.log.Warn("replay request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.fail(w, err)
		return
	}
	replays := []ReplayInfo{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsLaminated(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		replays = append(replays, ReplayInfo{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(replays, func(i, j int) bool { return replays[i].Name < replays[j].Name })
	writeJSON(w, replays)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := s.path(name)
	if err != nil {
		s.fail(w, err)
		return
	}
	st, err := os.Stat(path)
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := laminate.ReadFile(path)
	if err != nil {
		s.fail(w, err)
		return
	}
	info := ReplayInfo{Name: name, Messages: len(doc.Messages), Forfeit: doc.Forfeit, Size: st.Size()}
	for _, p := range doc.Players {
		info.Players = append(info.Players, p.Name)
	}
	writeJSON(w, info)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	p, err := s.open(r.PathValue("name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	pos := p.Len()
	if q := r.URL.Query().Get("pos"); q != "" {
		pos, err = strconv.Atoi(q)
		if err != nil {
			http.Error(w, "pos must be an integer", http.StatusBadRequest)
			return
		}
	}
	if err := p.Seek(pos); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, view.ServerMessage{
		Type:    "step",
		Session: p.ID,
		Pos:     p.Pos(),
		Total:   p.Len(),
		Board:   p.Board(),
		Pending: p.Pending(),
		Done:    p.Done(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.log.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	send := func(msg view.ServerMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return wsConn.Write(ctx, websocket.MessageText, data)
	}
	stepMsg := func(p *view.Player, events []view.EventView, err error) view.ServerMessage {
		msg := view.ServerMessage{
			Type:    "step",
			Session: p.ID,
			Pos:     p.Pos(),
			Total:   p.Len(),
			Events:  events,
			Board:   p.Board(),
			Pending: p.Pending(),
			Done:    p.Done(),
		}
		if err != nil {
			msg.Error = err.Error()
		}
		return msg
	}

	var player *view.Player
	for {
		_, data, err := wsConn.Read(ctx)
		if err != nil {
			return
		}
		var req view.ClientMessage
		if err := json.Unmarshal(data, &req); err != nil {
			wsConn.Close(websocket.StatusPolicyViolation, "expected JSON message")
			return
		}

		var reply view.ServerMessage
		switch {
		case req.Type == "open":
			p, err := s.open(req.Name)
			if err != nil {
				reply = view.ServerMessage{Type: "error", Error: err.Error()}
				break
			}
			player = p
			s.log.Info("replay opened", zap.String("session", p.ID), zap.String("name", req.Name))
			reply = view.ServerMessage{
				Type:    "opened",
				Session: p.ID,
				Players: p.Players(),
				Total:   p.Len(),
				Board:   p.Board(),
			}
		case player == nil:
			reply = view.ServerMessage{Type: "error", Error: "no replay is open"}
		case req.Type == "step":
			count := req.Count
			if count == 0 {
				count = 1
			}
			events, err := player.Step(count)
			reply = stepMsg(player, events, err)
		case req.Type == "seek":
			err := player.Seek(req.Pos)
			reply = stepMsg(player, nil, err)
		default:
			reply = view.ServerMessage{Type: "error", Error: fmt.Sprintf("unknown message type %q", req.Type)}
		}

		if err := send(reply); err != nil {
			s.log.Debug("websocket write", zap.Error(err))
			return
		}
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

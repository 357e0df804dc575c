package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghlin/ego/internal/laminate"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
	"github.com/ghlin/ego/internal/view"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	doc := &laminate.Document{
		StartLP: 8000,
		Players: []replay.Player{
			{Name: "alice", Main: []uint32{1001, 1002}},
			{Name: "bob", Main: []uint32{1003}},
		},
	}
	for _, m := range []proto.Message{
		&proto.NewTurn{Player: 0},
		&proto.NewPhase{Phase: proto.PhaseDraw},
		&proto.Draw{Player: 0, Cards: []uint32{1001}},
		&proto.Win{Player: 0, Reason: 1},
	} {
		env, err := proto.Wrap(m)
		require.NoError(t, err)
		doc.Messages = append(doc.Messages, env)
	}
	require.NoError(t, laminate.WriteFile(filepath.Join(dir, "a.laminated.json"), doc))
	require.NoError(t, laminate.WriteFile(filepath.Join(dir, "b.laminated.json.zst"), doc))

	s, err := NewServer(dir, view.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestReplayAPI(t *testing.T) {
	srv := newTestServer(t)

	var list []ReplayInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/replays", &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a.laminated.json", list[0].Name)
	assert.Equal(t, "b.laminated.json.zst", list[1].Name)

	var info ReplayInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/replays/b.laminated.json.zst", &info))
	assert.Equal(t, []string{"alice", "bob"}, info.Players)
	assert.Equal(t, 4, info.Messages)

	var step view.ServerMessage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/replays/a.laminated.json/board?pos=3", &step))
	assert.Equal(t, 3, step.Pos)
	require.NotNil(t, step.Board)
	assert.Len(t, step.Board.Players[0].Hand, 1)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/replays/c.laminated.json", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/replays/notes.txt", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/api/replays/a.laminated.json/board?pos=9", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/replays/a.laminated.json/board?pos=x", nil))
}

func TestIndexIsServed(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
}

func TestWebSocketStepsReplay(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	roundTrip := func(req view.ClientMessage) view.ServerMessage {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
		_, reply, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg view.ServerMessage
		require.NoError(t, json.Unmarshal(reply, &msg))
		return msg
	}

	msg := roundTrip(view.ClientMessage{Type: "step"})
	assert.Equal(t, "error", msg.Type)

	msg = roundTrip(view.ClientMessage{Type: "open", Name: "a.laminated.json"})
	require.Equal(t, "opened", msg.Type)
	assert.NotEmpty(t, msg.Session)
	assert.Equal(t, 4, msg.Total)

	msg = roundTrip(view.ClientMessage{Type: "step", Count: 3})
	require.Equal(t, "step", msg.Type)
	assert.Equal(t, 3, msg.Pos)
	assert.Len(t, msg.Events, 3)
	assert.False(t, msg.Done)

	msg = roundTrip(view.ClientMessage{Type: "step", Count: -1})
	assert.True(t, msg.Done)
	require.NotNil(t, msg.Board)
	assert.Equal(t, 0, msg.Board.Winner)

	msg = roundTrip(view.ClientMessage{Type: "seek", Pos: 1})
	assert.Equal(t, 1, msg.Pos)
	assert.Empty(t, msg.Error)

	msg = roundTrip(view.ClientMessage{Type: "dance"})
	assert.Equal(t, "error", msg.Type)

	msg = roundTrip(view.ClientMessage{Type: "open", Name: "../etc/passwd"})
	assert.Equal(t, "error", msg.Type)

	conn.Close(websocket.StatusNormalClosure, "")
}

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ghlin/ego/internal/view"
)

// RegisterTools adds the replay tools to the MCP server.
func (s *Sessions) RegisterTools(srv *server.MCPServer) {
	srv.AddTool(openReplayTool(), s.handleOpenReplay)
	srv.AddTool(stepReplayTool(), s.handleStepReplay)
	srv.AddTool(seekReplayTool(), s.handleSeekReplay)
	srv.AddTool(getBoardTool(), s.handleGetBoard)
	srv.AddTool(closeReplayTool(), s.handleCloseReplay)
}

// --- Tool definitions ---

func openReplayTool() mcp.Tool {
	return mcp.NewTool("open_replay",
		mcp.WithDescription("Open a duel replay for step-by-step inspection. Accepts a laminated replay "+
			"(*.laminated.json or *.laminated.json.zst), or a raw .yrp replay when the server has an engine. "+
			"Returns a session id, the duelists and the initial board."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the replay, relative to the replay directory or absolute")),
	)
}

func stepReplayTool() mcp.Tool {
	return mcp.NewTool("step_replay",
		mcp.WithDescription("Apply the next messages of an open replay and return the game events they produced."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session id returned by open_replay")),
		mcp.WithNumber("count", mcp.Description("Number of engine messages to apply (default 1, 0 or less applies all remaining)")),
		mcp.WithBoolean("board", mcp.Description("Include the board after stepping (default true)")),
	)
}

func seekReplayTool() mcp.Tool {
	return mcp.NewTool("seek_replay",
		mcp.WithDescription("Move an open replay to an absolute message position and return the board there."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session id returned by open_replay")),
		mcp.WithNumber("pos", mcp.Required(), mcp.Description("Number of messages applied from the start")),
	)
}

func getBoardTool() mcp.Tool {
	return mcp.NewTool("get_board",
		mcp.WithDescription("Get the current board of an open replay without advancing it. Read-only."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session id returned by open_replay")),
	)
}

func closeReplayTool() mcp.Tool {
	return mcp.NewTool("close_replay",
		mcp.WithDescription("Close an open replay session."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session id returned by open_replay")),
	)
}

// --- Tool handlers ---

func (s *Sessions) handleOpenReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	p, err := s.Open(ctx, path)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to open replay: %v", err), nil
	}
	resp := respond(p, nil, true)
	resp.Players = p.Players()
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Sessions) handleStepReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	count := request.GetInt("count", 1)
	withBoard := request.GetBool("board", true)

	var resp *ToolResponse
	err := s.With(id, func(p *view.Player) error {
		if p.Done() {
			resp = respond(p, nil, withBoard)
			return nil
		}
		events, err := p.Step(count)
		resp = respond(p, events, withBoard)
		if err != nil {
			resp.Error = err.Error()
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Sessions) handleSeekReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	pos := request.GetInt("pos", -1)

	var resp *ToolResponse
	err := s.With(id, func(p *view.Player) error {
		if err := p.Seek(pos); err != nil {
			return err
		}
		resp = respond(p, nil, true)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Seek failed: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Sessions) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	var resp *ToolResponse
	err := s.With(id, func(p *view.Player) error {
		resp = respond(p, nil, true)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Sessions) handleCloseReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	if !s.Close(id) {
		return mcp.NewToolResultErrorf("no replay session %q", id), nil
	}
	return mcp.NewToolResultText(`{"closed": true}`), nil
}

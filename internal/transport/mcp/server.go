// Package mcp exposes games as Model Context Protocol tools so an assistant
// can play through the same processor as the HTTP API.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"chessrules/internal/core"
	"chessrules/internal/processor"
)

// Server binds MCP tools to a processor
type Server struct {
	proc      *processor.Processor
	mcpServer *server.MCPServer
}

func NewServer(proc *processor.Processor, version string) *Server {
	s := &Server{proc: proc}
	s.mcpServer = server.NewMCPServer(
		"chessrules",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chess rules engine

Create a game with new_game, then play moves as coordinate pairs such as "e2e4".
Every move is checked for legality: a move that leaves the mover's king in check is refused.
Castling, en passant and promotion are not played. A pawn that reaches the last rank stays a pawn.

AVAILABLE TOOLS:
- new_game: Start a game, optionally from a FEN position
- get_game: Current state, move list and status
- make_move: Play a move for the side to move
- undo / redo: Take back or replay moves
- resign / draw: End the game by resignation or agreement
- board: ASCII board
- pgn: Game record in PGN`),
	)
	s.registerTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves tools over stdin and stdout until the input closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by new_game",
	}
}

func colorProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        []string{"white", "black"},
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game from the standard position or a FEN",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fen": map[string]interface{}{
					"type":        "string",
					"description": "Starting position in FEN (optional)",
				},
				"white": map[string]interface{}{
					"type":        "string",
					"description": "White player name (optional)",
				},
				"black": map[string]interface{}{
					"type":        "string",
					"description": "Black player name (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the state of a game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleGetGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Play a move for the side to move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"move": map[string]interface{}{
					"type":        "string",
					"description": "Origin and target squares, e.g. e2e4",
				},
			},
			Required: []string{"game_id", "move"},
		},
	}, s.handleMakeMove)

	for _, name := range []string{"undo", "redo"} {
		s.mcpServer.AddTool(mcp.Tool{
			Name:        name,
			Description: fmt.Sprintf("%s one or more moves", strings.ToUpper(name[:1])+name[1:]),
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"game_id": gameIDProperty(),
					"count": map[string]interface{}{
						"type":        "number",
						"description": "Number of moves (default 1)",
					},
				},
				Required: []string{"game_id"},
			},
		}, s.handleUndoRedo(name))
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "resign",
		Description: "Resign the game for one side",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"color":   colorProperty("Side that resigns"),
			},
			Required: []string{"game_id", "color"},
		},
	}, s.handleResign)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "draw",
		Description: "Offer, accept or decline a draw",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"color":   colorProperty("Side acting"),
				"action": map[string]interface{}{
					"type": "string",
					"enum": []string{"offer", "accept", "decline"},
				},
			},
			Required: []string{"game_id", "color", "action"},
		},
	}, s.handleDraw)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the board as ASCII art",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleBoard)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "pgn",
		Description: "Export the game in PGN",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handlePGN)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

// gameResult renders a game response, or the processor error
func gameResult(resp processor.ProcessorResponse) *mcp.CallToolResult {
	if !resp.Success {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Error))
	}
	g, ok := resp.Data.(core.GameResponse)
	if !ok {
		return mcp.NewToolResultText("ok")
	}
	return mcp.NewToolResultText(formatGame(g))
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	fen, _ := args["fen"].(string)
	white, _ := args["white"].(string)
	black, _ := args["black"].(string)

	return gameResult(s.proc.Execute(processor.NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Name: white},
		Black: core.PlayerConfig{Name: black},
		FEN:   strings.TrimSpace(fen),
	}))), nil
}

func (s *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)
	return gameResult(s.proc.Execute(processor.NewGetGameCommand(gameID))), nil
}

func (s *Server) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	move, _ := args["move"].(string)

	move = strings.ToLower(strings.TrimSpace(move))
	if len(move) != 4 {
		return mcp.NewToolResultError("move must be two squares, e.g. e2e4"), nil
	}
	req := core.MoveRequest{From: move[:2], To: move[2:]}
	return gameResult(s.proc.Execute(processor.NewMakeMoveCommand(gameID, "", req))), nil
}

func (s *Server) handleUndoRedo(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		gameID, _ := args["game_id"].(string)
		count := 1
		if n, ok := args["count"].(float64); ok {
			count = int(n)
		}

		cmd := processor.NewUndoMoveCommand(gameID, "", core.UndoRequest{Count: count})
		if name == "redo" {
			cmd = processor.NewRedoMoveCommand(gameID, "", core.RedoRequest{Count: count})
		}
		return gameResult(s.proc.Execute(cmd)), nil
	}
}

func (s *Server) handleResign(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	color, _ := args["color"].(string)
	return gameResult(s.proc.Execute(processor.NewResignCommand(gameID, "", core.ResignRequest{Color: color}))), nil
}

func (s *Server) handleDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	color, _ := args["color"].(string)
	action, _ := args["action"].(string)
	req := core.DrawRequest{Color: color, Action: action}
	return gameResult(s.proc.Execute(processor.NewDrawCommand(gameID, "", req))), nil
}

func (s *Server) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)
	resp := s.proc.Execute(processor.NewGetBoardCommand(gameID))
	if !resp.Success {
		return gameResult(resp), nil
	}
	b := resp.Data.(core.BoardResponse)
	return mcp.NewToolResultText(b.Board + "\nFEN: " + b.FEN), nil
}

func (s *Server) handlePGN(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)
	resp := s.proc.Execute(processor.NewGetPGNCommand(gameID))
	if !resp.Success {
		return gameResult(resp), nil
	}
	return mcp.NewToolResultText(resp.Data.(core.PGNResponse).PGN), nil
}

// formatGame renders a game response as text
func formatGame(g core.GameResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game: %s\n", g.GameID)
	fmt.Fprintf(&sb, "White: %s, Black: %s\n", g.Players.White.Name, g.Players.Black.Name)
	fmt.Fprintf(&sb, "FEN: %s\n", g.FEN)

	turn := "White"
	if g.Turn == "b" {
		turn = "Black"
	}
	fmt.Fprintf(&sb, "To move: %s\n", turn)
	fmt.Fprintf(&sb, "State: %s", g.State)
	if g.Side != "" {
		fmt.Fprintf(&sb, " (%s)", g.Side)
	}
	fmt.Fprintf(&sb, ", result %s\n", g.Result)
	if g.DrawOffer != "" {
		fmt.Fprintf(&sb, "Draw offered by: %s\n", g.DrawOffer)
	}
	if g.LastMove != nil {
		fmt.Fprintf(&sb, "Last move: %s (%s)", g.LastMove.Move, g.LastMove.Piece)
		if g.LastMove.Captured != "" {
			fmt.Fprintf(&sb, " captures %s", g.LastMove.Captured)
		}
		sb.WriteByte('\n')
	}
	if len(g.Moves) > 0 {
		fmt.Fprintf(&sb, "Moves: %s\n", strings.Join(g.Moves, " "))
	}
	return sb.String()
}

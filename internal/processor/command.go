package processor

import (
	"chessrules/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdRestoreGame
	CmdMakeMove
	CmdUndoMove
	CmdRedoMove
	CmdResign
	CmdDraw
	CmdGetBoard
	CmdGetPGN
)

// Command is a unified structure for all processor operations
type Command struct {
	Type     CommandType
	PlayerID string // From a validated seat token, empty if anonymous
	GameID   string // For game-specific commands
	Args     any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{
		Type: CmdCreateGame,
		Args: req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID, playerID string) Command {
	return Command{
		Type:     CmdDeleteGame,
		PlayerID: playerID,
		GameID:   gameID,
	}
}

func NewRestoreGameCommand(gameID string) Command {
	return Command{
		Type:   CmdRestoreGame,
		GameID: gameID,
	}
}

func NewMakeMoveCommand(gameID, playerID string, req core.MoveRequest) Command {
	return Command{
		Type:     CmdMakeMove,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewUndoMoveCommand(gameID, playerID string, req core.UndoRequest) Command {
	return Command{
		Type:     CmdUndoMove,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewRedoMoveCommand(gameID, playerID string, req core.RedoRequest) Command {
	return Command{
		Type:     CmdRedoMove,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewResignCommand(gameID, playerID string, req core.ResignRequest) Command {
	return Command{
		Type:     CmdResign,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewDrawCommand(gameID, playerID string, req core.DrawRequest) Command {
	return Command{
		Type:     CmdDraw,
		PlayerID: playerID,
		GameID:   gameID,
		Args:     req,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewGetPGNCommand(gameID string) Command {
	return Command{
		Type:   CmdGetPGN,
		GameID: gameID,
	}
}

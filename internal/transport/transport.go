package transport

import (
	"chessrules/internal/board"
	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

// View abstracts input and output for interactive controllers
type View interface {
	GetCommand(prompt string) (*cli.Command, error)
	SetTheme(theme cli.ColorTheme) error
	ToggleVerbose() bool

	DisplayBoard(b board.Board)
	ShowMessage(msg string)
	ShowError(err error)
	ShowHelp()
	ShowGameHistory(g *game.Game)
	ShowMove(result *game.MoveResult)
	ShowStatus(st core.Status)
}

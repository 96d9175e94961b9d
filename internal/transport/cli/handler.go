package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/notation"
	"chessrules/internal/service"
	"chessrules/internal/transport"
)

var errNoGame = errors.New("no active game, use 'new' or 'resume <FEN>'")

// CLIHandler runs a two-player game at one console
type CLIHandler struct {
	svc          *service.Service
	view         transport.View
	white, black core.PlayerConfig
	gameID       string
	log          *logrus.Entry
}

func New(svc *service.Service, view transport.View, white, black core.PlayerConfig) *CLIHandler {
	return &CLIHandler{
		svc:   svc,
		view:  view,
		white: white,
		black: black,
		log:   logrus.WithField("component", "console"),
	}
}

// Run is the main loop: read a command, process it, repeat until quit
func (h *CLIHandler) Run() error {
	for {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			return err
		}

		// Process command - returns false to exit
		if !h.ProcessCommand(cmd) {
			return nil
		}
	}
}

// GameID returns the game being played, empty if none
func (h *CLIHandler) GameID() string {
	return h.gameID
}

// Generates the prompt: the side to move while a game is running
func (h *CLIHandler) getPrompt() string {
	prompt := "> "
	h.withGame(func(g *game.Game) error {
		if !g.Status().IsOver() {
			prompt = fmt.Sprintf("[%s]> ", g.NextTurn())
		}
		return nil
	})
	return prompt
}

// withGame runs fn on the current game under its lock
func (h *CLIHandler) withGame(fn func(g *game.Game) error) error {
	if h.gameID == "" {
		return errNoGame
	}
	return h.svc.WithGame(h.gameID, fn)
}

// Handles user commands - returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	var err error

	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:

	case cli.CmdNew:
		err = h.startGame("")

	case cli.CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		err = h.startGame(strings.Join(cmd.Args, " "))

	case cli.CmdMove:
		err = h.move(cmd.Args)

	case cli.CmdUndo, cli.CmdRedo:
		err = h.undoRedo(cmd)

	case cli.CmdResign:
		err = h.resign()

	case cli.CmdDraw:
		err = h.draw(cmd.Args)

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err = h.view.SetTheme(theme); err == nil {
			h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
			h.showBoard()
		}

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHistory:
		err = h.withGame(func(g *game.Game) error {
			h.view.ShowGameHistory(g)
			return nil
		})

	case cli.CmdPGN:
		err = h.pgn()

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	if err != nil {
		h.view.ShowError(err)
	}
	return true
}

// startGame replaces the current game with a fresh one from fen
func (h *CLIHandler) startGame(fen string) error {
	g, err := h.svc.CreateGame(h.white, h.black, fen, false)
	if err != nil {
		return fmt.Errorf("could not start the game: %w", err)
	}
	if h.gameID != "" {
		if err := h.svc.DeleteGame(h.gameID, nil); err != nil {
			h.log.WithError(err).WithField("game", h.gameID).Warn("could not drop the previous game")
		}
	}
	h.gameID = g.ID()

	h.view.ShowMessage("Game started.")
	h.showBoard()
	return h.withGame(func(g *game.Game) error {
		h.view.ShowStatus(g.Status())
		return nil
	})
}

// move accepts "e2e4" or the two squares as separate arguments
func (h *CLIHandler) move(args []string) error {
	var from, to string
	switch {
	case len(args) == 1 && len(args[0]) == 4:
		from, to = args[0][:2], args[0][2:]
	case len(args) == 2:
		from, to = args[0], args[1]
	default:
		return fmt.Errorf("unknown command %q, type 'help' for commands", strings.Join(args, " "))
	}
	if h.gameID == "" {
		return errNoGame
	}

	result, err := h.svc.MakeMove(h.gameID, strings.ToLower(from), strings.ToLower(to), nil)
	if err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	h.view.ShowMove(result)
	h.showBoard()
	h.view.ShowStatus(result.Status)
	return nil
}

func (h *CLIHandler) undoRedo(cmd *cli.Command) error {
	if h.gameID == "" {
		return errNoGame
	}

	verb, done := "undo", "undone"
	if cmd.Type == cli.CmdRedo {
		verb, done = "redo", "redone"
	}

	count := 1
	if len(cmd.Args) > 0 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count, usage: %s [count]", verb)
		}
		count = n
	}

	var err error
	if cmd.Type == cli.CmdRedo {
		err = h.svc.Redo(h.gameID, count, nil)
	} else {
		err = h.svc.Undo(h.gameID, count, nil)
	}
	if err != nil {
		return err
	}

	noun := "move"
	if count > 1 {
		noun = "moves"
	}
	h.view.ShowMessage(fmt.Sprintf("%d %s %s", count, noun, done))
	h.showBoard()
	return h.withGame(func(g *game.Game) error {
		h.view.ShowStatus(g.Status())
		return nil
	})
}

// resign ends the game in favour of the side not to move
func (h *CLIHandler) resign() error {
	var color core.Color
	if err := h.withGame(func(g *game.Game) error {
		color = g.NextTurn()
		return nil
	}); err != nil {
		return err
	}
	if err := h.svc.Resign(h.gameID, color, nil); err != nil {
		return err
	}
	return h.withGame(func(g *game.Game) error {
		h.view.ShowStatus(g.Status())
		return nil
	})
}

// draw offers for the side to move; accept and decline answer the open offer
func (h *CLIHandler) draw(args []string) error {
	action := "offer"
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	var color core.Color
	if err := h.withGame(func(g *game.Game) error {
		color = g.NextTurn()
		if action != "offer" && g.DrawOffer() != core.ColorNone {
			color = core.OppositeColor(g.DrawOffer())
		}
		return nil
	}); err != nil {
		return err
	}

	if err := h.svc.Draw(h.gameID, color, action, nil); err != nil {
		return err
	}

	switch action {
	case "offer":
		h.view.ShowMessage(fmt.Sprintf("%s offers a draw: 'draw accept' or 'draw decline'", color.Name()))
	case "decline":
		h.view.ShowMessage(fmt.Sprintf("%s declines the draw", color.Name()))
	default:
		return h.withGame(func(g *game.Game) error {
			h.view.ShowStatus(g.Status())
			return nil
		})
	}
	return nil
}

func (h *CLIHandler) pgn() error {
	var (
		fen, result string
		moves       []string
		tags        []notation.Tag
	)
	if err := h.withGame(func(g *game.Game) error {
		fen, moves, result = g.InitialFEN(), g.Moves(), g.Status().Result()
		tags = notation.GameTags(g.Player(core.ColorWhite).Name, g.Player(core.ColorBlack).Name, g.CreatedAt())
		return nil
	}); err != nil {
		return err
	}

	pgn, err := notation.PGN(fen, moves, tags, result)
	if err != nil {
		return err
	}
	h.view.ShowMessage(pgn)
	return nil
}

func (h *CLIHandler) showBoard() {
	h.withGame(func(g *game.Game) error {
		h.view.DisplayBoard(g.Board())
		return nil
	})
}

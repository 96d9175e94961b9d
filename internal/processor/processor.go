package processor

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/sirupsen/logrus"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/engine"
	"chessrules/internal/game"
	"chessrules/internal/notation"
	"chessrules/internal/service"
	"chessrules/internal/storage"
)

var (
	ErrNotSeated   = errors.New("not a player in this game")
	ErrNotYourSeat = errors.New("acting for the other side")
)

// Processor handles command execution on top of the game service. It owns
// the translation from domain errors to API error codes and the seat checks
// of protected games.
type Processor struct {
	svc *service.Service
	log *logrus.Entry
}

func New(svc *service.Service) *Processor {
	return &Processor{
		svc: svc,
		log: logrus.WithField("component", "processor"),
	}
}

// Service exposes the underlying service for transports that long-poll
func (p *Processor) Service() *service.Service {
	return p.svc
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdRestoreGame:
		return p.handleRestoreGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdRedoMove:
		return p.handleRedoMove(cmd)
	case CmdResign:
		return p.handleResign(cmd)
	case CmdDraw:
		return p.handleDraw(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetPGN:
		return p.handleGetPGN(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isSafe rejects control characters before text reaches a parser
func isSafe(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if !isSafe(args.FEN) {
		return p.errorResponse("FEN contains control characters", core.ErrInvalidFEN)
	}

	var (
		g      *game.Game
		tokens core.SeatTokens
		err    error
	)
	if args.Protected {
		g, tokens, err = p.svc.CreateProtectedGame(args.White, args.Black, args.FEN)
	} else {
		g, err = p.svc.CreateGame(args.White, args.Black, args.FEN, false)
	}
	if err != nil {
		return p.failure(err)
	}

	g.Lock()
	resp := buildGameResponse(g)
	g.Unlock()
	if args.Protected {
		resp.Tokens = &tokens
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.respond(cmd.GameID)
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID, seated(cmd.PlayerID)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true}
}

func (p *Processor) handleRestoreGame(cmd Command) ProcessorResponse {
	if _, err := p.svc.RestoreGame(cmd.GameID); err != nil {
		return p.failure(err)
	}
	return p.respond(cmd.GameID)
}

func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if !isSafe(args.From) || !isSafe(args.To) {
		return p.errorResponse("invalid square", core.ErrInvalidSquare)
	}

	var resp core.GameResponse
	guard := seatedAs(cmd.PlayerID, func(g *game.Game) core.Color { return g.NextTurn() })
	if _, err := p.svc.MakeMove(cmd.GameID, args.From, args.To, guard, snapshot(&resp)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.UndoRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	var resp core.GameResponse
	if err := p.svc.Undo(cmd.GameID, args.Count, seated(cmd.PlayerID), snapshot(&resp)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleRedoMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.RedoRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	var resp core.GameResponse
	if err := p.svc.Redo(cmd.GameID, args.Count, seated(cmd.PlayerID), snapshot(&resp)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleResign(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ResignRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	color, err := core.ParseColor(args.Color)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	var resp core.GameResponse
	if err := p.svc.Resign(cmd.GameID, color, seatedAs(cmd.PlayerID, fixed(color)), snapshot(&resp)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleDraw(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.DrawRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	color, err := core.ParseColor(args.Color)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	var resp core.GameResponse
	if err := p.svc.Draw(cmd.GameID, color, args.Action, seatedAs(cmd.PlayerID, fixed(color)), snapshot(&resp)); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.WithGame(cmd.GameID, func(g *game.Game) error {
		resp = core.BoardResponse{
			FEN:   g.CurrentFEN(),
			Board: g.ASCII(),
		}
		return nil
	})
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleGetPGN(cmd Command) ProcessorResponse {
	var (
		fen, result string
		moves       []string
		tags        []notation.Tag
	)
	err := p.svc.WithGame(cmd.GameID, func(g *game.Game) error {
		fen, moves, result = g.InitialFEN(), g.Moves(), g.Status().Result()
		tags = notation.GameTags(g.Player(core.ColorWhite).Name, g.Player(core.ColorBlack).Name, g.CreatedAt())
		return nil
	})
	if err != nil {
		return p.failure(err)
	}

	// Rendering replays the moves, so it happens outside the game lock
	pgn, err := notation.PGN(fen, moves, tags, result)
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: core.PGNResponse{PGN: pgn}}
}

// snapshot fills resp from the game as a change left it, under the same lock
func snapshot(resp *core.GameResponse) service.Hook {
	return func(g *game.Game) { *resp = buildGameResponse(g) }
}

// respond snapshots a game into a response
func (p *Processor) respond(gameID string) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.WithGame(gameID, func(g *game.Game) error {
		resp = buildGameResponse(g)
		return nil
	})
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

// buildGameResponse constructs standard game response. The caller holds the game lock.
func buildGameResponse(g *game.Game) core.GameResponse {
	st := g.Status()
	resp := core.GameResponse{
		GameID: g.ID(),
		FEN:    g.CurrentFEN(),
		Turn:   g.NextTurn().String(),
		State:  st.State.String(),
		Result: st.Result(),
		Moves:  g.Moves(),
		Players: core.PlayersResponse{
			White: g.Player(core.ColorWhite),
			Black: g.Player(core.ColorBlack),
		},
		Protected: g.Protected(),
		Version:   g.Version(),
	}
	if st.Side != core.ColorNone {
		resp.Side = st.Side.String()
	}
	if w := st.Winner(); w != core.ColorNone {
		resp.Winner = w.String()
	}
	if offer := g.DrawOffer(); offer != core.ColorNone {
		resp.DrawOffer = offer.String()
	}

	// Include last move if available
	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move.String(),
			PlayerColor: result.Player.String(),
			Piece:       result.Move.Piece.Kind.String(),
		}
		if result.Move.IsCapture() {
			resp.LastMove.Captured = result.Move.Captured.Kind.String()
		}
	}

	return resp
}

// seated admits any player of a protected game
func seated(playerID string) service.Guard {
	return seatedAs(playerID, nil)
}

// seatedAs admits the player of a protected game holding the seat chosen by
// want. Unprotected games admit everyone.
func seatedAs(playerID string, want func(*game.Game) core.Color) service.Guard {
	return func(g *game.Game) error {
		if !g.Protected() {
			return nil
		}
		color, ok := g.SeatOf(playerID)
		if !ok {
			return ErrNotSeated
		}
		if want != nil {
			if need := want(g); need != color {
				return fmt.Errorf("%w: token is for %s, not %s", ErrNotYourSeat, color.Name(), need.Name())
			}
		}
		return nil
	}
}

func fixed(color core.Color) func(*game.Game) core.Color {
	return func(*game.Game) core.Color { return color }
}

// failure maps a domain error to an API error code
func (p *Processor) failure(err error) ProcessorResponse {
	var code string
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrGameNotStored):
		code = core.ErrGameNotFound
	case errors.Is(err, ErrNotSeated), errors.Is(err, ErrNotYourSeat):
		code = core.ErrUnauthorized
	case errors.Is(err, engine.ErrGameOver):
		code = core.ErrGameOver
	case errors.Is(err, board.ErrMalformedCoordinate), errors.Is(err, board.ErrOutOfBounds):
		code = core.ErrInvalidSquare
	case errors.Is(err, board.ErrInvalidFEN):
		code = core.ErrInvalidFEN
	case engine.IsRejection(err):
		code = core.ErrInvalidMove
	case errors.Is(err, service.ErrStorageDisabled):
		code = core.ErrStorageDisabled
	case errors.Is(err, notation.ErrUnrepresentable),
		errors.Is(err, engine.ErrNothingToUndo), errors.Is(err, engine.ErrNothingToRedo),
		errors.Is(err, engine.ErrInvalidColor),
		errors.Is(err, game.ErrNoDrawOffer), errors.Is(err, game.ErrInvalidCount),
		errors.Is(err, game.ErrNotInThisGame), errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrNoSecret), errors.Is(err, service.ErrUnknownDrawAction):
		code = core.ErrInvalidRequest
	default:
		code = core.ErrInternalError
		p.log.WithError(err).Error("unclassified error")
	}
	return p.errorResponse(err.Error(), code)
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

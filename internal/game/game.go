package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/engine"
)

var (
	ErrNoDrawOffer   = errors.New("no draw offer to answer")
	ErrInvalidCount  = errors.New("invalid count")
	ErrNotInThisGame = errors.New("color is not a seat in this game")
)

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move   board.Move
	Player core.Color
	Status core.Status
}

// Game binds two players to one rules engine. The embedded mutex serializes
// every validate-and-commit sequence for this game; methods do not lock it
// themselves so callers can hold it across several calls.
type Game struct {
	sync.Mutex

	id         string
	engine     *engine.Engine
	players    map[core.Color]*core.Player
	drawOffer  core.Color
	lastResult *MoveResult
	createdAt  time.Time
	protected  bool

	// version increases on every state change, for long-poll clients
	version int
}

// New starts a game from fen, or from the standard position when fen is empty
func New(fen string, white, black *core.Player, protected bool) (*Game, error) {
	var (
		e   *engine.Engine
		err error
	)
	if fen == "" {
		e = engine.New()
	} else if e, err = engine.NewFromFEN(fen); err != nil {
		return nil, err
	}

	return &Game{
		id:     uuid.New().String(),
		engine: e,
		players: map[core.Color]*core.Player{
			core.ColorWhite: white,
			core.ColorBlack: black,
		},
		createdAt: time.Now().UTC(),
		protected: protected,
	}, nil
}

// Restored replaces the generated identity with a stored one
func (g *Game) Restored(id string, createdAt time.Time) *Game {
	g.id = id
	g.createdAt = createdAt
	return g
}

// RestoreEnding reapplies an agreed result that replaying the moves alone
// cannot reproduce. Results already implied by the position are ignored.
func (g *Game) RestoreEnding(result string) error {
	st := g.engine.Status()
	if st.IsOver() || result == "*" || result == "" {
		return nil
	}
	defer g.touch()
	switch result {
	case "1-0":
		return g.engine.Resign(core.ColorBlack)
	case "0-1":
		return g.engine.Resign(core.ColorWhite)
	case "1/2-1/2":
		return g.engine.AgreeDraw()
	}
	return fmt.Errorf("unknown result %q", result)
}

func (g *Game) Version() int { return g.version }

func (g *Game) touch() { g.version++ }

func (g *Game) ID() string { return g.id }

func (g *Game) CreatedAt() time.Time { return g.createdAt }

func (g *Game) Protected() bool { return g.protected }

func (g *Game) Player(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) NextTurn() core.Color {
	return g.engine.Turn()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.engine.Turn()]
}

// SeatOf returns the color played by playerID
func (g *Game) SeatOf(playerID string) (core.Color, bool) {
	for color, p := range g.players {
		if p != nil && p.ID == playerID {
			return color, true
		}
	}
	return core.ColorNone, false
}

func (g *Game) Status() core.Status {
	return g.engine.Status()
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

// DrawOffer returns the color with an open draw offer, ColorNone if none
func (g *Game) DrawOffer() core.Color {
	return g.drawOffer
}

// Move parses two square tokens and plays them for the side to move. A parse
// failure or a rejected move leaves the game untouched.
func (g *Game) Move(from, to string) (*MoveResult, error) {
	src, err := board.ParseSquare(from)
	if err != nil {
		return nil, err
	}
	dst, err := board.ParseSquare(to)
	if err != nil {
		return nil, err
	}

	mover := g.engine.Turn()
	m, err := g.engine.ApplyMove(src, dst)
	if err != nil {
		return nil, err
	}

	// Any move answers an open offer by declining it
	g.drawOffer = core.ColorNone
	g.touch()
	g.lastResult = &MoveResult{Move: m, Player: mover, Status: g.engine.Status()}
	return g.lastResult, nil
}

// Undo takes back count moves. It stops at the first failure and reports how
// many moves were taken back.
func (g *Game) Undo(count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if g.engine.Agreed() {
		return 0, fmt.Errorf("%w: %s", engine.ErrGameOver, g.engine.Status())
	}
	if available := len(g.engine.History()); available < count {
		return 0, fmt.Errorf("%w: cannot undo %d moves, only %d played", engine.ErrNothingToUndo, count, available)
	}
	for i := 0; i < count; i++ {
		if _, err := g.engine.Undo(); err != nil {
			return i, err
		}
	}
	g.drawOffer = core.ColorNone
	g.lastResult = g.resultOfLast()
	g.touch()
	return count, nil
}

// Redo replays up to count undone moves
func (g *Game) Redo(count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if available := g.engine.CanRedo(); available < count {
		return 0, fmt.Errorf("%w: cannot redo %d moves, only %d undone", engine.ErrNothingToRedo, count, available)
	}
	for i := 0; i < count; i++ {
		if _, err := g.engine.Redo(); err != nil {
			return i, err
		}
	}
	g.lastResult = g.resultOfLast()
	g.touch()
	return count, nil
}

// Redoable returns how many undone moves can be replayed
func (g *Game) Redoable() int {
	return g.engine.CanRedo()
}

func (g *Game) resultOfLast() *MoveResult {
	history := g.engine.History()
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	return &MoveResult{Move: last, Player: last.Piece.Color, Status: g.engine.Status()}
}

func (g *Game) Resign(color core.Color) error {
	if err := g.seat(color); err != nil {
		return err
	}
	if err := g.engine.Resign(color); err != nil {
		return err
	}
	g.drawOffer = core.ColorNone
	g.touch()
	return nil
}

// OfferDraw records an offer by color; the opponent may accept or decline it
func (g *Game) OfferDraw(color core.Color) error {
	if err := g.seat(color); err != nil {
		return err
	}
	if st := g.engine.Status(); st.IsOver() {
		return fmt.Errorf("%w: %s", engine.ErrGameOver, st)
	}
	g.drawOffer = color
	g.touch()
	return nil
}

func (g *Game) AcceptDraw(color core.Color) error {
	if err := g.seat(color); err != nil {
		return err
	}
	if g.drawOffer == core.ColorNone || g.drawOffer == color {
		return fmt.Errorf("%w: %s cannot accept", ErrNoDrawOffer, color.Name())
	}
	if err := g.engine.AgreeDraw(); err != nil {
		return err
	}
	g.drawOffer = core.ColorNone
	g.touch()
	return nil
}

func (g *Game) DeclineDraw(color core.Color) error {
	if err := g.seat(color); err != nil {
		return err
	}
	if g.drawOffer == core.ColorNone || g.drawOffer == color {
		return fmt.Errorf("%w: %s cannot decline", ErrNoDrawOffer, color.Name())
	}
	g.drawOffer = core.ColorNone
	g.touch()
	return nil
}

func (g *Game) seat(color core.Color) error {
	if color != core.ColorWhite && color != core.ColorBlack {
		return fmt.Errorf("%w: %s", ErrNotInThisGame, color)
	}
	return nil
}

// Moves returns the history as coordinate pairs
func (g *Game) Moves() []string {
	history := g.engine.History()
	moves := make([]string, 0, len(history))
	for _, m := range history {
		moves = append(moves, m.String())
	}
	return moves
}

func (g *Game) History() []board.Move {
	return g.engine.History()
}

func (g *Game) InitialFEN() string {
	return g.engine.InitialFEN()
}

func (g *Game) CurrentFEN() string {
	return g.engine.FEN()
}

func (g *Game) PieceAt(sq board.Square) (board.Piece, bool) {
	return g.engine.PieceAt(sq)
}

// Board returns a copy of the current position
func (g *Game) Board() board.Board {
	return g.engine.Board()
}

func (g *Game) ASCII() string {
	b := g.engine.Board()
	return b.ToASCII()
}

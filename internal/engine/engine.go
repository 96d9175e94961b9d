package engine

import (
	"fmt"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

// Candidate is a move that passed legality for one specific position. It can
// be committed only while that position is current.
type Candidate struct {
	From     board.Square
	To       board.Square
	Piece    board.Piece
	Captured board.Piece

	generation uint64
}

func (c Candidate) String() string {
	return c.From.String() + c.To.String()
}

func (c Candidate) move() board.Move {
	return board.Move{From: c.From, To: c.To, Piece: c.Piece, Captured: c.Captured}
}

// Engine owns one board and is the only thing allowed to mutate it. It is not
// safe for concurrent use; callers sharing a game serialize access themselves.
type Engine struct {
	board   board.Board
	start   board.FENState
	history []board.Move
	redo    []board.Move

	// ending holds a status reached by agreement rather than by position
	ending *core.Status
	status core.Status

	// generation changes whenever the position does, invalidating candidates
	generation uint64
}

// New returns an engine at the standard starting position, White to move
func New() *Engine {
	e := &Engine{
		board: *board.StartingPosition(),
		start: board.FENState{Turn: core.ColorWhite, Fullmove: 1},
	}
	e.refresh()
	return e
}

// NewFromFEN loads a position. The side not to move must not be in check,
// otherwise its king could be captured.
func NewFromFEN(fen string) (*Engine, error) {
	b, st, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	idle := core.OppositeColor(st.Turn)
	if king, _ := b.FindKing(idle); b.IsAttacked(king, st.Turn) {
		return nil, fmt.Errorf("%w: %s is in check but not to move", board.ErrInvalidFEN, idle.Name())
	}

	e := &Engine{board: *b, start: st}
	e.refresh()
	return e, nil
}

// Turn derives the side to move from the starting side and the move count
func (e *Engine) Turn() core.Color {
	if len(e.history)%2 == 0 {
		return e.start.Turn
	}
	return core.OppositeColor(e.start.Turn)
}

func (e *Engine) Status() core.Status {
	return e.status
}

func (e *Engine) PieceAt(sq board.Square) (board.Piece, bool) {
	return e.board.PieceAt(sq)
}

// Board returns a copy of the current position
func (e *Engine) Board() board.Board {
	return e.board
}

// History returns the applied moves in order
func (e *Engine) History() []board.Move {
	out := make([]board.Move, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) CanRedo() int {
	return len(e.redo)
}

// InCheck reports whether the king of color is attacked in the current position
func (e *Engine) InCheck(color core.Color) bool {
	return inCheck(&e.board, color)
}

// IsLegalMove checks a move for mover against the current position without
// changing it. The king-safety test runs on a value copy of the board.
func (e *Engine) IsLegalMove(from, to board.Square, mover core.Color) error {
	_, err := e.check(&e.board, from, to, mover)
	return err
}

func (e *Engine) check(b *board.Board, from, to board.Square, mover core.Color) (Candidate, error) {
	if !from.Valid() || !to.Valid() {
		return Candidate{}, fmt.Errorf("%w: %s%s", board.ErrOutOfBounds, from, to)
	}

	piece, ok := b.PieceAt(from)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: %s", ErrNoPieceAtOrigin, from)
	}
	if piece.Color != mover {
		return Candidate{}, fmt.Errorf("%w: %s on %s belongs to %s", ErrNotYourPiece, piece, from, piece.Color.Name())
	}
	if !piece.PseudoLegal(from, to, b) {
		return Candidate{}, fmt.Errorf("%w: %s %s to %s", ErrPseudoIllegalGeometry, piece.Kind, from, to)
	}

	captured, _ := b.PieceAt(to)
	c := Candidate{From: from, To: to, Piece: piece, Captured: captured, generation: e.generation}

	scratch := *b
	scratch.Apply(c.move())
	if inCheck(&scratch, mover) {
		return Candidate{}, fmt.Errorf("%w: %s%s", ErrLeavesKingInCheck, from, to)
	}
	return c, nil
}

// LegalMovesFor enumerates every own piece against all 64 destinations
func (e *Engine) LegalMovesFor(color core.Color) []Candidate {
	var moves []Candidate
	e.eachLegal(color, func(c Candidate) bool {
		moves = append(moves, c)
		return true
	})
	return moves
}

func (e *Engine) hasLegalMove(color core.Color) bool {
	found := false
	e.eachLegal(color, func(Candidate) bool {
		found = true
		return false
	})
	return found
}

// eachLegal calls fn for each legal move until fn returns false
func (e *Engine) eachLegal(color core.Color, fn func(Candidate) bool) {
	targets := board.AllSquares()
	for _, from := range e.board.Pieces(color) {
		for _, to := range targets {
			c, err := e.check(&e.board, from, to, color)
			if err != nil {
				continue
			}
			if !fn(c) {
				return
			}
		}
	}
}

// Validate checks a move for the side to move and returns a candidate for Commit
func (e *Engine) Validate(from, to board.Square) (Candidate, error) {
	if e.status.IsOver() {
		return Candidate{}, fmt.Errorf("%w: %s", ErrGameOver, e.status)
	}
	return e.check(&e.board, from, to, e.Turn())
}

// Commit applies a candidate from Validate. Legality is not re-run: a candidate
// built elsewhere or for an earlier position is refused with ErrIllegalMove.
func (e *Engine) Commit(c Candidate) (board.Move, error) {
	if c.generation == 0 || c.generation != e.generation || c.Piece.Color != e.Turn() {
		return board.Move{}, fmt.Errorf("%w: %s was not validated for this position", ErrIllegalMove, c)
	}
	if e.status.IsOver() {
		return board.Move{}, fmt.Errorf("%w: %s", ErrGameOver, e.status)
	}

	m := c.move()
	e.board.Apply(m)
	e.history = append(e.history, m)
	e.redo = e.redo[:0]
	e.refresh()
	return m, nil
}

// ApplyMove validates and commits in one step
func (e *Engine) ApplyMove(from, to board.Square) (board.Move, error) {
	c, err := e.Validate(from, to)
	if err != nil {
		return board.Move{}, err
	}
	return e.Commit(c)
}

// Undo takes back the last move. A resignation or agreed draw is final and
// refuses undo whatever the history holds.
func (e *Engine) Undo() (board.Move, error) {
	if e.ending != nil {
		return board.Move{}, fmt.Errorf("%w: %s", ErrGameOver, e.status)
	}
	if len(e.history) == 0 {
		return board.Move{}, ErrNothingToUndo
	}
	m := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.board.Revert(m)
	e.redo = append(e.redo, m)
	e.refresh()
	return m, nil
}

// Redo replays the most recently undone move
func (e *Engine) Redo() (board.Move, error) {
	if len(e.redo) == 0 {
		return board.Move{}, ErrNothingToRedo
	}
	if e.status.IsOver() {
		return board.Move{}, fmt.Errorf("%w: %s", ErrGameOver, e.status)
	}
	m := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.board.Apply(m)
	e.history = append(e.history, m)
	e.refresh()
	return m, nil
}

// Resign ends the game in favor of the opponent of color
func (e *Engine) Resign(color core.Color) error {
	if color != core.ColorWhite && color != core.ColorBlack {
		return fmt.Errorf("%w %q", ErrInvalidColor, color)
	}
	return e.end(core.Status{State: core.StateResigned, Side: color})
}

// Agreed reports whether the game ended by resignation or agreement
func (e *Engine) Agreed() bool {
	return e.ending != nil
}

// AgreeDraw ends the game as a draw
func (e *Engine) AgreeDraw() error {
	return e.end(core.Status{State: core.StateDraw})
}

func (e *Engine) end(st core.Status) error {
	if e.status.IsOver() {
		return fmt.Errorf("%w: %s", ErrGameOver, e.status)
	}
	e.ending = &st
	e.redo = e.redo[:0]
	e.refresh()
	return nil
}

// Halfmove counts plies since the last capture or pawn move
func (e *Engine) Halfmove() int {
	n := 0
	for i := len(e.history) - 1; i >= 0; i-- {
		m := e.history[i]
		if m.IsCapture() || m.Piece.Kind == board.Pawn {
			return n
		}
		n++
	}
	return e.start.Halfmove + n
}

// Fullmove is the FEN move number, incremented after each Black move
func (e *Engine) Fullmove() int {
	plies := len(e.history)
	if e.start.Turn == core.ColorBlack {
		return e.start.Fullmove + (plies+1)/2
	}
	return e.start.Fullmove + plies/2
}

// FEN writes the current position
func (e *Engine) FEN() string {
	return e.board.FEN(board.FENState{
		Turn:     e.Turn(),
		Halfmove: e.Halfmove(),
		Fullmove: e.Fullmove(),
	})
}

// InitialFEN writes the position the engine was created with
func (e *Engine) InitialFEN() string {
	b := e.board
	for i := len(e.history) - 1; i >= 0; i-- {
		b.Revert(e.history[i])
	}
	return b.FEN(e.start)
}

// refresh reclassifies the position and invalidates outstanding candidates
func (e *Engine) refresh() {
	e.generation++
	if e.ending != nil {
		e.status = *e.ending
		return
	}
	e.status = e.classify()
}

// classify computes status from scratch for the side to move
func (e *Engine) classify() core.Status {
	p := e.Turn()
	checked := inCheck(&e.board, p)
	escape := e.hasLegalMove(p)

	switch {
	case checked && !escape:
		return core.Status{State: core.StateCheckmate, Side: p}
	case !checked && !escape:
		return core.Status{State: core.StateStalemate}
	case checked:
		return core.Status{State: core.StateCheck, Side: p}
	default:
		return core.Active()
	}
}

func inCheck(b *board.Board, color core.Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return true
	}
	return b.IsAttacked(king, core.OppositeColor(color))
}

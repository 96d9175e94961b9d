package board

import (
	"fmt"
	"strings"

	"chessrules/internal/core"
)

// Board is an 8x8 grid of optional pieces. It is a plain value: copying a
// Board yields an independent scratch board.
type Board struct {
	squares [Size][Size]Piece
}

// New returns an empty board
func New() *Board {
	return &Board{}
}

// StartingPosition returns the standard initial setup
func StartingPosition() *Board {
	b := New()
	back := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c := 0; c < Size; c++ {
		b.squares[0][c] = NewPiece(core.ColorBlack, back[c])
		b.squares[1][c] = NewPiece(core.ColorBlack, Pawn)
		b.squares[6][c] = NewPiece(core.ColorWhite, Pawn)
		b.squares[7][c] = NewPiece(core.ColorWhite, back[c])
	}
	return b
}

// Clone returns an independent copy
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

func (b *Board) Place(sq Square, p Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: %d,%d", ErrOutOfBounds, sq.Row, sq.Col)
	}
	b.squares[sq.Row][sq.Col] = p
	return nil
}

func (b *Board) Clear(sq Square) {
	if sq.Valid() {
		b.squares[sq.Row][sq.Col] = Piece{}
	}
}

// PieceAt returns the piece on a square, false when empty or off the board
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.squares[sq.Row][sq.Col]
	return p, !p.IsZero()
}

// Apply moves the piece from origin to destination, replacing whatever stood there.
// No legality check is made.
func (b *Board) Apply(m Move) {
	p := b.squares[m.From.Row][m.From.Col]
	b.squares[m.From.Row][m.From.Col] = Piece{}
	b.squares[m.To.Row][m.To.Col] = p
}

// Revert undoes Apply from the move's snapshots
func (b *Board) Revert(m Move) {
	b.squares[m.From.Row][m.From.Col] = m.Piece
	b.squares[m.To.Row][m.To.Col] = m.Captured
}

// FindKing scans for the king of a color
func (b *Board) FindKing(color core.Color) (Square, bool) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.Kind == King && p.Color == color {
				return Square{Row: r, Col: c}, true
			}
		}
	}
	return Square{}, false
}

// IsAttacked reports whether any piece of the given color attacks the target.
// Every square is rescanned on each call.
func (b *Board) IsAttacked(target Square, by core.Color) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.IsZero() || p.Color != by {
				continue
			}
			if p.Attacks(Square{Row: r, Col: c}, target, b) {
				return true
			}
		}
	}
	return false
}

// Pieces lists the squares occupied by a color, a8 to h1
func (b *Board) Pieces(color core.Color) []Square {
	var squares []Square
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if !p.IsZero() && p.Color == color {
				squares = append(squares, Square{Row: r, Col: c})
			}
		}
	}
	return squares
}

// Count returns how many pieces of a color and kind are on the board
func (b *Board) Count(color core.Color, kind Kind) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := b.squares[r][c]; p.Color == color && p.Kind == kind {
				n++
			}
		}
	}
	return n
}

// pathClear checks every square strictly between two squares on a line or diagonal
func (b *Board) pathClear(from, to Square) bool {
	dr, dc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	r, c := from.Row+dr, from.Col+dc
	for r != to.Row || c != to.Col {
		if !b.squares[r][c].IsZero() {
			return false
		}
		r += dr
		c += dc
	}
	return true
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < Size; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.IsZero() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", p.Symbol()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

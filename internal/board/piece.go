package board

import (
	"unicode"

	"chessrules/internal/core"
)

type Kind byte

const (
	NoKind Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindSymbols = map[Kind]byte{
	Pawn:   'p',
	Rook:   'r',
	Knight: 'n',
	Bishop: 'b',
	Queen:  'q',
	King:   'k',
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Rook:
		return "Rook"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece is a colored piece. The zero value means an empty square.
type Piece struct {
	Color core.Color
	Kind  Kind
}

func NewPiece(color core.Color, kind Kind) Piece {
	return Piece{Color: color, Kind: kind}
}

func (p Piece) IsZero() bool {
	return p.Kind == NoKind
}

// Symbol returns the FEN letter, upper case for white
func (p Piece) Symbol() byte {
	s, ok := kindSymbols[p.Kind]
	if !ok {
		return 0
	}
	if p.Color == core.ColorWhite {
		return byte(unicode.ToUpper(rune(s)))
	}
	return s
}

func (p Piece) String() string {
	if p.IsZero() {
		return "none"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// PieceFromSymbol parses a FEN letter
func PieceFromSymbol(s byte) (Piece, bool) {
	lower := byte(unicode.ToLower(rune(s)))
	for kind, sym := range kindSymbols {
		if sym == lower {
			color := core.ColorBlack
			if s != lower {
				color = core.ColorWhite
			}
			return Piece{Color: color, Kind: kind}, true
		}
	}
	return Piece{}, false
}

// forward is the row delta of a pawn advance
func forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

// pawnStartRow is the row pawns of a color start on
func pawnStartRow(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

// PseudoLegal reports whether the piece can go from one square to another by its
// movement rules, without regard to the safety of its own king.
func (p Piece) PseudoLegal(from, to Square, b *Board) bool {
	if target, ok := b.PieceAt(to); ok && target.Color == p.Color {
		return false
	}
	return p.reaches(from, to, b, false)
}

// Attacks reports whether the piece bears on a square. Pawns attack diagonally
// only and the content of the target square is not considered.
func (p Piece) Attacks(from, to Square, b *Board) bool {
	return p.reaches(from, to, b, true)
}

func (p Piece) reaches(from, to Square, b *Board, attack bool) bool {
	if p.IsZero() || !from.Valid() || !to.Valid() || from == to {
		return false
	}
	dr, dc := to.Row-from.Row, to.Col-from.Col

	switch p.Kind {
	case Pawn:
		if attack {
			return dr == forward(p.Color) && abs(dc) == 1
		}
		return p.pawnMove(from, to, dr, dc, b)
	case Knight:
		return (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	case Rook:
		return isStraight(dr, dc) && b.pathClear(from, to)
	case Bishop:
		return isDiagonal(dr, dc) && b.pathClear(from, to)
	case Queen:
		return (isStraight(dr, dc) || isDiagonal(dr, dc)) && b.pathClear(from, to)
	}
	return false
}

func (p Piece) pawnMove(from, to Square, dr, dc int, b *Board) bool {
	fwd := forward(p.Color)
	_, occupied := b.PieceAt(to)

	switch {
	case dc == 0 && dr == fwd:
		return !occupied
	case dc == 0 && dr == 2*fwd:
		if from.Row != pawnStartRow(p.Color) || occupied {
			return false
		}
		_, blocked := b.PieceAt(Square{Row: from.Row + fwd, Col: from.Col})
		return !blocked
	case abs(dc) == 1 && dr == fwd:
		// Self-capture is rejected before geometry, so any occupant is an enemy
		return occupied
	}
	return false
}

func isStraight(dr, dc int) bool {
	return (dr == 0) != (dc == 0)
}

func isDiagonal(dr, dc int) bool {
	return dr != 0 && abs(dr) == abs(dc)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

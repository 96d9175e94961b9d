package board

import (
	"errors"
	"fmt"
)

const Size = 8

var (
	ErrOutOfBounds         = errors.New("square out of bounds")
	ErrMalformedCoordinate = errors.New("malformed coordinate")
)

// Square addresses a cell. Row 0 is rank 8, column 0 is file a.
type Square struct {
	Row int
	Col int
}

func NewSquare(row, col int) (Square, error) {
	if !inBounds(row, col) {
		return Square{}, fmt.Errorf("%w: row %d, col %d", ErrOutOfBounds, row, col)
	}
	return Square{Row: row, Col: col}, nil
}

// ParseSquare reads "<file><rank>" such as "e2"
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q must be a file and a rank", ErrMalformedCoordinate, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, nil
}

// MustParseSquare is ParseSquare for literals known to be valid
func MustParseSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) String() string {
	if !s.Valid() {
		return "??"
	}
	return string([]byte{byte('a' + s.Col), byte('8' - s.Row)})
}

func (s Square) Valid() bool {
	return inBounds(s.Row, s.Col)
}

// Offset returns the square shifted by the given deltas and whether it is on the board
func (s Square) Offset(dRow, dCol int) (Square, bool) {
	n := Square{Row: s.Row + dRow, Col: s.Col + dCol}
	return n, n.Valid()
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// AllSquares lists the 64 squares from a8 to h1
func AllSquares() []Square {
	squares := make([]Square, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			squares = append(squares, Square{Row: r, Col: c})
		}
	}
	return squares
}

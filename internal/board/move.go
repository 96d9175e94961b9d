package board

import "fmt"

// Move records a transition with pre-move snapshots of the moved and captured
// pieces. Captured is the zero Piece when the destination was empty.
type Move struct {
	From     Square
	To       Square
	Piece    Piece
	Captured Piece
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsZero()
}

// String returns the coordinate pair, e.g. "e2e4"
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove reads a coordinate pair such as "e2e4" into its two squares
func ParseMove(s string) (Square, Square, error) {
	if len(s) != 4 {
		return Square{}, Square{}, fmt.Errorf("%w: move %q must be two squares", ErrMalformedCoordinate, s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Square{}, Square{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Square{}, Square{}, err
	}
	return from, to, nil
}

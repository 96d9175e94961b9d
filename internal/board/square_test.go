package board

import (
	"errors"
	"testing"
)

func TestSquareRoundTrip(t *testing.T) {
	for _, sq := range AllSquares() {
		text := sq.String()
		parsed, err := ParseSquare(text)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", text, err)
		}
		if parsed != sq {
			t.Errorf("ParseSquare(%q) = %+v, want %+v", text, parsed, sq)
		}
	}

	for file := byte('a'); file <= 'h'; file++ {
		for rank := byte('1'); rank <= '8'; rank++ {
			text := string([]byte{file, rank})
			sq, err := ParseSquare(text)
			if err != nil {
				t.Fatalf("ParseSquare(%q): %v", text, err)
			}
			if got := sq.String(); got != text {
				t.Errorf("serialize(parse(%q)) = %q", text, got)
			}
		}
	}
}

func TestParseSquareOrientation(t *testing.T) {
	tests := []struct {
		in       string
		row, col int
	}{
		{"a8", 0, 0},
		{"h8", 0, 7},
		{"a1", 7, 0},
		{"e2", 6, 4},
		{"e4", 4, 4},
	}
	for _, tt := range tests {
		sq, err := ParseSquare(tt.in)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.in, err)
		}
		if sq.Row != tt.row || sq.Col != tt.col {
			t.Errorf("ParseSquare(%q) = (%d,%d), want (%d,%d)", tt.in, sq.Row, sq.Col, tt.row, tt.col)
		}
	}
}

func TestParseSquareMalformed(t *testing.T) {
	for _, in := range []string{"", "e", "e22", "i1", "a0", "a9", "E2", "2e", "  "} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSquare(in)
			if !errors.Is(err, ErrMalformedCoordinate) {
				t.Errorf("ParseSquare(%q) error = %v, want ErrMalformedCoordinate", in, err)
			}
		})
	}
}

func TestNewSquareBounds(t *testing.T) {
	if _, err := NewSquare(0, 7); err != nil {
		t.Fatalf("NewSquare(0,7): %v", err)
	}
	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 8}, {9, 9}} {
		if _, err := NewSquare(rc[0], rc[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("NewSquare(%d,%d) error = %v, want ErrOutOfBounds", rc[0], rc[1], err)
		}
	}
}

func TestParseMove(t *testing.T) {
	from, to, err := ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if from.String() != "e2" || to.String() != "e4" {
		t.Errorf("ParseMove(e2e4) = %s %s", from, to)
	}
	if _, _, err := ParseMove("e2e"); !errors.Is(err, ErrMalformedCoordinate) {
		t.Errorf("ParseMove(e2e) error = %v", err)
	}
}

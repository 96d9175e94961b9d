package board

import (
	"testing"

	"chessrules/internal/core"
)

func sq(s string) Square { return MustParseSquare(s) }

func mustPlacement(t *testing.T, field string) *Board {
	t.Helper()
	b, err := ParsePlacement(field)
	if err != nil {
		t.Fatalf("ParsePlacement(%q): %v", field, err)
	}
	return b
}

func pseudo(b *Board, from, to string) bool {
	p, ok := b.PieceAt(sq(from))
	if !ok {
		return false
	}
	return p.PseudoLegal(sq(from), sq(to), b)
}

func TestPseudoLegalGeometry(t *testing.T) {
	// White: Ke1 Qd1 Ra1 Bc1 Ng1 pawns e2 d4; black: ke8 rook a5 pawn e5
	b := mustPlacement(t, "4k3/8/8/r3p3/3P4/8/4P3/R1BQK1N1")

	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"rook vertical clear", "a1", "a4", true},
		{"rook captures enemy", "a1", "a5", true},
		{"rook cannot pass enemy", "a1", "a6", false},
		{"rook horizontal blocked by bishop", "a1", "d1", false},
		{"rook no diagonal", "a1", "b2", false},
		{"bishop diagonal", "c1", "a3", true},
		{"bishop diagonal right", "c1", "e3", true},
		{"bishop no straight", "c1", "c3", false},
		{"queen diagonal blocked by own pawn", "d1", "h5", false},
		{"queen straight blocked by own pawn", "d1", "d5", false},
		{"queen straight", "d1", "d3", true},
		{"queen knight shape", "d1", "e3", false},
		{"knight L", "g1", "f3", true},
		{"knight onto own pawn", "g1", "e2", false},
		{"knight straight", "g1", "g3", false},
		{"king step", "e1", "f2", true},
		{"king two squares", "e1", "g1", false},
		{"king onto own queen", "e1", "d1", false},
		{"pawn single", "e2", "e3", true},
		{"pawn double", "e2", "e4", true},
		{"pawn triple", "e2", "e5", false},
		{"pawn diagonal empty", "e2", "f3", false},
		{"pawn advance", "d4", "d5", true},
		{"pawn captures diagonally", "d4", "e5", true},
		{"pawn backward", "d4", "d3", false},
		{"pawn double off start", "d4", "d6", false},
		{"zero length", "a1", "a1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pseudo(b, tt.from, tt.to); got != tt.want {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPseudoLegalQueenDiagonalBlocked(t *testing.T) {
	b := mustPlacement(t, "4k3/8/8/7p/8/8/4P3/3QK3")
	if pseudo(b, "d1", "h5") {
		t.Error("queen must not pass through e2")
	}
	b.Clear(sq("e2"))
	if !pseudo(b, "d1", "h5") {
		t.Error("queen should capture on h5 once e2 is empty")
	}
}

func TestPawnNeverCapturesStraight(t *testing.T) {
	b := mustPlacement(t, "4k3/8/8/8/4p3/4P3/8/4K3")
	if pseudo(b, "e3", "e4") {
		t.Error("white pawn captured straight ahead")
	}
	if pseudo(b, "e4", "e3") {
		t.Error("black pawn captured straight ahead")
	}
}

func TestPawnDoubleStep(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		from, to  string
		want      bool
	}{
		{"white from start", "4k3/8/8/8/8/8/4P3/4K3", "e2", "e4", true},
		{"black from start", "4k3/4p3/8/8/8/8/8/4K3", "e7", "e5", true},
		{"intermediate blocked", "4k3/8/8/8/8/4n3/4P3/4K3", "e2", "e4", false},
		{"destination blocked", "4k3/8/8/8/4n3/8/4P3/4K3", "e2", "e4", false},
		{"black intermediate blocked", "4k3/4p3/4N3/8/8/8/8/4K3", "e7", "e5", false},
		{"white after moving once", "4k3/8/8/8/8/4P3/8/4K3", "e3", "e5", false},
		{"black after moving once", "4k3/8/4p3/8/8/8/8/4K3", "e6", "e4", false},
		{"black pawn backward double", "4k3/8/8/8/8/8/4p3/K7", "e2", "e4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.placement)
			if got := pseudo(b, tt.from, tt.to); got != tt.want {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestKnightPathIndependence(t *testing.T) {
	// Knight on d4 fully surrounded by pawns of both colors
	b := mustPlacement(t, "4k3/8/8/2pPp3/2PNP3/2pPp3/8/4K3")
	for _, to := range []string{"b3", "b5", "c2", "c6", "e2", "e6", "f3", "f5"} {
		if !pseudo(b, "d4", to) {
			t.Errorf("boxed-in knight d4 -> %s rejected", to)
		}
	}
}

func TestSelfCaptureRejectedForAllKinds(t *testing.T) {
	// Each white piece has a white pawn on a square its geometry reaches
	tests := []struct {
		name      string
		placement string
		from, to  string
	}{
		{"pawn", "4k3/8/8/8/8/5P2/4P3/4K3", "e2", "f3"},
		{"rook", "4k3/8/8/8/8/8/P7/R3K3", "a1", "a2"},
		{"knight", "4k3/8/8/8/8/5P2/8/4K1N1", "g1", "f3"},
		{"bishop", "4k3/8/8/8/8/8/3P4/2B1K3", "c1", "d2"},
		{"queen", "4k3/8/8/8/8/8/3P4/3QK3", "d1", "d2"},
		{"king", "4k3/8/8/8/8/8/4P3/4K3", "e1", "e2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.placement)
			if pseudo(b, tt.from, tt.to) {
				t.Errorf("%s captured its own piece on %s", tt.name, tt.to)
			}
		})
	}
}

func TestPawnAttackGeometry(t *testing.T) {
	b := mustPlacement(t, "4k3/8/8/8/8/8/4P3/4K3")
	pawn, _ := b.PieceAt(sq("e2"))

	if !pawn.Attacks(sq("e2"), sq("d3"), b) || !pawn.Attacks(sq("e2"), sq("f3"), b) {
		t.Error("pawn must attack empty diagonals")
	}
	if pawn.Attacks(sq("e2"), sq("e3"), b) {
		t.Error("pawn does not attack straight ahead")
	}
	if pawn.Attacks(sq("e2"), sq("d1"), b) {
		t.Error("pawn does not attack backward")
	}
}

func TestPieceSymbols(t *testing.T) {
	for _, s := range []byte("PNBRQKpnbrqk") {
		p, ok := PieceFromSymbol(s)
		if !ok {
			t.Fatalf("PieceFromSymbol(%q) failed", s)
		}
		if p.Symbol() != s {
			t.Errorf("Symbol() = %q, want %q", p.Symbol(), s)
		}
	}
	if p, _ := PieceFromSymbol('Q'); p.Color != core.ColorWhite || p.Kind != Queen {
		t.Errorf("Q parsed as %v", p)
	}
	if _, ok := PieceFromSymbol('x'); ok {
		t.Error("x parsed as a piece")
	}
}

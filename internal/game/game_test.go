package game

import (
	"errors"
	"testing"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/engine"
)

func newGame(t *testing.T, fen string) *Game {
	t.Helper()
	white := core.NewPlayer(core.PlayerConfig{Name: "Ann"}, core.ColorWhite)
	black := core.NewPlayer(core.PlayerConfig{Name: "Bob"}, core.ColorBlack)
	g, err := New(fen, white, black, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestMove(t *testing.T) {
	g := newGame(t, "")
	res, err := g.Move("e2", "e4")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Player != core.ColorWhite || res.Move.String() != "e2e4" {
		t.Errorf("result = %+v", res)
	}
	if g.NextTurn() != core.ColorBlack || g.NextPlayer().Name != "Bob" {
		t.Errorf("next = %v %s", g.NextTurn(), g.NextPlayer().Name)
	}
	if g.LastResult() != res {
		t.Error("last result not recorded")
	}
}

func TestMoveRejections(t *testing.T) {
	g := newGame(t, "")
	fen := g.CurrentFEN()

	tests := []struct {
		from, to string
		want     error
	}{
		{"e9", "e4", board.ErrMalformedCoordinate},
		{"e2", "x4", board.ErrMalformedCoordinate},
		{"e3", "e4", engine.ErrNoPieceAtOrigin},
		{"e7", "e5", engine.ErrNotYourPiece},
		{"b1", "b3", engine.ErrPseudoIllegalGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.from+tt.to, func(t *testing.T) {
			if _, err := g.Move(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if g.CurrentFEN() != fen || g.NextTurn() != core.ColorWhite {
				t.Error("rejected move changed the game")
			}
		})
	}
}

func TestUndoRedoCounts(t *testing.T) {
	g := newGame(t, "")
	for _, m := range [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}} {
		if _, err := g.Move(m[0], m[1]); err != nil {
			t.Fatalf("Move %v: %v", m, err)
		}
	}

	if _, err := g.Undo(0); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("Undo(0) error = %v", err)
	}
	if _, err := g.Undo(4); !errors.Is(err, engine.ErrNothingToUndo) {
		t.Errorf("Undo(4) error = %v", err)
	}
	if n, err := g.Undo(2); err != nil || n != 2 {
		t.Fatalf("Undo(2) = %d, %v", n, err)
	}
	if got := g.Moves(); len(got) != 1 || got[0] != "e2e4" {
		t.Errorf("moves = %v", got)
	}
	if g.LastResult() == nil || g.LastResult().Move.String() != "e2e4" {
		t.Errorf("last result after undo = %+v", g.LastResult())
	}
	if _, err := g.Redo(3); !errors.Is(err, engine.ErrNothingToRedo) {
		t.Errorf("Redo(3) error = %v", err)
	}
	if n, err := g.Redo(2); err != nil || n != 2 {
		t.Fatalf("Redo(2) = %d, %v", n, err)
	}
	if len(g.Moves()) != 3 {
		t.Errorf("moves after redo = %v", g.Moves())
	}
}

func TestDrawAgreement(t *testing.T) {
	g := newGame(t, "")

	if err := g.AcceptDraw(core.ColorBlack); !errors.Is(err, ErrNoDrawOffer) {
		t.Errorf("accept without offer = %v", err)
	}
	if err := g.OfferDraw(core.ColorWhite); err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if err := g.AcceptDraw(core.ColorWhite); !errors.Is(err, ErrNoDrawOffer) {
		t.Errorf("accepting own offer = %v", err)
	}
	if err := g.DeclineDraw(core.ColorBlack); err != nil {
		t.Fatalf("DeclineDraw: %v", err)
	}
	if g.DrawOffer() != core.ColorNone {
		t.Error("offer still open after decline")
	}

	if err := g.OfferDraw(core.ColorBlack); err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if err := g.AcceptDraw(core.ColorWhite); err != nil {
		t.Fatalf("AcceptDraw: %v", err)
	}
	if st := g.Status(); st.State != core.StateDraw {
		t.Errorf("status = %v", st)
	}
	if err := g.OfferDraw(core.ColorWhite); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("offer after draw = %v", err)
	}
}

func TestMoveClearsDrawOffer(t *testing.T) {
	g := newGame(t, "")
	if err := g.OfferDraw(core.ColorBlack); err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if _, err := g.Move("e2", "e4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if g.DrawOffer() != core.ColorNone {
		t.Error("move did not clear the offer")
	}
}

func TestResign(t *testing.T) {
	g := newGame(t, "")
	if err := g.Resign(core.ColorNone); !errors.Is(err, ErrNotInThisGame) {
		t.Errorf("resign as none = %v", err)
	}
	if err := g.Resign(core.ColorWhite); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if st := g.Status(); st.Winner() != core.ColorBlack || st.Result() != "0-1" {
		t.Errorf("status = %+v", st)
	}
	if _, err := g.Move("e2", "e4"); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("move after resign = %v", err)
	}
}

func TestSeatOfAndFEN(t *testing.T) {
	fen := "4k3/8/8/8/8/8/4P3/4K3 b - - 3 12"
	g := newGame(t, fen)
	if g.InitialFEN() != fen || g.CurrentFEN() != fen {
		t.Errorf("fen = %q / %q", g.InitialFEN(), g.CurrentFEN())
	}
	if g.NextTurn() != core.ColorBlack {
		t.Errorf("turn = %v", g.NextTurn())
	}
	color, ok := g.SeatOf(g.Player(core.ColorWhite).ID)
	if !ok || color != core.ColorWhite {
		t.Errorf("SeatOf = %v %v", color, ok)
	}
	if _, ok := g.SeatOf("stranger"); ok {
		t.Error("stranger has a seat")
	}
	if _, err := New("bad fen", nil, nil, false); !errors.Is(err, board.ErrInvalidFEN) {
		t.Errorf("New(bad fen) = %v", err)
	}
}

func TestVersionAndRestoreEnding(t *testing.T) {
	g := newGame(t, "")
	v := g.Version()
	if _, err := g.Move("e2", "e4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := g.Move("e2", "e4"); err == nil {
		t.Fatal("replaying e2e4 should fail")
	}
	if g.Version() != v+1 {
		t.Errorf("version = %d, want %d", g.Version(), v+1)
	}

	if err := g.RestoreEnding("*"); err != nil || g.Status().IsOver() {
		t.Fatalf("RestoreEnding(*) = %v, status %v", err, g.Status())
	}
	if err := g.RestoreEnding("1/2-1/2"); err != nil {
		t.Fatalf("RestoreEnding: %v", err)
	}
	if g.Status().State != core.StateDraw {
		t.Errorf("status = %v, want draw", g.Status())
	}

	h := newGame(t, "")
	if err := h.RestoreEnding("0-1"); err != nil {
		t.Fatalf("RestoreEnding: %v", err)
	}
	if st := h.Status(); st.State != core.StateResigned || st.Side != core.ColorWhite {
		t.Errorf("status = %+v", st)
	}
	if err := newGame(t, "").RestoreEnding("2-0"); err == nil {
		t.Error("unknown result accepted")
	}
}

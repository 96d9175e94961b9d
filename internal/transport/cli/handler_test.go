package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/service"
)

// session plays a script of console lines and returns the output
func session(t *testing.T, script ...string) (string, *CLIHandler, *service.Service) {
	t.Helper()
	svc := service.New(nil, nil)
	t.Cleanup(func() { svc.Shutdown(time.Second) })

	var out bytes.Buffer
	input := strings.NewReader(strings.Join(script, "\n") + "\n")
	view := cli.New(cli.NewScannerReader(input, &out), &out)
	h := New(svc, view, core.PlayerConfig{Name: "Ann"}, core.PlayerConfig{Name: "Bob"})

	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), h, svc
}

func current(t *testing.T, h *CLIHandler, svc *service.Service) *game.Game {
	t.Helper()
	g, err := svc.GetGame(h.GameID())
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	return g
}

func TestFoolsMateSession(t *testing.T) {
	out, h, svc := session(t, "new", "f2f3", "e7 e5", "move g2 g4", "d8h4", "a2a3", "pgn")

	for _, want := range []string{
		"Game started.",
		"[w]> ",
		"[b]> ",
		"Game Over: checkmate, Black wins (0-1)",
		"Error: invalid move: game is over",
		"1. f3 e5 2. g4 Qh4# 0-1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if g := current(t, h, svc); len(g.Moves()) != 4 {
		t.Errorf("moves = %v", g.Moves())
	}
}

func TestRejectedMoveKeepsTurn(t *testing.T) {
	out, h, svc := session(t, "e2e4", "new", "e7e5", "e2e5", "b1b3", "z9z9", "e2")

	for _, want := range []string{
		"no active game",
		"Error: invalid move: not your piece",
		"Error: invalid move: piece cannot move that way",
		"Error: invalid move: malformed coordinate",
		`unknown command "e2"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	g := current(t, h, svc)
	if len(g.Moves()) != 0 || g.NextTurn() != core.ColorWhite {
		t.Errorf("rejected moves changed the game: %v", g.Moves())
	}
}

func TestUndoRedoResignDraw(t *testing.T) {
	out, h, svc := session(t,
		"new", "e2e4", "e7e5", "undo 2", "redo", "undo x",
		"draw", "draw decline", "draw", "draw accept", "undo",
		"new", "e2e4", "resign", "undo",
	)

	for _, want := range []string{
		"2 moves undone",
		"1 move redone",
		"invalid count, usage: undo [count]",
		"Black offers a draw",
		"White declines the draw",
		"Game Over: draw by agreement",
		"Game Over: Black resigned, White wins (1-0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "Error: game is over"); n != 2 {
		t.Errorf("undo after an agreed ending was refused %d times, want 2:\n%s", n, out)
	}
	if strings.Contains(out, "1 move undone") {
		t.Errorf("agreed ending was undone:\n%s", out)
	}
	g := current(t, h, svc)
	if st := g.Status(); st.State != core.StateResigned || st.Side != core.ColorBlack {
		t.Errorf("status = %+v", st)
	}
	if len(g.Moves()) != 1 {
		t.Errorf("moves = %v", g.Moves())
	}
}

func TestResumeAndSettings(t *testing.T) {
	out, h, svc := session(t,
		"resume not a fen", "resume 4k3/8/8/8/8/8/4P3/4K3 b - - 0 9",
		"color", "color neon", "color green", "verbose", "e8d7", "history", "help",
	)

	for _, want := range []string{
		"could not start the game",
		"Usage: color",
		"invalid theme: neon",
		"Color theme set to: green",
		"Verbose mode: true",
		"Black: King e8d7",
		"9. ... | e8d7",
		"Commands:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if g := current(t, h, svc); g.InitialFEN() != "4k3/8/8/8/8/8/4P3/4K3 b - - 0 9" {
		t.Errorf("initial FEN = %q", g.InitialFEN())
	}
}

func TestNewGameLogsFailedDrop(t *testing.T) {
	svc := service.New(nil, nil)
	t.Cleanup(func() { svc.Shutdown(time.Second) })

	var out bytes.Buffer
	view := cli.New(cli.NewScannerReader(strings.NewReader(""), &out), &out)
	h := New(svc, view, core.PlayerConfig{}, core.PlayerConfig{})
	logger, hook := test.NewNullLogger()
	h.log = logrus.NewEntry(logger)

	h.ProcessCommand(cli.ParseCommand("new"))
	first := h.GameID()
	h.ProcessCommand(cli.ParseCommand("new"))
	if len(hook.Entries) != 0 {
		t.Fatalf("unexpected log entries: %v", hook.AllEntries())
	}

	// The game vanishes behind the console's back
	if err := svc.DeleteGame(h.GameID(), nil); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	gone := h.GameID()
	h.ProcessCommand(cli.ParseCommand("new"))

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("last entry = %+v", entry)
	}
	if entry.Data["game"] != gone {
		t.Errorf("logged game = %v, want %s", entry.Data["game"], gone)
	}
	if h.GameID() == gone || h.GameID() == first {
		t.Errorf("console kept an old game %s", h.GameID())
	}
	if _, err := svc.GetGame(first); err == nil {
		t.Error("first game was not dropped")
	}
}

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  CommandType
		args  int
	}{
		{"new", CmdNew, 0},
		{"resume 8/8/8/8/8/8/8/4K2k w - - 0 1", CmdResume, 6},
		{"e2e4", CmdMove, 1},
		{"e2 e4", CmdMove, 2},
		{"move e2 e4", CmdMove, 2},
		{"undo 3", CmdUndo, 1},
		{"redo", CmdRedo, 0},
		{"resign", CmdResign, 0},
		{"draw accept", CmdDraw, 1},
		{"color brown", CmdColor, 1},
		{"VERBOSE", CmdVerbose, 0},
		{"history", CmdHistory, 0},
		{"pgn", CmdPGN, 0},
		{"?", CmdHelp, 0},
		{"exit", CmdQuit, 0},
		{"   ", CmdNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			if cmd.Type != tt.want || len(cmd.Args) != tt.args {
				t.Errorf("ParseCommand(%q) = %+v", tt.input, cmd)
			}
		})
	}
}

func TestGetCommandEOF(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScannerReader(strings.NewReader("new\n"), &out), &out)

	cmd, err := c.GetCommand("> ")
	if err != nil || cmd.Type != CmdNew {
		t.Fatalf("first = %+v, %v", cmd, err)
	}
	if cmd, err = c.GetCommand("> "); err != nil || cmd.Type != CmdQuit {
		t.Errorf("at EOF = %+v, %v", cmd, err)
	}
	if out.String() != "> > " {
		t.Errorf("prompts = %q", out.String())
	}
}

type failingReader struct{}

func (failingReader) ReadLine(string) (string, error) { return "", errors.New("broken") }

func TestGetCommandError(t *testing.T) {
	if _, err := New(failingReader{}, &bytes.Buffer{}).GetCommand("> "); err == nil {
		t.Error("read error swallowed")
	}
}

func TestDisplayBoard(t *testing.T) {
	var out bytes.Buffer
	c := New(nil, &out)

	c.DisplayBoard(*board.StartingPosition())
	plain := out.String()
	if !strings.Contains(plain, "8 r n b q k b n r  8") || !strings.Contains(plain, "1 R N B Q K B N R  1") {
		t.Errorf("plain board:\n%s", plain)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Error("escape codes with theme off")
	}

	if err := c.SetTheme("purple"); err == nil {
		t.Error("unknown theme accepted")
	}
	if err := c.SetTheme(ThemeBrown); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	out.Reset()
	c.DisplayBoard(*board.StartingPosition())
	if !strings.Contains(out.String(), "\x1b[48;5;230") || !strings.Contains(out.String(), "\x1b[48;5;94") {
		t.Errorf("themed board lacks square colours: %q", out.String())
	}
}

func TestShowGameHistory(t *testing.T) {
	white := core.NewPlayer(core.PlayerConfig{}, core.ColorWhite)
	black := core.NewPlayer(core.PlayerConfig{}, core.ColorBlack)
	g, err := game.New("4k3/8/8/8/8/8/4P3/4K3 b - - 0 1", white, black, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, m := range [][2]string{{"e8", "d8"}, {"e2", "e4"}, {"d8", "c8"}} {
		if _, err := g.Move(m[0], m[1]); err != nil {
			t.Fatalf("Move %v: %v", m, err)
		}
	}

	var out bytes.Buffer
	New(nil, &out).ShowGameHistory(g)
	for _, want := range []string{"1. ... | e8d8", "2. e2e4 | d8c8", "Game state: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("history missing %q:\n%s", want, out.String())
		}
	}
}

func TestShowMoveVerbose(t *testing.T) {
	var out bytes.Buffer
	c := New(nil, &out)
	result := &game.MoveResult{
		Move: board.Move{
			From:     board.MustParseSquare("d1"),
			To:       board.MustParseSquare("d8"),
			Piece:    board.NewPiece(core.ColorWhite, board.Queen),
			Captured: board.NewPiece(core.ColorBlack, board.Rook),
		},
		Player: core.ColorWhite,
	}

	c.ShowMove(result)
	if out.Len() != 0 {
		t.Errorf("quiet mode printed %q", out.String())
	}
	if !c.ToggleVerbose() {
		t.Fatal("verbose not enabled")
	}
	c.ShowMove(result)
	if got := strings.TrimSpace(out.String()); got != "White: Queen d1d8 takes Rook" {
		t.Errorf("verbose move = %q", got)
	}
}

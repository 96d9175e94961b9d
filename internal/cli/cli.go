package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove
	CmdUndo
	CmdRedo
	CmdResign
	CmdDraw
	CmdColor
	CmdVerbose
	CmdHistory
	CmdPGN
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader yields one line of input per call. io.EOF ends the session.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// scannerReader reads lines from a plain stream, echoing the prompt itself
type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
}

func NewScannerReader(input io.Reader, output io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(input), output: output}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.output, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

// themeColors holds 256-colour background codes for the two square shades
type themeColors struct {
	lightBg color.Attribute
	darkBg  color.Attribute
}

var themes = map[ColorTheme]themeColors{
	ThemeOff:   {},
	ThemeBrown: {lightBg: 230, darkBg: 94},  // Beige, brown
	ThemeGreen: {lightBg: 157, darkBg: 22},  // Light green, dark green
	ThemeGray:  {lightBg: 251, darkBg: 240}, // Light gray, dark gray
}

const bg256 = 48

// squareColor builds the style of one square. Board colours are forced on:
// the caller picks ThemeOff when the output is not a terminal.
func squareColor(bg color.Attribute, piece board.Piece) *color.Color {
	c := color.New(bg256, 5, bg)
	switch {
	case piece.IsZero():
	case piece.Color == core.ColorWhite:
		c.Add(color.FgHiWhite, color.Bold)
	default:
		c.Add(color.FgBlack)
	}
	c.EnableColor()
	return c
}

var (
	errorColor  = color.New(color.FgRed)
	noticeColor = color.New(color.FgYellow, color.Bold)
)

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads a command synchronously. End of input reads as quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	line, err := c.input.ReadLine(prompt)
	if errors.Is(err, io.EOF) {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}
	return ParseCommand(input), nil
}

func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "move", "m":
		return &Command{Type: CmdMove, Args: args}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "redo":
		return &Command{Type: CmdRedo, Args: args}
	case "resign":
		return &Command{Type: CmdResign}
	case "draw":
		return &Command{Type: CmdDraw, Args: args}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "pgn":
		return &Command{Type: CmdPGN}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		// Assume it's a move, either "e2e4" or "e2 e4"
		return &Command{Type: CmdMove, Args: parts}
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(errorColor.Sprintf("Error: %v", err))
}

func (c *CLI) DisplayBoard(b board.Board) {
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")
	for r := 0; r < board.Size; r++ {
		fmt.Fprintf(&sb, "%d ", board.Size-r)
		for f := 0; f < board.Size; f++ {
			piece, _ := b.PieceAt(board.Square{Row: r, Col: f})

			cell := "  "
			if !piece.IsZero() {
				cell = string(piece.Symbol()) + " "
			}
			if c.theme == ThemeOff {
				sb.WriteString(cell)
				continue
			}

			theme := themes[c.theme]
			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			sb.WriteString(squareColor(bg, piece).Sprint(cell))
		}
		fmt.Fprintf(&sb, " %d\n", board.Size-r)
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new              - Start a new game from the standard position
  resume <FEN>     - Start from a specific board position
  <move>           - Make a move (e.g., e2e4, or e2 e4)
  move <from> <to> - Same as above
  undo [count]     - Undo last move(s), default 1
  redo [count]     - Replay undone move(s), default 1
  resign           - Side to move resigns
  draw [action]    - Offer a draw, or accept/decline the open offer
  color <theme>    - Set board color theme (off|brown|green|gray)
  verbose          - Toggle detailed move information
  history          - Show game move history and positions
  pgn              - Print the game in PGN
  quit/exit        - Exit the program
  help/?           - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new, resume <FEN>, <move>, undo, redo, resign, draw, history, pgn, help/?, quit")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w - - 0 1' to start from a puzzle.")
	c.ShowMessage("Castling, en passant and promotion are not played.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Game) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", g.InitialFEN()))

	moves := g.Moves()
	start := 0
	number := fullmove(g.InitialFEN())
	if len(moves) > 0 && g.History()[0].Piece.Color == core.ColorBlack {
		c.ShowMessage(fmt.Sprintf("%d. ... | %s", number, moves[0]))
		start, number = 1, number+1
	}
	for i := start; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", number, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", number, moves[i]))
		}
		number++
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", g.CurrentFEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", g.Status()))
}

// fullmove reads the move number a position starts at
func fullmove(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) == 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func (c *CLI) ShowMove(result *game.MoveResult) {
	if !c.verbose {
		return
	}
	m := result.Move
	msg := fmt.Sprintf("%s: %s %s", result.Player.Name(), m.Piece.Kind, m)
	if m.IsCapture() {
		msg += fmt.Sprintf(" takes %s", m.Captured.Kind)
	}
	c.ShowMessage(msg)
}

// ShowStatus announces check and the end of the game
func (c *CLI) ShowStatus(st core.Status) {
	switch {
	case st.IsOver():
		c.ShowMessage(noticeColor.Sprintf("Game Over: %s (%s)", st, st.Result()))
		c.ShowMessage("Use 'undo' to take moves back, or start again with 'new' or 'resume'.")
	case st.State == core.StateCheck:
		c.ShowMessage(noticeColor.Sprintf("%s is in check", st.Side.Name()))
	}
}

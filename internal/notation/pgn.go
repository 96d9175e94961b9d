// Package notation exports played games in standard algebraic notation. Move
// text is produced by github.com/notnil/chess replaying the coordinate log.
package notation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notnil/chess"

	"chessrules/internal/board"
)

var ErrUnrepresentable = errors.New("move cannot be written in standard notation")

// lineWidth is the export width used by most PGN readers
const lineWidth = 79

// Tag is one PGN header pair
type Tag struct {
	Name  string
	Value string
}

// GameTags returns the header of a casual game between two named players
func GameTags(white, black string, started time.Time) []Tag {
	return []Tag{
		{Name: "Event", Value: "Casual game"},
		{Name: "Site", Value: "chessrules"},
		{Name: "Date", Value: started.Format("2006.01.02")},
		{Name: "White", Value: white},
		{Name: "Black", Value: black},
	}
}

// Replay decodes a coordinate move log starting from fen. A pawn reaching the
// last rank is unrepresentable because this engine never promotes.
func Replay(fen string, moves []string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrepresentable, err)
	}
	g := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	for i, m := range moves {
		if err := g.MoveStr(m); err != nil {
			return nil, fmt.Errorf("%w: ply %d %s: %v", ErrUnrepresentable, i+1, m, err)
		}
	}
	return g, nil
}

// SAN converts a coordinate move log into algebraic move tokens
func SAN(fen string, moves []string) ([]string, error) {
	g, err := Replay(fen, moves)
	if err != nil {
		return nil, err
	}
	positions := g.Positions()
	played := g.Moves()

	var enc chess.AlgebraicNotation
	san := make([]string, len(played))
	for i, m := range played {
		san[i] = enc.Encode(positions[i], m)
	}
	return san, nil
}

// PGN renders a complete game record. result is a PGN result token such as
// "1-0" or "*". A FEN and SetUp tag are added when the game did not start
// from the standard position.
func PGN(fen string, moves []string, tags []Tag, result string) (string, error) {
	san, err := SAN(fen, moves)
	if err != nil {
		return "", err
	}
	if result == "" {
		result = "*"
	}

	var sb strings.Builder
	for _, t := range withSetup(fen, tags, result) {
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", t.Name, escape(t.Value))
	}
	sb.WriteByte('\n')

	number, blackFirst := moveNumber(fen)
	var tokens []string
	for i, m := range san {
		whiteToMove := (i%2 == 0) != blackFirst
		switch {
		case whiteToMove:
			tokens = append(tokens, fmt.Sprintf("%d.", number))
		case i == 0:
			tokens = append(tokens, fmt.Sprintf("%d...", number))
		}
		tokens = append(tokens, m)
		if !whiteToMove {
			number++
		}
	}
	tokens = append(tokens, result)

	sb.WriteString(wrap(tokens))
	sb.WriteByte('\n')
	return sb.String(), nil
}

// withSetup orders the seven tag roster first. Missing roster tags get "?".
func withSetup(fen string, tags []Tag, result string) []Tag {
	roster := []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}
	given := make(map[string]string, len(tags))
	for _, t := range tags {
		given[t.Name] = t.Value
	}
	given["Result"] = result

	out := make([]Tag, 0, len(roster)+len(tags)+2)
	for _, name := range roster {
		v, ok := given[name]
		if !ok {
			v = "?"
		}
		out = append(out, Tag{Name: name, Value: v})
	}
	for _, t := range tags {
		if !contains(roster, t.Name) && t.Name != "SetUp" && t.Name != "FEN" {
			out = append(out, t)
		}
	}
	if fen != board.StartingFEN {
		out = append(out, Tag{Name: "SetUp", Value: "1"}, Tag{Name: "FEN", Value: fen})
	}
	return out
}

// moveNumber reads the fullmove counter and side to move from fen
func moveNumber(fen string) (int, bool) {
	fields := strings.Fields(fen)
	number := 1
	if len(fields) == 6 {
		fmt.Sscanf(fields[5], "%d", &number)
	}
	return number, len(fields) > 1 && fields[1] == "b"
}

func wrap(tokens []string) string {
	var sb strings.Builder
	width := 0
	for _, tok := range tokens {
		if width > 0 && width+1+len(tok) > lineWidth {
			sb.WriteByte('\n')
			width = 0
		}
		if width > 0 {
			sb.WriteByte(' ')
			width++
		}
		sb.WriteString(tok)
		width += len(tok)
	}
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

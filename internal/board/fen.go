package board

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chessrules/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
)

var ErrInvalidFEN = errors.New("invalid FEN")

var (
	castlingPattern  = regexp.MustCompile(`^(-|[KQkq]{1,4})$`)
	enPassantPattern = regexp.MustCompile(`^(-|[a-h][36])$`)
)

// FENState carries the non-placement fields of a FEN record. Castling and en
// passant fields are accepted on input but not tracked.
type FENState struct {
	Turn     core.Color
	Halfmove int
	Fullmove int
}

// ParseFEN reads a six-field FEN record and checks that each side has exactly one
// king and no pawn stands on a back rank.
func ParseFEN(fen string) (*Board, FENState, error) {
	var st FENState
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, st, fmt.Errorf("%w: expected 6 parts, got %d", ErrInvalidFEN, len(parts))
	}

	b, err := ParsePlacement(parts[0])
	if err != nil {
		return nil, st, err
	}

	switch parts[1] {
	case "w":
		st.Turn = core.ColorWhite
	case "b":
		st.Turn = core.ColorBlack
	default:
		return nil, st, fmt.Errorf("%w: turn must be 'w' or 'b'", ErrInvalidFEN)
	}
	if !castlingPattern.MatchString(parts[2]) {
		return nil, st, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, parts[2])
	}
	if !enPassantPattern.MatchString(parts[3]) {
		return nil, st, fmt.Errorf("%w: en passant field %q", ErrInvalidFEN, parts[3])
	}

	if st.Halfmove, err = strconv.Atoi(parts[4]); err != nil || st.Halfmove < 0 {
		return nil, st, fmt.Errorf("%w: halfmove counter", ErrInvalidFEN)
	}
	if st.Fullmove, err = strconv.Atoi(parts[5]); err != nil || st.Fullmove < 1 {
		return nil, st, fmt.Errorf("%w: fullmove counter", ErrInvalidFEN)
	}

	return b, st, nil
}

// ParsePlacement reads the piece placement field of a FEN record
func ParsePlacement(field string) (*Board, error) {
	ranks := strings.Split(field, "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("%w: expected 8 ranks", ErrInvalidFEN)
	}

	b := New()
	for r := 0; r < Size; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p, ok := PieceFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q in rank %d", ErrInvalidFEN, ch, 8-r)
			}
			if file >= Size {
				return nil, fmt.Errorf("%w: too many pieces in rank %d", ErrInvalidFEN, 8-r)
			}
			if p.Kind == Pawn && (r == 0 || r == Size-1) {
				return nil, fmt.Errorf("%w: pawn on back rank %d", ErrInvalidFEN, 8-r)
			}
			b.squares[r][file] = p
			file++
		}
		if file != Size {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-r, file)
		}
	}

	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := b.Count(color, King); n != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, color.Name(), n)
		}
	}

	return b, nil
}

// Placement writes the piece placement field of a FEN record
func (b *Board) Placement() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		empty := 0
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r < Size-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// FEN writes a full record. Castling and en passant are always "-".
func (b *Board) FEN(st FENState) string {
	return fmt.Sprintf("%s %s - - %d %d", b.Placement(), st.Turn, st.Halfmove, st.Fullmove)
}

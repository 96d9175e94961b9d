package core

import (
	"fmt"
	"strings"
)

type Color byte

const (
	ColorNone Color = iota
	ColorWhite
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the capitalized color name used in messages
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w", "b", "white" or "black" in any case
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return ColorNone, fmt.Errorf("invalid color: %q", s)
	}
}

type State int

const (
	StateActive State = iota
	StateCheck
	StateCheckmate
	StateStalemate
	StateDraw
	StateResigned
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCheck:
		return "check"
	case StateCheckmate:
		return "checkmate"
	case StateStalemate:
		return "stalemate"
	case StateDraw:
		return "draw"
	case StateResigned:
		return "resigned"
	default:
		return "unknown"
	}
}

// Status is the game condition computed after every applied move.
// Side is the player the state refers to: the side in check, the side
// checkmated or the side that resigned. It is ColorNone for the others.
type Status struct {
	State State
	Side  Color
}

func Active() Status { return Status{State: StateActive} }

// IsOver reports whether no further moves may be played
func (s Status) IsOver() bool {
	switch s.State {
	case StateCheckmate, StateStalemate, StateDraw, StateResigned:
		return true
	}
	return false
}

func (s Status) IsDraw() bool {
	return s.State == StateStalemate || s.State == StateDraw
}

// Winner returns the winning color, or ColorNone when the game is undecided or drawn
func (s Status) Winner() Color {
	switch s.State {
	case StateCheckmate, StateResigned:
		return OppositeColor(s.Side)
	}
	return ColorNone
}

// Result returns the PGN style result token
func (s Status) Result() string {
	switch {
	case s.IsDraw():
		return "1/2-1/2"
	case s.Winner() == ColorWhite:
		return "1-0"
	case s.Winner() == ColorBlack:
		return "0-1"
	default:
		return "*"
	}
}

func (s Status) String() string {
	switch s.State {
	case StateCheck:
		return fmt.Sprintf("%s in check", s.Side.Name())
	case StateCheckmate:
		return fmt.Sprintf("checkmate, %s wins", s.Winner().Name())
	case StateStalemate:
		return "stalemate, draw"
	case StateDraw:
		return "draw by agreement"
	case StateResigned:
		return fmt.Sprintf("%s resigned, %s wins", s.Side.Name(), s.Winner().Name())
	default:
		return "active"
	}
}

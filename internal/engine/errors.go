package engine

import "errors"

// Move rejection reasons. None of them change the position or the turn.
var (
	ErrNoPieceAtOrigin       = errors.New("no piece at origin")
	ErrNotYourPiece          = errors.New("not your piece")
	ErrPseudoIllegalGeometry = errors.New("piece cannot move that way")
	ErrLeavesKingInCheck     = errors.New("move leaves king in check")
	ErrIllegalMove           = errors.New("illegal move")
	ErrGameOver              = errors.New("game is over")
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrInvalidColor  = errors.New("invalid color")
)

// IsRejection reports whether err is a per-move rejection rather than a
// failure of the game itself
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrNoPieceAtOrigin, ErrNotYourPiece, ErrPseudoIllegalGeometry,
		ErrLeavesKingInCheck, ErrIllegalMove,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

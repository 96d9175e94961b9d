package service

import (
	"fmt"
	"time"

	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/storage"
)

// CreateGame registers a new game from fen, or the standard position when
// fen is empty
func (s *Service) CreateGame(white, black core.PlayerConfig, fen string, protected bool) (*game.Game, error) {
	if protected && len(s.jwtSecret) == 0 {
		return nil, ErrNoSecret
	}
	g, err := newGame(white, black, fen, protected)
	if err != nil {
		return nil, err
	}
	if err := s.admit(g); err != nil {
		return nil, err
	}
	return g, nil
}

// CreateProtectedGame creates a protected game with one seat token per color.
// Tokens are signed before the game is registered or stored, so a signing
// failure leaves no trace.
func (s *Service) CreateProtectedGame(white, black core.PlayerConfig, fen string) (*game.Game, core.SeatTokens, error) {
	var tokens core.SeatTokens
	if len(s.jwtSecret) == 0 {
		return nil, tokens, ErrNoSecret
	}
	g, err := newGame(white, black, fen, true)
	if err != nil {
		return nil, tokens, err
	}
	if tokens.White, err = s.IssueSeatToken(g, core.ColorWhite); err != nil {
		return nil, core.SeatTokens{}, fmt.Errorf("sign white seat: %w", err)
	}
	if tokens.Black, err = s.IssueSeatToken(g, core.ColorBlack); err != nil {
		return nil, core.SeatTokens{}, fmt.Errorf("sign black seat: %w", err)
	}
	if err := s.admit(g); err != nil {
		return nil, core.SeatTokens{}, err
	}
	return g, tokens, nil
}

func newGame(white, black core.PlayerConfig, fen string, protected bool) (*game.Game, error) {
	return game.New(fen,
		core.NewPlayer(white, core.ColorWhite),
		core.NewPlayer(black, core.ColorBlack),
		protected)
}

// admit registers a game and records it in storage
func (s *Service) admit(g *game.Game) error {
	if err := s.register(g); err != nil {
		return err
	}

	if s.store != nil {
		w, b := g.Player(core.ColorWhite), g.Player(core.ColorBlack)
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        g.ID(),
			InitialFEN:    g.InitialFEN(),
			WhitePlayerID: w.ID,
			WhiteName:     w.Name,
			BlackPlayerID: b.ID,
			BlackName:     b.Name,
			Protected:     g.Protected(),
			StartTimeUTC:  g.CreatedAt(),
		})
	}

	s.log.WithField("game", g.ID()).WithField("protected", g.Protected()).Info("game created")
	return nil
}

func (s *Service) register(g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID())
	}
	s.games[g.ID()] = g
	return nil
}

// GetGame retrieves a game by ID. Callers lock the game before reading it.
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// WithGame runs fn while holding the game's lock
func (s *Service) WithGame(gameID string, fn func(g *game.Game) error) error {
	g, err := s.GetGame(gameID)
	if err != nil {
		return err
	}
	g.Lock()
	defer g.Unlock()
	return fn(g)
}

// Guard vets a caller against a game before a change is applied. It runs
// under the game lock, so its decision holds for the change that follows.
// A nil Guard admits everyone.
type Guard func(g *game.Game) error

// Hook observes a game right after a change succeeds, still under the lock
// that applied it
type Hook func(g *game.Game)

// guarded runs guard, fn, then hooks while holding the game's lock
func (s *Service) guarded(gameID string, guard Guard, hooks []Hook, fn func(g *game.Game) error) error {
	return s.WithGame(gameID, func(g *game.Game) error {
		if guard != nil {
			if err := guard(g); err != nil {
				return err
			}
		}
		if err := fn(g); err != nil {
			return err
		}
		for _, hook := range hooks {
			if hook != nil {
				hook(g)
			}
		}
		return nil
	})
}

// DeleteGame removes a game from memory. Stored records are kept.
func (s *Service) DeleteGame(gameID string, guard Guard) error {
	if err := s.guarded(gameID, guard, nil, func(*game.Game) error { return nil }); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	s.log.WithField("game", gameID).Info("game deleted")
	return nil
}

// MakeMove plays a move for the side to move. The whole validate-and-commit
// sequence runs under the game lock.
func (s *Service) MakeMove(gameID, from, to string, guard Guard, hooks ...Hook) (*game.MoveResult, error) {
	var result *game.MoveResult
	err := s.guarded(gameID, guard, hooks, func(g *game.Game) error {
		res, err := g.Move(from, to)
		if err != nil {
			s.log.WithField("game", gameID).WithError(err).Debug("move rejected")
			return err
		}
		result = res

		s.recordMove(g)
		if res.Status.IsOver() {
			s.recordResult(g)
		}
		s.changed(g)
		return nil
	})
	return result, err
}

// Undo takes back count moves
func (s *Service) Undo(gameID string, count int, guard Guard, hooks ...Hook) error {
	return s.guarded(gameID, guard, hooks, func(g *game.Game) error {
		if _, err := g.Undo(count); err != nil {
			return err
		}
		if s.store != nil {
			s.store.DeleteUndoneMoves(gameID, len(g.History()))
		}
		s.recordResult(g)
		s.changed(g)
		return nil
	})
}

// Redo replays count undone moves
func (s *Service) Redo(gameID string, count int, guard Guard, hooks ...Hook) error {
	return s.guarded(gameID, guard, hooks, func(g *game.Game) error {
		if count < 1 || count > g.Redoable() {
			// Let the game report the precise reason
			_, err := g.Redo(count)
			return err
		}
		// One at a time so each stored row gets the position after it
		for i := 0; i < count; i++ {
			if _, err := g.Redo(1); err != nil {
				s.changed(g)
				return err
			}
			s.recordMove(g)
		}
		s.recordResult(g)
		s.changed(g)
		return nil
	})
}

func (s *Service) Resign(gameID string, color core.Color, guard Guard, hooks ...Hook) error {
	return s.guarded(gameID, guard, hooks, func(g *game.Game) error {
		if err := g.Resign(color); err != nil {
			return err
		}
		s.recordResult(g)
		s.changed(g)
		return nil
	})
}

// Draw applies a draw offer, acceptance or refusal by color
func (s *Service) Draw(gameID string, color core.Color, action string, guard Guard, hooks ...Hook) error {
	return s.guarded(gameID, guard, hooks, func(g *game.Game) error {
		var err error
		switch action {
		case "offer":
			err = g.OfferDraw(color)
		case "accept":
			err = g.AcceptDraw(color)
		case "decline":
			err = g.DeclineDraw(color)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownDrawAction, action)
		}
		if err != nil {
			return err
		}
		if g.Status().IsOver() {
			s.recordResult(g)
		}
		s.changed(g)
		return nil
	})
}

// RestoreGame rebuilds a stored game by replaying its move log from the
// initial position. Every stored move is validated again on the way.
func (s *Service) RestoreGame(gameID string) (*game.Game, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.GetGame(gameID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}

	rec, moves, err := s.store.LoadGame(gameID)
	if err != nil {
		return nil, err
	}

	white := &core.Player{ID: rec.WhitePlayerID, Color: core.ColorWhite, Name: rec.WhiteName}
	black := &core.Player{ID: rec.BlackPlayerID, Color: core.ColorBlack, Name: rec.BlackName}
	g, err := game.New(rec.InitialFEN, white, black, rec.Protected)
	if err != nil {
		return nil, fmt.Errorf("stored game %s: %w", gameID, err)
	}
	g.Restored(rec.GameID, rec.StartTimeUTC)

	for _, m := range moves {
		if len(m.Move) != 4 {
			return nil, fmt.Errorf("stored game %s: move %d %q is malformed", gameID, m.MoveNumber, m.Move)
		}
		if _, err := g.Move(m.Move[:2], m.Move[2:]); err != nil {
			return nil, fmt.Errorf("stored game %s: move %d: %w", gameID, m.MoveNumber, err)
		}
	}
	if err := g.RestoreEnding(rec.Result); err != nil {
		return nil, fmt.Errorf("stored game %s: %w", gameID, err)
	}

	if err := s.register(g); err != nil {
		return nil, err
	}
	s.log.WithField("game", gameID).WithField("moves", len(moves)).Info("game restored")
	return g, nil
}

// recordMove persists the last move of the history with the current position
func (s *Service) recordMove(g *game.Game) {
	if s.store == nil {
		return
	}
	history := g.History()
	if len(history) == 0 {
		return
	}
	m := history[len(history)-1]
	rec := storage.MoveRecord{
		GameID:       g.ID(),
		MoveNumber:   len(history),
		Move:         m.String(),
		FENAfterMove: g.CurrentFEN(),
		PlayerColor:  m.Piece.Color.String(),
		MoveTimeUTC:  time.Now().UTC(),
	}
	if m.IsCapture() {
		rec.Captured = string(m.Captured.Symbol())
	}
	s.store.RecordMove(rec)
}

func (s *Service) recordResult(g *game.Game) {
	if s.store != nil {
		s.store.RecordResult(g.ID(), g.Status().Result())
	}
}

func (s *Service) changed(g *game.Game) {
	s.waiter.NotifyGame(g.ID(), g.Version())
	if st := g.Status(); st.IsOver() {
		s.log.WithField("game", g.ID()).WithField("result", st.Result()).Info(st.String())
	}
}

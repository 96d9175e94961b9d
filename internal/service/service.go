package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/auth"
	"github.com/sirupsen/logrus"

	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/storage"
)

// SeatTokenTTL bounds how long a seat token for a protected game stays valid
const SeatTokenTTL = 7 * 24 * time.Hour

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrStorageDisabled = errors.New("storage is disabled")
	ErrNoSecret        = errors.New("seat tokens need a signing secret")

	ErrUnknownDrawAction = errors.New("unknown draw action")
)

// Service owns the registry of live games, their persistence and the
// long-poll waiters. Each game is guarded by its own mutex; the registry
// lock is held only for map access.
type Service struct {
	games     map[string]*game.Game
	mu        sync.RWMutex
	store     *storage.Store // nil if persistence disabled
	jwtSecret []byte
	waiter    *WaitRegistry
	signToken func(secret []byte, userID string, claims map[string]any, ttl time.Duration) (string, error)
	log       *logrus.Entry
}

// New creates a service. store may be nil; jwtSecret may be nil when no
// protected games will be created.
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*game.Game),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
		signToken: auth.GenerateHS256Token,
		log:       logrus.WithField("component", "service"),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait parks a client until the game version moves past version.
// Callers cancel ctx once they stop waiting.
func (s *Service) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, version)
}

// IssueSeatToken signs a token binding the color's player to a game
func (s *Service) IssueSeatToken(g *game.Game, color core.Color) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrNoSecret
	}
	p := g.Player(color)
	if p == nil {
		return "", fmt.Errorf("%w: %s", game.ErrNotInThisGame, color)
	}
	claims := map[string]any{
		"game":  g.ID(),
		"color": color.String(),
	}
	return s.signToken(s.jwtSecret, p.ID, claims, SeatTokenTTL)
}

// ValidateToken verifies a seat token and returns the player ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	if len(s.jwtSecret) == 0 {
		return "", nil, ErrNoSecret
	}
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// Shutdown releases waiters, then drains and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error
	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.games = make(map[string]*game.Game)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var ErrGameNotStored = errors.New("game not found in storage")

const (
	writeQueueSize  = 1000
	shutdownTimeout = 2 * time.Second
)

// Store handles SQLite database operations with async writes. Writes are
// applied in submission order by a single goroutine; once one fails the store
// is marked degraded and further writes are dropped.
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
	log          *logrus.Entry
}

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode in development for better concurrency
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Foreign keys are per connection in SQLite
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, writeQueueSize),
		ctx:       ctx,
		cancel:    cancel,
		log:       logrus.WithField("component", "storage"),
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(shutdownTimeout)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.degrade("begin transaction", err)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.degrade("write operation", err)
		return
	}

	if err := tx.Commit(); err != nil {
		s.degrade("commit", err)
	}
}

func (s *Store) degrade(stage string, err error) {
	s.log.WithError(err).Errorf("storage degraded: %s failed", stage)
	s.healthStatus.Store(false)
}

// enqueue submits a write, dropping it when degraded or when the queue is full
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) {
	if !s.healthStatus.Load() {
		return
	}
	select {
	case s.writeChan <- fn:
	default:
		s.log.Warnf("write queue full, dropping %s", what)
	}
}

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	if record.Result == "" {
		record.Result = "*"
	}
	s.enqueue("game record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (
			game_id, initial_fen,
			white_player_id, white_name, black_player_id, black_name,
			protected, result, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.InitialFEN,
			record.WhitePlayerID, record.WhiteName, record.BlackPlayerID, record.BlackName,
			record.Protected, record.Result, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move. A row left by an undo that was
// not yet deleted is replaced.
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT OR REPLACE INTO moves (
			game_id, move_number, move, captured, fen_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.MoveNumber, record.Move, record.Captured,
			record.FENAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueue("undo", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return err
	})
}

// RecordResult asynchronously stores the result token of a game
func (s *Store) RecordResult(gameID, result string) {
	s.enqueue("result", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET result = ? WHERE game_id = ?`, result, gameID)
		return err
	})
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close drains pending writes and closes the database connection
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			s.log.Warn("storage writer shutdown timeout, some writes may be lost")
		}

		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// ☣ DESTRUCTIVE: Removes database file
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

const gameColumns = `game_id, initial_fen,
	white_player_id, white_name, black_player_id, black_name,
	protected, result, start_time_utc`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (GameRecord, error) {
	var g GameRecord
	err := row.Scan(
		&g.GameID, &g.InitialFEN,
		&g.WhitePlayerID, &g.WhiteName, &g.BlackPlayerID, &g.BlackName,
		&g.Protected, &g.Result, &g.StartTimeUTC,
	)
	return g, err
}

// QueryGames retrieves games with optional filtering. Empty or "*" matches all.
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if playerID != "" && playerID != "*" {
		query += " AND (white_player_id = ? OR black_player_id = ?)"
		args = append(args, playerID, playerID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// LoadGame reads one game and its moves in play order
func (s *Store) LoadGame(gameID string) (GameRecord, []MoveRecord, error) {
	g, err := scanGame(s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE game_id = ?`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, nil, fmt.Errorf("%w: %s", ErrGameNotStored, gameID)
	}
	if err != nil {
		return GameRecord{}, nil, fmt.Errorf("scan failed: %w", err)
	}

	rows, err := s.db.Query(`SELECT move_id, game_id, move_number, move, captured, fen_after_move, player_color, move_time_utc
		FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return GameRecord{}, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.Move, &m.Captured,
			&m.FENAfterMove, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return GameRecord{}, nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return GameRecord{}, nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return g, moves, nil
}

package processor

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"chessrules/internal/core"
	"chessrules/internal/service"
	"chessrules/internal/storage"
)

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	svc := service.New(nil, []byte("test-secret-minimum-32-characters-long"))
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return New(svc)
}

func create(t *testing.T, p *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(req))
	if !resp.Success {
		t.Fatalf("create failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func mustSucceed(t *testing.T, resp ProcessorResponse) core.GameResponse {
	t.Helper()
	if !resp.Success {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func wantCode(t *testing.T, resp ProcessorResponse, code string) {
	t.Helper()
	if resp.Success {
		t.Fatalf("command succeeded, want %s", code)
	}
	if resp.Error.Code != code {
		t.Errorf("code = %s (%s), want %s", resp.Error.Code, resp.Error.Error, code)
	}
}

func TestCreateAndMove(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: core.PlayerConfig{Name: "Ann"}})

	if g.Turn != "w" || g.State != "active" || g.Result != "*" || len(g.Moves) != 0 {
		t.Errorf("new game = %+v", g)
	}
	if g.Players.White.Name != "Ann" || g.Players.Black.Name != "Black Player" {
		t.Errorf("players = %+v %+v", g.Players.White, g.Players.Black)
	}
	if g.Tokens != nil {
		t.Error("open game has seat tokens")
	}

	after := mustSucceed(t, p.Execute(NewMakeMoveCommand(g.GameID, "", core.MoveRequest{From: "e2", To: "e4"})))
	if after.Turn != "b" || after.LastMove == nil || after.LastMove.Move != "e2e4" || after.LastMove.Piece != "Pawn" {
		t.Errorf("after move = %+v", after)
	}
	if after.Version <= g.Version {
		t.Errorf("version %d did not advance from %d", after.Version, g.Version)
	}
}

func TestErrorCodes(t *testing.T) {
	p := newProcessor(t)
	id := create(t, p, core.CreateGameRequest{}).GameID

	tests := []struct {
		name string
		cmd  Command
		code string
	}{
		{"unknown game", NewGetGameCommand("nope"), core.ErrGameNotFound},
		{"bad FEN", NewCreateGameCommand(core.CreateGameRequest{FEN: "8/8/8/8/8/8/8/8 w - - 0 1"}), core.ErrInvalidFEN},
		{"control character", NewCreateGameCommand(core.CreateGameRequest{FEN: "x\n"}), core.ErrInvalidFEN},
		{"malformed square", NewMakeMoveCommand(id, "", core.MoveRequest{From: "z9", To: "e4"}), core.ErrInvalidSquare},
		{"empty origin", NewMakeMoveCommand(id, "", core.MoveRequest{From: "e3", To: "e4"}), core.ErrInvalidMove},
		{"opponent piece", NewMakeMoveCommand(id, "", core.MoveRequest{From: "e7", To: "e5"}), core.ErrInvalidMove},
		{"nothing to undo", NewUndoMoveCommand(id, "", core.UndoRequest{Count: 1}), core.ErrInvalidRequest},
		{"nothing to redo", NewRedoMoveCommand(id, "", core.RedoRequest{Count: 1}), core.ErrInvalidRequest},
		{"bad color", NewResignCommand(id, "", core.ResignRequest{Color: "red"}), core.ErrInvalidRequest},
		{"accept without offer", NewDrawCommand(id, "", core.DrawRequest{Color: "b", Action: "accept"}), core.ErrInvalidRequest},
		{"restore without storage", NewRestoreGameCommand(id), core.ErrStorageDisabled},
		{"wrong args", Command{Type: CmdMakeMove, GameID: id, Args: "e2e4"}, core.ErrInvalidRequest},
		{"unknown command", Command{Type: CommandType(99)}, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantCode(t, p.Execute(tt.cmd), tt.code)
		})
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	p := newProcessor(t)
	id := create(t, p, core.CreateGameRequest{}).GameID

	var resp core.GameResponse
	for _, m := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		resp = mustSucceed(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{From: m[0], To: m[1]})))
	}
	if resp.State != "checkmate" || resp.Side != "w" || resp.Winner != "b" || resp.Result != "0-1" {
		t.Errorf("final = %+v", resp)
	}
	wantCode(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{From: "a2", To: "a3"})), core.ErrGameOver)

	pgn := p.Execute(NewGetPGNCommand(id))
	if !pgn.Success {
		t.Fatalf("pgn: %+v", pgn.Error)
	}
	text := pgn.Data.(core.PGNResponse).PGN
	if !strings.Contains(text, "1. f3 e5 2. g4 Qh4# 0-1") || !strings.Contains(text, `[Result "0-1"]`) {
		t.Errorf("pgn = %s", text)
	}

	undone := mustSucceed(t, p.Execute(NewUndoMoveCommand(id, "", core.UndoRequest{Count: 1})))
	if undone.State != "active" || undone.Turn != "b" || undone.Result != "*" {
		t.Errorf("after undo = %+v", undone)
	}
}

func TestDrawFlow(t *testing.T) {
	p := newProcessor(t)
	id := create(t, p, core.CreateGameRequest{}).GameID

	offered := mustSucceed(t, p.Execute(NewDrawCommand(id, "", core.DrawRequest{Color: "white", Action: "offer"})))
	if offered.DrawOffer != "w" {
		t.Errorf("draw offer = %q", offered.DrawOffer)
	}
	drawn := mustSucceed(t, p.Execute(NewDrawCommand(id, "", core.DrawRequest{Color: "b", Action: "accept"})))
	if drawn.State != "draw" || drawn.Result != "1/2-1/2" || drawn.DrawOffer != "" {
		t.Errorf("after accept = %+v", drawn)
	}
}

func TestProtectedSeats(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{Protected: true})
	if g.Tokens == nil || g.Tokens.White == "" || g.Tokens.Black == "" {
		t.Fatalf("tokens = %+v", g.Tokens)
	}

	svc := p.Service()
	whiteID, _, err := svc.ValidateToken(g.Tokens.White)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	blackID, _, err := svc.ValidateToken(g.Tokens.Black)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	e2e4 := core.MoveRequest{From: "e2", To: "e4"}
	wantCode(t, p.Execute(NewMakeMoveCommand(g.GameID, "", e2e4)), core.ErrUnauthorized)
	wantCode(t, p.Execute(NewMakeMoveCommand(g.GameID, blackID, e2e4)), core.ErrUnauthorized)
	mustSucceed(t, p.Execute(NewMakeMoveCommand(g.GameID, whiteID, e2e4)))

	wantCode(t, p.Execute(NewResignCommand(g.GameID, blackID, core.ResignRequest{Color: "w"})), core.ErrUnauthorized)
	wantCode(t, p.Execute(NewUndoMoveCommand(g.GameID, "stranger", core.UndoRequest{Count: 1})), core.ErrUnauthorized)
	mustSucceed(t, p.Execute(NewUndoMoveCommand(g.GameID, blackID, core.UndoRequest{Count: 1})))

	wantCode(t, p.Execute(NewDeleteGameCommand(g.GameID, "")), core.ErrUnauthorized)
	if resp := p.Execute(NewDeleteGameCommand(g.GameID, whiteID)); !resp.Success {
		t.Fatalf("delete: %+v", resp.Error)
	}
	wantCode(t, p.Execute(NewGetGameCommand(g.GameID)), core.ErrGameNotFound)
}

func TestBoardAndCustomStart(t *testing.T) {
	p := newProcessor(t)
	fen := "4k3/8/8/8/8/8/4P3/4K3 b - - 0 7"
	id := create(t, p, core.CreateGameRequest{FEN: fen}).GameID

	resp := p.Execute(NewGetBoardCommand(id))
	if !resp.Success {
		t.Fatalf("board: %+v", resp.Error)
	}
	b := resp.Data.(core.BoardResponse)
	if b.FEN != fen || !strings.Contains(b.Board, "k") {
		t.Errorf("board = %+v", b)
	}

	// An unpromoted pawn cannot be written as PGN
	moves := [][2]string{{"e8", "d8"}, {"e2", "e4"}, {"d8", "e8"}, {"e4", "e5"}, {"e8", "d8"}, {"e5", "e6"}, {"d8", "e8"}, {"e6", "e7"}, {"e8", "f7"}, {"e7", "e8"}}
	for _, m := range moves {
		mustSucceed(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{From: m[0], To: m[1]})))
	}
	wantCode(t, p.Execute(NewGetPGNCommand(id)), core.ErrInvalidRequest)
}

// Each reply must show the position the caller's own move produced, even
// while the other side keeps moving.
func TestMoveReplyMatchesOwnMove(t *testing.T) {
	p := newProcessor(t)
	id := create(t, p, core.CreateGameRequest{}).GameID

	const rounds = 25
	sides := map[string][2][2]string{
		"white": {{"g1", "f3"}, {"f3", "g1"}},
		"black": {{"g8", "f6"}, {"f6", "g8"}},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for name, shuffle := range sides {
		wg.Add(1)
		go func(name string, shuffle [2][2]string) {
			defer wg.Done()
			for done := 0; done < rounds; {
				m := shuffle[done%2]
				resp := p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{From: m[0], To: m[1]}))
				if !resp.Success {
					runtime.Gosched()
					continue
				}
				want := m[0] + m[1]
				got := resp.Data.(core.GameResponse)
				if got.LastMove == nil || got.LastMove.Move != want {
					errs <- fmt.Errorf("%s played %s, reply last move = %+v", name, want, got.LastMove)
				} else if got.Moves[len(got.Moves)-1] != want {
					errs <- fmt.Errorf("%s played %s, reply moves end with %s", name, want, got.Moves[len(got.Moves)-1])
				}
				done++
			}
		}(name, shuffle)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestStorageFailureIsInternal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	store, err := storage.NewStore(path, true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	svc := service.New(store, nil)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	p := New(svc)

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wantCode(t, p.Execute(NewRestoreGameCommand("gone")), core.ErrInternalError)
}

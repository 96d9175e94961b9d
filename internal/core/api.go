package core

// Request types

type CreateGameRequest struct {
	White     PlayerConfig `json:"white"`
	Black     PlayerConfig `json:"black"`
	FEN       string       `json:"fen,omitempty" validate:"omitempty,max=100"`
	Protected bool         `json:"protected,omitempty"` // Moves require the seat token of the side to move
}

type MoveRequest struct {
	From string `json:"from" validate:"required,len=2"`
	To   string `json:"to" validate:"required,len=2"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

type RedoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

type ResignRequest struct {
	Color string `json:"color" validate:"required,oneof=w b white black"`
}

type DrawRequest struct {
	Color  string `json:"color" validate:"required,oneof=w b white black"`
	Action string `json:"action" validate:"required,oneof=offer accept decline"`
}

// Response types

type GameResponse struct {
	GameID    string          `json:"gameId"`
	FEN       string          `json:"fen"`
	Turn      string          `json:"turn"`  // "w" or "b"
	State     string          `json:"state"` // "active", "check", "checkmate", ...
	Side      string          `json:"side,omitempty"`
	Winner    string          `json:"winner,omitempty"`
	Result    string          `json:"result"`
	Moves     []string        `json:"moves"`
	Players   PlayersResponse `json:"players"`
	LastMove  *MoveInfo       `json:"lastMove,omitempty"`
	DrawOffer string          `json:"drawOffer,omitempty"`
	Protected bool            `json:"protected,omitempty"`
	Tokens    *SeatTokens     `json:"tokens,omitempty"` // Only returned on creation
	Version   int             `json:"version"`          // Pass back as ?version= to long-poll for changes
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Piece       string `json:"piece"`
	Captured    string `json:"captured,omitempty"`
}

type SeatTokens struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type PGNResponse struct {
	PGN string `json:"pgn"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

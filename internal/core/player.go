package core

import (
	"github.com/google/uuid"
)

// Player is a seat in a game
type Player struct {
	ID    string `json:"id"`
	Color Color  `json:"-"`
	Name  string `json:"name"`
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=40"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player from PlayerConfig with a fresh ID
func NewPlayer(config PlayerConfig, color Color) *Player {
	name := config.Name
	if name == "" {
		name = color.Name() + " Player"
	}
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
		Name:  name,
	}
}

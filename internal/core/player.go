package core

import (
	"github.com/google/uuid"
)

const (
	DefaultDepth = 5
	MaxDepth     = 10
)

// Player is the complete game entity with all state
type Player struct {
	ID        string     `json:"id"`
	Color     Color      `json:"color"`
	Type      PlayerType `json:"type"`
	Depth     int        `json:"depth,omitempty"`     // Only for minimax
	NoPruning bool       `json:"noPruning,omitempty"` // Only for minimax
	Seed      int64      `json:"seed,omitempty"`      // Only for random and greedy
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type      PlayerType `json:"type" validate:"required,oneof=1 2 3 4"`
	Depth     int        `json:"depth,omitempty" validate:"omitempty,min=1,max=10"`
	NoPruning bool       `json:"noPruning,omitempty"`
	Seed      int64      `json:"seed,omitempty"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  config.Type,
	}

	switch config.Type {
	case PlayerMinimax:
		player.Depth = config.Depth
		if player.Depth <= 0 {
			player.Depth = DefaultDepth
		}
		player.NoPruning = config.NoPruning
	case PlayerRandom, PlayerGreedy:
		player.Seed = config.Seed
	}

	return player
}

func (p *Player) IsHuman() bool {
	return p == nil || p.Type == PlayerHuman
}

// Config returns the configuration the player was built from
func (p *Player) Config() PlayerConfig {
	return PlayerConfig{
		Type:      p.Type,
		Depth:     p.Depth,
		NoPruning: p.NoPruning,
		Seed:      p.Seed,
	}
}

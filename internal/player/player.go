// Package player tracks the known players that moderation actions are recorded
// against. Players are created or refreshed through upserts keyed on their stable
// external user id, never deleted through this API.
package player

import (
	"context"
	"time"

	"github.com/modlog/modlog/internal/metrics"
)

type Player struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	JoinDate time.Time `json:"join_date"`
	LastSeen time.Time `json:"last_seen"`
}

// Players provides access to the player records.
type Players struct {
	repo Repository
}

func NewPlayers(repo Repository) Players {
	return Players{repo: repo}
}

// Save inserts the player or, when the user id already exists, updates the username
// and refreshes last_seen. The join date is never touched after first insert.
func (p Players) Save(ctx context.Context, userID int64, username string) (Player, error) {
	player, errUpsert := p.repo.Upsert(ctx, userID, username)
	if errUpsert != nil {
		return Player{}, errUpsert
	}

	metrics.PlayerUpserts.Inc()

	return player, nil
}

func (p Players) ByUserID(ctx context.Context, userID int64) (Player, error) {
	return p.repo.ByUserID(ctx, userID)
}

package player

import (
	"context"

	"github.com/modlog/modlog/internal/database"
)

type Repository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return Repository{db: db}
}

func (r Repository) Upsert(ctx context.Context, userID int64, username string) (Player, error) {
	const query = `
		INSERT INTO players (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET username = EXCLUDED.username, last_seen = now()
		RETURNING user_id, username, join_date, last_seen`

	var player Player
	if err := r.db.
		QueryRow(ctx, query, userID, username).
		Scan(&player.UserID, &player.Username, &player.JoinDate, &player.LastSeen); err != nil {
		return Player{}, database.DBErr(err)
	}

	return player, nil
}

func (r Repository) ByUserID(ctx context.Context, userID int64) (Player, error) {
	row, errRow := r.db.QueryRowBuilder(ctx, r.db.
		Builder().
		Select("user_id", "username", "join_date", "last_seen").
		From("players").
		Where("user_id = ?", userID))
	if errRow != nil {
		return Player{}, errRow
	}

	var player Player
	if err := row.Scan(&player.UserID, &player.Username, &player.JoinDate, &player.LastSeen); err != nil {
		return Player{}, database.DBErr(err)
	}

	return player, nil
}

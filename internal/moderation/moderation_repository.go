package moderation

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

// Save inserts a new moderation. Expiry is computed by the store inside the same
// statement, so issued_at and expires_at come from one now() and no clock skew can
// leak in between read and write. The duration is passed twice because it feeds both
// the stored column and make_interval, letting each placeholder keep its own type.
func (r Repository) Save(ctx context.Context, opts Opts) (Moderation, error) {
	const query = `
		INSERT INTO moderations (user_id, moderator_id, moderator_name, type, reason, evidence,
			duration_seconds, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			CASE WHEN $8::bigint > 0 THEN now() + make_interval(secs => $8::bigint) ELSE NULL END)
		RETURNING id, user_id, moderator_id, moderator_name, type, reason, evidence,
			duration_seconds, issued_at, expires_at, is_active, acknowledged, discord_message_id`

	var mod Moderation
	if err := r.db.
		QueryRow(ctx, query,
			opts.UserID, opts.ModeratorID, opts.ModeratorName, opts.Type, opts.Reason,
			opts.Evidence, opts.DurationSeconds, opts.DurationSeconds).
		Scan(&mod.ID, &mod.UserID, &mod.ModeratorID, &mod.ModeratorName, &mod.Type,
			&mod.Reason, &mod.Evidence, &mod.DurationSeconds, &mod.IssuedAt, &mod.ExpiresAt,
			&mod.IsActive, &mod.Acknowledged, &mod.DiscordMessageID); err != nil {
		return Moderation{}, database.DBErr(err)
	}

	return mod, nil
}

// History returns every moderation for the player joined with their current
// username, newest first. A player without moderations, or one that does not exist
// at all, yields an empty slice.
func (r Repository) History(ctx context.Context, userID int64) ([]PlayerModeration, error) {
	rows, errRows := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("m.id", "m.user_id", "m.moderator_id", "m.moderator_name", "m.type",
			"m.reason", "m.evidence", "m.duration_seconds", "m.issued_at", "m.expires_at",
			"m.is_active", "m.acknowledged", "m.discord_message_id", "p.username").
		From("moderations m").
		InnerJoin("players p ON p.user_id = m.user_id").
		Where("m.user_id = ?", userID).
		OrderBy("m.issued_at DESC"))
	if errRows != nil {
		return nil, errRows
	}

	defer rows.Close()

	history := []PlayerModeration{}

	for rows.Next() {
		var mod PlayerModeration
		if errScan := rows.Scan(&mod.ID, &mod.UserID, &mod.ModeratorID, &mod.ModeratorName,
			&mod.Type, &mod.Reason, &mod.Evidence, &mod.DurationSeconds, &mod.IssuedAt,
			&mod.ExpiresAt, &mod.IsActive, &mod.Acknowledged, &mod.DiscordMessageID,
			&mod.Username); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		history = append(history, mod)
	}

	if rows.Err() != nil {
		return nil, database.DBErr(rows.Err())
	}

	return history, nil
}

// ActiveByType filters on the is_active flag only. A row can still be returned after
// its expiry has passed if cleanup has not run yet, callers gating on this must also
// compare expires_at themselves or rely on the sweeper cadence.
func (r Repository) ActiveByType(ctx context.Context, userID int64, modType Type) ([]Moderation, error) {
	rows, errRows := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("id", "user_id", "moderator_id", "moderator_name", "type", "reason",
			"evidence", "duration_seconds", "issued_at", "expires_at", "is_active",
			"acknowledged", "discord_message_id").
		From("moderations").
		Where("user_id = ? AND type = ? AND is_active = true", userID, string(modType)).
		OrderBy("issued_at DESC"))
	if errRows != nil {
		return nil, errRows
	}

	defer rows.Close()

	active := []Moderation{}

	for rows.Next() {
		var mod Moderation
		if errScan := rows.Scan(&mod.ID, &mod.UserID, &mod.ModeratorID, &mod.ModeratorName,
			&mod.Type, &mod.Reason, &mod.Evidence, &mod.DurationSeconds, &mod.IssuedAt,
			&mod.ExpiresAt, &mod.IsActive, &mod.Acknowledged, &mod.DiscordMessageID); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		active = append(active, mod)
	}

	if rows.Err() != nil {
		return nil, database.DBErr(rows.Err())
	}

	return active, nil
}

func (r Repository) CleanupExpired(ctx context.Context) (int64, error) {
	const query = `
		WITH expired AS (
			UPDATE moderations
			SET is_active = false
			WHERE is_active = true AND expires_at IS NOT NULL AND expires_at < now()
			RETURNING id
		)
		SELECT count(*) FROM expired`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, database.DBErr(err)
	}

	return count, nil
}

func (r Repository) Stats(ctx context.Context) (Stats, error) {
	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE type = 'ban'),
			count(*) FILTER (WHERE type = 'warning'),
			count(*) FILTER (WHERE type = 'kick'),
			count(*) FILTER (WHERE is_active = true),
			count(*) FILTER (WHERE is_active = true AND type = 'ban'),
			count(*) FILTER (WHERE is_active = true AND type = 'warning'),
			count(*) FILTER (WHERE issued_at > now() - interval '7 days')
		FROM moderations`

	var stats Stats
	if err := r.db.
		QueryRow(ctx, query).
		Scan(&stats.TotalModerations, &stats.TotalBans, &stats.TotalWarnings,
			&stats.TotalKicks, &stats.ActiveModerations, &stats.ActiveBans,
			&stats.ActiveWarnings, &stats.Last7Days); err != nil {
		return Stats{}, database.DBErr(err)
	}

	return stats, nil
}

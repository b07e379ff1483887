// Package moderation implements the disciplinary action records (bans, warnings and
// kicks), their lifecycle and the aggregate statistics over them.
package moderation

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/modlog/modlog/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Type is the category of a moderation action. The store enforces the valid set with
// a check constraint, the application does not pre-validate so that arbitrary values
// surface the constraint violation instead of being silently rewritten.
type Type string

const (
	TypeBan     Type = "ban"
	TypeWarning Type = "warning"
	TypeKick    Type = "kick"
)

type Moderation struct {
	ID               uuid.UUID  `json:"id"`
	UserID           int64      `json:"user_id"`
	ModeratorID      int64      `json:"moderator_id"`
	ModeratorName    string     `json:"moderator_name"`
	Type             Type       `json:"type"`
	Reason           string     `json:"reason"`
	Evidence         []string   `json:"evidence"`
	DurationSeconds  int64      `json:"duration_seconds"`
	IssuedAt         time.Time  `json:"issued_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	IsActive         bool       `json:"is_active"`
	Acknowledged     bool       `json:"acknowledged"`
	DiscordMessageID *string    `json:"discord_message_id"`
}

// PlayerModeration is a moderation joined with the player's current username, used
// by the history lookup.
type PlayerModeration struct {
	Moderation
	Username string `json:"username"`
}

// Stats is a single consistent snapshot of the aggregate counts.
type Stats struct {
	TotalModerations  int64 `json:"total_moderations"`
	TotalBans         int64 `json:"total_bans"`
	TotalWarnings     int64 `json:"total_warnings"`
	TotalKicks        int64 `json:"total_kicks"`
	ActiveModerations int64 `json:"active_moderations"`
	ActiveBans        int64 `json:"active_bans"`
	ActiveWarnings    int64 `json:"active_warnings"`
	Last7Days         int64 `json:"last_7_days"`
}

// Opts holds the caller supplied fields for a new moderation. A zero DurationSeconds
// means permanent, expiry is computed inside the insert statement so the timestamp
// comes from a single clock.
type Opts struct {
	UserID          int64
	ModeratorID     int64
	ModeratorName   string
	Type            Type
	Reason          string
	Evidence        []string
	DurationSeconds int64
}

type Moderations struct {
	repo Repository
}

func NewModerations(repo Repository) Moderations {
	return Moderations{repo: repo}
}

func (m Moderations) Save(ctx context.Context, opts Opts) (Moderation, error) {
	if opts.Evidence == nil {
		opts.Evidence = []string{}
	}

	mod, errSave := m.repo.Save(ctx, opts)
	if errSave != nil {
		return Moderation{}, errSave
	}

	metrics.ModerationActions.With(prometheus.Labels{"type": string(mod.Type)}).Inc()

	return mod, nil
}

func (m Moderations) History(ctx context.Context, userID int64) ([]PlayerModeration, error) {
	return m.repo.History(ctx, userID)
}

func (m Moderations) ActiveByType(ctx context.Context, userID int64, modType Type) ([]Moderation, error) {
	return m.repo.ActiveByType(ctx, userID, modType)
}

// CleanupExpired deactivates every active moderation whose expiry has passed and
// returns how many rows changed. Running it again immediately is a no-op.
func (m Moderations) CleanupExpired(ctx context.Context) (int64, error) {
	count, errCleanup := m.repo.CleanupExpired(ctx)
	if errCleanup != nil {
		return 0, errCleanup
	}

	metrics.ModerationsExpired.Add(float64(count))

	return count, nil
}

func (m Moderations) Stats(ctx context.Context) (Stats, error) {
	return m.repo.Stats(ctx)
}

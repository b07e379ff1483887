package moderation_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/modlog/modlog/internal/moderation"
	"github.com/modlog/modlog/internal/player"
	"github.com/modlog/modlog/internal/tests"
	"github.com/stretchr/testify/require"
)

var fixture *tests.Fixture //nolint:gochecknoglobals

func TestMain(m *testing.M) {
	fixture = tests.NewFixture()
	defer fixture.Close()

	os.Exit(m.Run())
}

func newRouter() http.Handler {
	router := fixture.CreateRouter()
	player.NewHandler(router, player.NewPlayers(player.NewRepository(fixture.Database)))
	moderation.NewHandler(router, moderation.NewModerations(moderation.NewRepository(fixture.Database)))

	return router
}

func createPlayer(t *testing.T, router http.Handler, userID int64, username string) {
	t.Helper()

	tests.PostOK[player.Player](t, router, "/players", map[string]any{
		"user_id":  userID,
		"username": username,
	}, http.StatusOK)
}

func createModeration(t *testing.T, router http.Handler, body map[string]any) moderation.Moderation {
	t.Helper()

	return tests.PostOK[moderation.Moderation](t, router, "/moderations", body, http.StatusCreated)
}

func TestModerationCreate(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2000, "carol")

	permanent := createModeration(t, router, map[string]any{
		"user_id":        2000,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "ban",
		"reason":         "cheating",
		"evidence":       []string{"https://example.com/demo1"},
	})
	require.NotEmpty(t, permanent.ID)
	require.Equal(t, moderation.TypeBan, permanent.Type)
	require.Equal(t, int64(0), permanent.DurationSeconds)
	require.Nil(t, permanent.ExpiresAt)
	require.True(t, permanent.IsActive)
	require.False(t, permanent.Acknowledged)
	require.Nil(t, permanent.DiscordMessageID)
	require.Equal(t, []string{"https://example.com/demo1"}, permanent.Evidence)

	timed := createModeration(t, router, map[string]any{
		"user_id":          2000,
		"moderator_id":     1,
		"moderator_name":   "mod",
		"type":             "warning",
		"reason":           "spam",
		"duration_seconds": 3600,
	})
	require.NotNil(t, timed.ExpiresAt)
	require.WithinDuration(t, timed.IssuedAt.Add(time.Hour), *timed.ExpiresAt, time.Second*5)
	require.Empty(t, timed.Evidence)
}

func TestModerationCreateInvalid(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2001, "dave")

	before := tests.GetOK[[]moderation.PlayerModeration](t, router, "/players/2001/moderations")

	// The check constraint rejects unknown types, nothing gets inserted.
	tests.Err(t, router, http.MethodPost, "/moderations", map[string]any{
		"user_id":        2001,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "mute",
		"reason":         "testing",
	}, http.StatusInternalServerError)

	after := tests.GetOK[[]moderation.PlayerModeration](t, router, "/players/2001/moderations")
	require.Len(t, after, len(before))

	// Unknown players fail the foreign key.
	tests.Err(t, router, http.MethodPost, "/moderations", map[string]any{
		"user_id":        987654321,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "ban",
		"reason":         "testing",
	}, http.StatusInternalServerError)

	tests.Err(t, router, http.MethodPost, "/moderations", map[string]any{
		"user_id":      2001,
		"moderator_id": 1,
		"type":         "ban",
	}, http.StatusBadRequest)
}

func TestModerationHistoryOrdering(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2002, "erin")

	older := createModeration(t, router, map[string]any{
		"user_id":        2002,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "warning",
		"reason":         "first",
	})

	errBackdate := fixture.Database.Exec(t.Context(),
		"UPDATE moderations SET issued_at = issued_at - interval '1 hour' WHERE id = $1", older.ID)
	require.NoError(t, errBackdate)

	newer := createModeration(t, router, map[string]any{
		"user_id":        2002,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "kick",
		"reason":         "second",
	})

	history := tests.GetOK[[]moderation.PlayerModeration](t, router, "/players/2002/moderations")
	require.Len(t, history, 2)
	require.Equal(t, newer.ID, history[0].ID)
	require.Equal(t, older.ID, history[1].ID)
	require.Equal(t, "erin", history[0].Username)

	empty := tests.GetOK[[]moderation.PlayerModeration](t, router, "/players/111222333/moderations")
	require.Empty(t, empty)
}

func TestModerationActiveLookup(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2003, "frank")

	ban := createModeration(t, router, map[string]any{
		"user_id":        2003,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "ban",
		"reason":         "aimbot",
	})
	createModeration(t, router, map[string]any{
		"user_id":        2003,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "warning",
		"reason":         "language",
	})
	createModeration(t, router, map[string]any{
		"user_id":        2003,
		"moderator_id":   1,
		"moderator_name": "mod",
		"type":           "kick",
		"reason":         "afk",
	})

	active := tests.GetOK[[]moderation.Moderation](t, router, "/moderations/active/2003/ban")
	require.Len(t, active, 1)
	require.Equal(t, ban.ID, active[0].ID)

	for _, mod := range active {
		require.Equal(t, moderation.TypeBan, mod.Type)
		require.True(t, mod.IsActive)
	}

	empty := tests.GetOK[[]moderation.Moderation](t, router, "/moderations/active/111222333/ban")
	require.Empty(t, empty)
}

func TestModerationCleanup(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2004, "grace")

	mod := createModeration(t, router, map[string]any{
		"user_id":          2004,
		"moderator_id":     1,
		"moderator_name":   "mod",
		"type":             "ban",
		"reason":           "temporary",
		"duration_seconds": 3600,
	})

	message := tests.PostMessage(t, router, "/moderations/cleanup", nil)
	require.Equal(t, "Deactivated 0 expired moderations", message)

	stillActive := tests.GetOK[[]moderation.Moderation](t, router, "/moderations/active/2004/ban")
	require.Len(t, stillActive, 1)

	errExpire := fixture.Database.Exec(t.Context(),
		"UPDATE moderations SET expires_at = now() - interval '1 minute' WHERE id = $1", mod.ID)
	require.NoError(t, errExpire)

	message = tests.PostMessage(t, router, "/moderations/cleanup", nil)
	require.Equal(t, "Deactivated 1 expired moderations", message)

	message = tests.PostMessage(t, router, "/moderations/cleanup", nil)
	require.Equal(t, "Deactivated 0 expired moderations", message)

	active := tests.GetOK[[]moderation.Moderation](t, router, "/moderations/active/2004/ban")
	require.Empty(t, active)
}

func TestModerationStats(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2005, "heidi")

	for _, modType := range []string{"ban", "warning", "kick"} {
		createModeration(t, router, map[string]any{
			"user_id":        2005,
			"moderator_id":   1,
			"moderator_name": "mod",
			"type":           modType,
			"reason":         fmt.Sprintf("stats %s", modType),
		})
	}

	stats := tests.GetOK[moderation.Stats](t, router, "/statistics")
	require.Equal(t, stats.TotalModerations, stats.TotalBans+stats.TotalWarnings+stats.TotalKicks)
	require.GreaterOrEqual(t, stats.TotalBans, int64(1))
	require.GreaterOrEqual(t, stats.ActiveModerations, int64(3))
	require.GreaterOrEqual(t, stats.Last7Days, int64(3))
	require.LessOrEqual(t, stats.ActiveBans, stats.TotalBans)
	require.LessOrEqual(t, stats.ActiveWarnings, stats.TotalWarnings)
}

func TestExpirationMonitor(t *testing.T) {
	router := newRouter()
	createPlayer(t, router, 2006, "ivan")

	mod := createModeration(t, router, map[string]any{
		"user_id":          2006,
		"moderator_id":     1,
		"moderator_name":   "mod",
		"type":             "warning",
		"reason":           "short lived",
		"duration_seconds": 3600,
	})

	errExpire := fixture.Database.Exec(t.Context(),
		"UPDATE moderations SET expires_at = now() - interval '1 minute' WHERE id = $1", mod.ID)
	require.NoError(t, errExpire)

	moderations := moderation.NewModerations(moderation.NewRepository(fixture.Database))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	monitor := moderation.NewExpirationMonitor(moderations, time.Millisecond*50)
	go monitor.Start(ctx)

	require.Eventually(t, func() bool {
		active, errActive := moderations.ActiveByType(ctx, 2006, moderation.TypeWarning)

		return errActive == nil && len(active) == 0
	}, time.Second*5, time.Millisecond*50)
}

package config_test

import (
	"testing"
	"time"

	"github.com/modlog/modlog/internal/config"
	"github.com/modlog/modlog/internal/log"
	"github.com/stretchr/testify/require"
)

func TestReadDefaults(t *testing.T) {
	cfg, errConfig := config.Read("")
	require.NoError(t, errConfig)

	require.Equal(t, "modlog", cfg.General.SiteName)
	require.Equal(t, "127.0.0.1:6970", cfg.HTTP.Addr())
	require.True(t, cfg.DB.AutoMigrate)
	require.Equal(t, time.Second*5, cfg.DB.StatementTimeout)
	require.Equal(t, log.Info, cfg.Log.Level)
	require.False(t, cfg.QueryExec.Enabled)
	require.True(t, cfg.Cleanup.Enabled)
	require.Equal(t, time.Minute, cfg.Cleanup.Interval)
}

package cmd

import (
	"log/slog"
	"os"

	"github.com/modlog/modlog/internal/config"
	"github.com/modlog/modlog/internal/database"
	"github.com/modlog/modlog/internal/log"
	"github.com/spf13/cobra"
)

// migrateCmd applies the database schema migrations manually.
func migrateCmd() *cobra.Command {
	var downAll bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, _ []string) {
			conf, errConfig := config.Read(cfgFile)
			if errConfig != nil {
				slog.Error("Failed to read config", log.ErrAttr(errConfig))
				os.Exit(1)
			}

			action := database.MigrateUp
			if downAll {
				action = database.MigrateDn
			}

			db := database.New(conf.DB.DSN, false, false, 0)
			if errMigrate := db.Migrate(cmd.Context(), action, conf.DB.DSN); errMigrate != nil {
				slog.Error("Could not migrate schema", log.ErrAttr(errMigrate))
				os.Exit(1)
			}

			slog.Info("Migration complete")
		},
	}

	cmd.Flags().BoolVarP(&downAll, "down", "d", false, "Fully reverts all migrations")

	return cmd
}

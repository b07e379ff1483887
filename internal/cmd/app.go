package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modlog/modlog/internal/config"
	"github.com/modlog/modlog/internal/database"
	"github.com/modlog/modlog/internal/httphelper"
	"github.com/modlog/modlog/internal/log"
	"github.com/modlog/modlog/internal/metrics"
	"github.com/modlog/modlog/internal/moderation"
	"github.com/modlog/modlog/internal/player"
	"github.com/modlog/modlog/internal/query"
)

var (
	BuildVersion = "master" //nolint:gochecknoglobals
	BuildCommit  = ""       //nolint:gochecknoglobals
	BuildDate    = ""       //nolint:gochecknoglobals
)

type Modlog struct {
	config      config.Config
	database    database.Database
	players     player.Players
	moderations moderation.Moderations
	sweeper     *moderation.ExpirationMonitor

	logCloser func()
}

func NewModlog() (*Modlog, error) {
	conf, errConfig := config.Read(cfgFile)
	if errConfig != nil {
		return nil, errConfig
	}

	return &Modlog{config: conf}, nil
}

// Init connects the database and wires up the domains. An unreachable database is
// logged as a warning rather than treated as fatal, requests fail individually until
// the store comes back and the process keeps listening.
func (app *Modlog) Init(ctx context.Context) error {
	conf := app.config

	app.logCloser = log.MustCreateLogger(conf.Log.Level, conf.Log.File)

	slog.Info("Starting modlog...",
		slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit),
		slog.String("date", BuildDate))

	dbConn := database.New(conf.DB.DSN, conf.DB.AutoMigrate, conf.DB.LogQueries, conf.DB.StatementTimeout)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		slog.Warn("Cannot connect to database, continuing without a connection", log.ErrAttr(errConnect))
	}

	app.database = dbConn
	app.players = player.NewPlayers(player.NewRepository(app.database))
	app.moderations = moderation.NewModerations(moderation.NewRepository(app.database))
	app.sweeper = moderation.NewExpirationMonitor(app.moderations, conf.Cleanup.Interval)

	return nil
}

func (app *Modlog) StartBackground(ctx context.Context) {
	if app.config.Cleanup.Enabled {
		go app.sweeper.Start(ctx)
	}
}

func (app *Modlog) Serve(rootCtx context.Context) error {
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf := app.config

	router := httphelper.CreateRouter(httphelper.RouterOpts{
		Mode:              conf.General.Mode,
		LogRequests:       conf.HTTP.LogRequests,
		LogLevel:          conf.Log.Level,
		CORSEnabled:       conf.HTTP.CORSEnabled,
		CORSOrigins:       conf.HTTP.CORSOrigins,
		PrometheusEnabled: conf.HTTP.PrometheusEnabled,
		Version:           BuildVersion,
	})

	database.NewHandler(router, app.database, conf.DB.DSN)
	player.NewHandler(router, app.players)
	moderation.NewHandler(router, app.moderations)
	query.NewHandler(router, app.database, conf.QueryExec.Enabled)

	if conf.HTTP.PrometheusEnabled {
		metrics.NewHandler(router)
	}

	httpServer := httphelper.NewServer(conf.HTTP.Addr(), router)

	go func() {
		<-ctx.Done()

		slog.Info("Shutting down HTTP service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if errShutdown := httpServer.Shutdown(shutdownCtx); errShutdown != nil { //nolint:contextcheck
			slog.Error("Error shutting down http service", log.ErrAttr(errShutdown))
		}
	}()

	slog.Info("Starting HTTP server", slog.String("address", conf.HTTP.Addr()))

	errServe := httpServer.ListenAndServe()
	if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		slog.Error("HTTP server returned error", log.ErrAttr(errServe))
	}

	<-ctx.Done()

	slog.Info("Exiting...")

	return nil
}

func (app *Modlog) Close(_ context.Context) error {
	if app.database != nil {
		if errClose := app.database.Close(); errClose != nil {
			slog.Error("Failed to close database cleanly", log.ErrAttr(errClose))
		}
	}

	if app.logCloser != nil {
		app.logCloser()
	}

	return nil
}

package httphelper

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/log"
	sloggin "github.com/samber/slog-gin"
)

type RouterOpts struct {
	Mode              string
	LogRequests       bool
	LogLevel          log.Level
	CORSEnabled       bool
	CORSOrigins       []string
	PrometheusEnabled bool
	Version           string
}

// CreateRouter constructs a new gin.Engine with the provided RouterOpts. The health
// endpoint is always mounted, everything else is opt-in.
func CreateRouter(opts RouterOpts) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(recoveryHandler())

	if opts.LogRequests {
		useSloggin(engine, opts.LogLevel)
	}

	if opts.CORSEnabled {
		useCors(engine, opts.CORSOrigins)
	}

	if opts.PrometheusEnabled {
		usePrometheus(engine)
	}

	engine.GET("/health", onHealth(opts.Version))

	return engine
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func onHealth(version string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   version,
		})
	}
}

func recoveryHandler() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(ctx *gin.Context, err any) {
		slog.Error("Recovery error:", slog.String("err", fmt.Sprintf("%v", err)))

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, errResponse{
			Success: false,
			Error:   "Something went wrong",
		})
	})
}

func useSloggin(engine *gin.Engine, level log.Level) {
	logConfig := sloggin.Config{
		DefaultLevel:     log.ToSlogLevel(level),
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}

	engine.Use(sloggin.NewWithConfig(slog.Default(), logConfig))
}

func useCors(engine *gin.Engine, origins []string) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowWildcard = true

	engine.Use(cors.New(corsConfig))
}

func usePrometheus(engine *gin.Engine) {
	prom := ginprom.New(func(prom *ginprom.Prometheus) {
		prom.Namespace = "modlog"
		prom.Subsystem = "http"
	})
	engine.Use(prom.Instrument())
}

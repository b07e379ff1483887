package database

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/httphelper"
)

type schemaHandler struct {
	db  Database
	dsn string
}

// NewHandler registers the schema initialization endpoint. The underlying
// migration runner is idempotent, so repeated calls are harmless.
func NewHandler(engine *gin.Engine, db Database, dsn string) {
	handler := schemaHandler{db: db, dsn: dsn}

	engine.POST("/init", handler.onInit())
}

func (h schemaHandler) onInit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if errMigrate := h.db.Migrate(ctx, MigrateUp, h.dsn); errMigrate != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errMigrate)

			return
		}

		httphelper.ResponseMessage(ctx, http.StatusOK, "Database initialized successfully")
	}
}

// Package query exposes the raw SQL passthrough endpoint. It hands arbitrary SQL to
// the store, so it stays disabled unless explicitly turned on in the config.
package query

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/database"
	"github.com/modlog/modlog/internal/httphelper"
)

var (
	ErrQueryMissing  = errors.New("query is required")
	ErrQueryDisabled = errors.New("query execution is disabled")
)

type queryHandler struct {
	db      database.Database
	enabled bool
}

func NewHandler(engine *gin.Engine, db database.Database, enabled bool) {
	handler := queryHandler{db: db, enabled: enabled}

	engine.POST("/query", handler.onQuery())
}

type queryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

type queryResponse struct {
	Success  bool             `json:"success"`
	Data     []map[string]any `json:"data"`
	RowCount int64            `json:"rowCount"`
}

func (h queryHandler) onQuery() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !h.enabled {
			httphelper.ResponseErr(ctx, http.StatusForbidden, ErrQueryDisabled)

			return
		}

		req, ok := httphelper.BindJSON[queryRequest](ctx)
		if !ok {
			return
		}

		if strings.TrimSpace(req.Query) == "" {
			httphelper.ResponseErr(ctx, http.StatusBadRequest, ErrQueryMissing)

			return
		}

		rows, errQuery := h.db.Query(ctx, req.Query, req.Params...)
		if errQuery != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errQuery)

			return
		}

		defer rows.Close()

		fields := rows.FieldDescriptions()
		data := []map[string]any{}

		for rows.Next() {
			values, errValues := rows.Values()
			if errValues != nil {
				httphelper.ResponseErr(ctx, http.StatusInternalServerError, errValues)

				return
			}

			row := map[string]any{}
			for idx, field := range fields {
				row[field.Name] = values[idx]
			}

			data = append(data, row)
		}

		if rows.Err() != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, rows.Err())

			return
		}

		rowCount := int64(len(data))
		if rowCount == 0 {
			// Statements like UPDATE produce no rows but still report what changed.
			rowCount = rows.CommandTag().RowsAffected()
		}

		ctx.JSON(http.StatusOK, queryResponse{Success: true, Data: data, RowCount: rowCount})
	}
}

package player

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/database"
	"github.com/modlog/modlog/internal/httphelper"
)

var ErrMissingField = errors.New("user_id and username are required")

type playerHandler struct {
	players Players
}

func NewHandler(engine *gin.Engine, players Players) {
	handler := playerHandler{players: players}

	engine.POST("/players", handler.onSave())
	engine.GET("/players/:user_id", handler.onByUserID())
}

type saveRequest struct {
	UserID   *int64  `json:"user_id"`
	Username *string `json:"username"`
}

func (h playerHandler) onSave() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[saveRequest](ctx)
		if !ok {
			return
		}

		if req.UserID == nil || req.Username == nil {
			httphelper.ResponseErr(ctx, http.StatusBadRequest, ErrMissingField)

			return
		}

		player, errSave := h.players.Save(ctx, *req.UserID, *req.Username)
		if errSave != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errSave)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusOK, player)
	}
}

func (h playerHandler) onByUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := httphelper.GetInt64Param(ctx, "user_id")
		if !ok {
			return
		}

		player, errPlayer := h.players.ByUserID(ctx, userID)
		if errPlayer != nil {
			if errors.Is(errPlayer, database.ErrNoResult) {
				httphelper.ResponseErr(ctx, http.StatusNotFound, errPlayer)

				return
			}

			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errPlayer)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusOK, player)
	}
}

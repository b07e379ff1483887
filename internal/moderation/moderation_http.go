package moderation

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/httphelper"
)

var ErrMissingField = errors.New("user_id, moderator_id, moderator_name, type and reason are required")

type moderationHandler struct {
	moderations Moderations
}

func NewHandler(engine *gin.Engine, moderations Moderations) {
	handler := moderationHandler{moderations: moderations}

	engine.POST("/moderations", handler.onCreate())
	engine.GET("/players/:user_id/moderations", handler.onHistory())
	engine.GET("/moderations/active/:user_id/:type", handler.onActive())
	engine.POST("/moderations/cleanup", handler.onCleanup())
	engine.GET("/statistics", handler.onStats())
}

type createRequest struct {
	UserID          *int64   `json:"user_id"`
	ModeratorID     *int64   `json:"moderator_id"`
	ModeratorName   *string  `json:"moderator_name"`
	Type            *Type    `json:"type"`
	Reason          *string  `json:"reason"`
	Evidence        []string `json:"evidence"`
	DurationSeconds int64    `json:"duration_seconds"`
}

func (h moderationHandler) onCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[createRequest](ctx)
		if !ok {
			return
		}

		if req.UserID == nil || req.ModeratorID == nil || req.ModeratorName == nil ||
			req.Type == nil || req.Reason == nil {
			httphelper.ResponseErr(ctx, http.StatusBadRequest, ErrMissingField)

			return
		}

		mod, errSave := h.moderations.Save(ctx, Opts{
			UserID:          *req.UserID,
			ModeratorID:     *req.ModeratorID,
			ModeratorName:   *req.ModeratorName,
			Type:            *req.Type,
			Reason:          *req.Reason,
			Evidence:        req.Evidence,
			DurationSeconds: req.DurationSeconds,
		})
		if errSave != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errSave)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusCreated, mod)
	}
}

func (h moderationHandler) onHistory() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := httphelper.GetInt64Param(ctx, "user_id")
		if !ok {
			return
		}

		history, errHistory := h.moderations.History(ctx, userID)
		if errHistory != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errHistory)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusOK, history)
	}
}

func (h moderationHandler) onActive() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := httphelper.GetInt64Param(ctx, "user_id")
		if !ok {
			return
		}

		modType, okType := httphelper.GetStringParam(ctx, "type")
		if !okType {
			return
		}

		active, errActive := h.moderations.ActiveByType(ctx, userID, Type(modType))
		if errActive != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errActive)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusOK, active)
	}
}

func (h moderationHandler) onCleanup() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		count, errCleanup := h.moderations.CleanupExpired(ctx)
		if errCleanup != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errCleanup)

			return
		}

		httphelper.ResponseMessage(ctx, http.StatusOK,
			fmt.Sprintf("Deactivated %d expired moderations", count))
	}
}

func (h moderationHandler) onStats() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		stats, errStats := h.moderations.Stats(ctx)
		if errStats != nil {
			httphelper.ResponseErr(ctx, http.StatusInternalServerError, errStats)

			return
		}

		httphelper.ResponseOK(ctx, http.StatusOK, stats)
	}
}

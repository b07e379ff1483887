// Package httphelper provides the router construction and the small helpers shared
// by all HTTP handlers: the response envelope, body binding and path param parsing.
package httphelper

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ErrBadRequest      = errors.New("invalid request")
	ErrInternal        = errors.New("internal server error")
	ErrParamKeyMissing = errors.New("param key not found")
	ErrParamParse      = errors.New("failed to parse param value")
)

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func ResponseOK(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, dataResponse{Success: true, Data: data})
}

func ResponseMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, messageResponse{Success: true, Message: message})
}

// ResponseErr writes the error envelope. Store errors are passed through verbatim so
// callers see the underlying constraint or execution failure.
func ResponseErr(ctx *gin.Context, status int, err error) {
	ctx.AbortWithStatusJSON(status, errResponse{Success: false, Error: err.Error()})
}

// BindJSON decodes the request body into T, writing a usage error response on failure.
func BindJSON[T any](ctx *gin.Context) (T, bool) { //nolint:ireturn
	var value T
	if err := ctx.ShouldBindJSON(&value); err != nil {
		ResponseErr(ctx, http.StatusBadRequest, ErrBadRequest)

		return value, false
	}

	return value, true
}

// GetInt64Param parses a path parameter as int64, writing a usage error response when
// the value is missing or malformed.
func GetInt64Param(ctx *gin.Context, key string) (int64, bool) {
	valueStr := ctx.Param(key)
	if valueStr == "" {
		ResponseErr(ctx, http.StatusBadRequest, ErrParamKeyMissing)

		return 0, false
	}

	value, valueErr := strconv.ParseInt(valueStr, 10, 64)
	if valueErr != nil {
		ResponseErr(ctx, http.StatusBadRequest, errors.Join(valueErr, ErrParamParse))

		return 0, false
	}

	return value, true
}

func GetStringParam(ctx *gin.Context, key string) (string, bool) {
	valueStr := ctx.Param(key)
	if valueStr == "" {
		ResponseErr(ctx, http.StatusBadRequest, ErrParamKeyMissing)

		return "", false
	}

	return valueStr, true
}

// NewServer allocates a preconfigured *http.Server.
func NewServer(listenAddr string, handler http.Handler) *http.Server {
	httpServer := &http.Server{
		Addr:           listenAddr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return httpServer
}

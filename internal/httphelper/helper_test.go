package httphelper_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/modlog/modlog/internal/httphelper"
	"github.com/stretchr/testify/require"
)

func testContext(params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Params = params

	return ctx, recorder
}

func TestGetInt64Param(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext(gin.Params{{Key: "user_id", Value: "76561198084134025"}})
	value, ok := httphelper.GetInt64Param(ctx, "user_id")
	require.True(t, ok)
	require.Equal(t, int64(76561198084134025), value)

	ctx, recorder := testContext(gin.Params{{Key: "user_id", Value: "abc"}})
	_, ok = httphelper.GetInt64Param(ctx, "user_id")
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	ctx, recorder = testContext(gin.Params{})
	_, ok = httphelper.GetInt64Param(ctx, "user_id")
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetStringParam(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext(gin.Params{{Key: "type", Value: "ban"}})
	value, ok := httphelper.GetStringParam(ctx, "type")
	require.True(t, ok)
	require.Equal(t, "ban", value)

	ctx, recorder := testContext(gin.Params{})
	_, ok = httphelper.GetStringParam(ctx, "type")
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := httphelper.CreateRouter(httphelper.RouterOpts{Mode: gin.TestMode, Version: "test"})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"status":"ok"`)
	require.Contains(t, recorder.Body.String(), `"timestamp"`)
}

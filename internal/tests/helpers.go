package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Endpoint performs a request against the router and asserts the response status.
func Endpoint(t *testing.T, router http.Handler, method string, path string, body any, expectedStatus int) *httptest.ResponseRecorder {
	t.Helper()

	reqCtx, cancel := context.WithTimeout(t.Context(), time.Second*10)
	defer cancel()

	recorder := httptest.NewRecorder()

	var bodyReader io.Reader
	if body != nil {
		bodyJSON, errJSON := json.Marshal(body)
		if errJSON != nil {
			t.Fatalf("Failed to encode request: %v", errJSON)
		}

		bodyReader = bytes.NewReader(bodyJSON)
	}

	request, errRequest := http.NewRequestWithContext(reqCtx, method, path, bodyReader)
	if errRequest != nil {
		t.Fatalf("Failed to make request: %v", errRequest)
	}

	router.ServeHTTP(recorder, request)

	require.Equal(t, expectedStatus, recorder.Code, "Received invalid response code. method: %s path: %s body: %s",
		method, path, recorder.Body.String())

	return recorder
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var resp envelope[T]
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return resp
}

// GetOK performs a GET request expecting 200 and returns the decoded data payload.
func GetOK[T any](t *testing.T, router http.Handler, path string) T {
	t.Helper()

	resp := decode[T](t, Endpoint(t, router, http.MethodGet, path, nil, http.StatusOK))
	require.True(t, resp.Success)

	return resp.Data
}

// PostOK performs a POST request expecting the given success status and returns the
// decoded data payload.
func PostOK[T any](t *testing.T, router http.Handler, path string, body any, expectedStatus int) T {
	t.Helper()

	resp := decode[T](t, Endpoint(t, router, http.MethodPost, path, body, expectedStatus))
	require.True(t, resp.Success)

	return resp.Data
}

// PostMessage performs a POST request expecting 200 and returns the message payload.
func PostMessage(t *testing.T, router http.Handler, path string, body any) string {
	t.Helper()

	resp := decode[struct{}](t, Endpoint(t, router, http.MethodPost, path, body, http.StatusOK))
	require.True(t, resp.Success)

	return resp.Message
}

// Err performs a request expecting a failure status and returns the error message.
func Err(t *testing.T, router http.Handler, method string, path string, body any, expectedStatus int) string {
	t.Helper()

	resp := decode[struct{}](t, Endpoint(t, router, method, path, body, expectedStatus))
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)

	return resp.Error
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAppErrorStatusAndUnwrap(t *testing.T) {
	cause := errors.New("redis: connection refused")
	appErr := NewError(CodeInternal, "rate limit unavailable", cause)
	if !errors.Is(appErr, cause) {
		t.Fatalf("want errors.Is to reach the cause")
	}
	if appErr.Status() != http.StatusInternalServerError || !appErr.ServerSide() {
		t.Fatalf("want 500 server side got %d %v", appErr.Status(), appErr.ServerSide())
	}
	if appErr.Error() != "rate limit unavailable: redis: connection refused" {
		t.Fatalf("unexpected message %q", appErr.Error())
	}

	limited := NewError(CodeTooManyRequests, "too many requests", nil)
	if limited.Status() != http.StatusTooManyRequests || limited.ServerSide() {
		t.Fatalf("want 429 client side got %d %v", limited.Status(), limited.ServerSide())
	}
	if limited.Error() != "too many requests" {
		t.Fatalf("unexpected message %q", limited.Error())
	}
}

func TestAbortStopsHandlerChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reached := false
	engine.GET("/secure", func(c *gin.Context) {
		Abort(c, NewError(CodeUnauthorized, "missing authorization header", nil))
	}, func(c *gin.Context) {
		reached = true
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))

	if reached {
		t.Fatalf("want handler chain aborted")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("http status want 401 got %d", rec.Code)
	}
	var body struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.StatusCode != CodeUnauthorized || body.Msg != "missing authorization header" {
		t.Fatalf("unexpected body %+v", body)
	}
}

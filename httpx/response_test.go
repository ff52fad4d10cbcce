package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type coded struct {
	status  int
	msg     string
	details any
}

func (c coded) Error() string   { return c.msg }
func (c coded) StatusCode() int { return c.status }
func (c coded) Details() any    { return c.details }

func decode(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestError_UsesStatusCoder(t *testing.T) {
	rr := httptest.NewRecorder()
	err := fmt.Errorf("wrapped: %w", coded{status: http.StatusNotFound, msg: "Property not found"})
	Error(rr, err)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
	// The wrapping prefix is part of err.Error(); callers wrap sparingly.
	if got := decode(t, rr).Message; !strings.Contains(got, "Property not found") {
		t.Errorf("unexpected message %q", got)
	}
}

func TestError_Details(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, coded{status: http.StatusBadRequest, msg: "validation failed", details: map[string]string{"title": "required"}})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"title":"required"`) {
		t.Errorf("details missing: %s", rr.Body.String())
	}
}

func TestError_HidesInternalText(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, errors.New("pq: connection refused to 10.0.0.3"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
	if got := decode(t, rr).Message; got != "internal server error" {
		t.Errorf("internal error leaked: %q", got)
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var dst struct{ Name string }
	if err := DecodeJSON(r, &dst); err != nil {
		t.Fatalf("empty body should decode: %v", err)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	var dst struct{ Name string }
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	if got := ClientIP(r); got != "10.1.2.3" {
		t.Errorf("ClientIP() = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP() with XFF = %q", got)
	}
}

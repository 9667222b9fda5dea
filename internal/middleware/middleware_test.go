package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/XavierBriggs/laxstat/internal/middleware"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/teams", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected generated uuid, got %q", seen)
	}
	if w.Header().Get(middleware.RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context id %q", w.Header().Get(middleware.RequestIDHeader), seen)
	}
}

func TestRequestID_ReusesValidInbound(t *testing.T) {
	inbound := uuid.NewString()

	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/games", nil)
	req.Header.Set(middleware.RequestIDHeader, inbound)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != inbound {
		t.Errorf("expected inbound id %q, got %q", inbound, seen)
	}
}

func TestRequestID_ReplacesGarbageInbound(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/games", nil)
	req.Header.Set(middleware.RequestIDHeader, "<script>")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "<script>" {
		t.Fatal("garbage request id was propagated")
	}
}

func TestRequestLogger_LogsStatusAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.RequestID(middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("backend down"))
	})))

	req := httptest.NewRequest("GET", "/games?year=2024", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}

	if entry["level"] != "error" {
		t.Errorf("expected error level for 502, got %v", entry["level"])
	}
	if entry["status"] != float64(http.StatusBadGateway) {
		t.Errorf("expected status 502, got %v", entry["status"])
	}
	if entry["path"] != "/games" || entry["query"] != "year=2024" {
		t.Errorf("unexpected path/query: %v %v", entry["path"], entry["query"])
	}
	if entry["bytes"] != float64(len("backend down")) {
		t.Errorf("expected bytes %d, got %v", len("backend down"), entry["bytes"])
	}
	if entry["request_id"] == "" {
		t.Error("expected request id in log line")
	}
}

func TestRequestLogger_DefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}

	if entry["status"] != float64(http.StatusOK) || entry["level"] != "info" {
		t.Errorf("expected info/200, got %v/%v", entry["level"], entry["status"])
	}
}

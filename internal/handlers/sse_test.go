package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func sseRequest(signals string) *http.Request {
	target := "/sse/dashboard"
	if signals != "" {
		target += "?" + url.Values{"datastar": {signals}}.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Datastar-Request", "true")
	return req
}

func TestNewSSEHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := testLogger()

	handlers := NewSSEHandlers(dashboard, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewSSEHandlers() should set dashboard field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"start":"Jan 2017","end":"Feb 2017","regions":["SP"]}`))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected Content-Type text/event-stream, got %s", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control no-cache, got %s", cc)
	}

	body := w.Body.String()
	for _, want := range []string{
		"event:",
		"data:",
		"datastar-patch-elements",
		"datastar-patch-signals",
		"Showing business performance from Jan 2017 to Feb 2017.",
		"R$ 150.00",
		`"regions":["SP"]`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected SSE body to contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleDashboard_NoSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	body := w.Body.String()
	if !strings.Contains(body, "Showing business performance from Jan 2017 to Mar 2017.") {
		t.Errorf("expected full range caption, got %s", body)
	}
	if !strings.Contains(body, `"regions":["RJ","SP"]`) {
		t.Errorf("expected every region in patched signals, got %s", body)
	}
}

func TestSSEHandlers_HandleDashboard_EmptyRegions(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"start":"Jan 2017","end":"Mar 2017","regions":[]}`))

	body := w.Body.String()
	if !strings.Contains(body, "No sales in the selected period.") {
		t.Errorf("expected empty tables, got %s", body)
	}
	if !strings.Contains(body, "R$ 0.00") {
		t.Errorf("expected zero KPIs, got %s", body)
	}
}

func TestSSEHandlers_HandleDashboard_InvalidRange(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"start":"Mar 2017","end":"Jan 2017"}`))

	body := w.Body.String()
	if !strings.Contains(body, "datastar-patch-elements") || !strings.Contains(body, "is after end period") {
		t.Errorf("expected error fragment, got %s", body)
	}
	if strings.Contains(body, "Showing business performance") {
		t.Error("expected no dashboard content for an invalid range")
	}
}

func TestSSEHandlers_HandleDashboard_DataUnavailable(t *testing.T) {
	handlers := NewSSEHandlers(createUnavailableDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	if !strings.Contains(w.Body.String(), "Make sure the order dataset") {
		t.Errorf("expected instructional message, got %s", w.Body.String())
	}
}

func TestSSEHandlers_HandleDashboard_BadSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"start":`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

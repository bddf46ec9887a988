package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/export"
)

func TestPageHandlers_HandleIndex(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/?start=Feb+2017&end=Mar+2017", nil)
	w := httptest.NewRecorder()
	handlers.HandleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %s", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"Showing business performance from Feb 2017 to Mar 2017.",
		"R$ 100.00",
		"/charts/segments.svg?end=Mar+2017",
		"Retain VIPs",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestPageHandlers_HandleIndex_NoRegionsChecked(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/?start=Jan+2017&end=Mar+2017&region=SP", nil)
	w := httptest.NewRecorder()
	handlers.HandleIndex(w, req)

	hidden := `<input type="hidden" name="region" value="">`
	if !strings.Contains(w.Body.String(), hidden) {
		t.Fatalf("expected filter form to carry %s", hidden)
	}

	// Unchecking every box leaves only the hidden field in the submission.
	submitted := url.Values{}
	submitted.Set("start", "Jan 2017")
	submitted.Set("end", "Mar 2017")
	submitted.Set("region", "")

	req = httptest.NewRequest(http.MethodGet, "/?"+submitted.Encode(), nil)
	w = httptest.NewRecorder()
	handlers.HandleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Total Orders<strong>0</strong>") {
		t.Error("expected zero orders for an empty region selection")
	}
	if !strings.Contains(body, "Total Revenue<strong>R$ 0.00</strong>") {
		t.Error("expected zero revenue for an empty region selection")
	}
	if strings.Contains(body, "data-bind:regions checked") {
		t.Error("expected every region checkbox to stay unchecked")
	}
}

func TestPageHandlers_HandleIndex_DataUnavailable(t *testing.T) {
	handlers := NewPageHandlers(createUnavailableDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handlers.HandleIndex(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Make sure the order dataset and the customer segmentation dataset exist") {
		t.Errorf("expected instructional message, got %s", body)
	}
	for _, unwanted := range []string{"Total Revenue", "<img", "<select"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("expected no dashboard content, found %q", unwanted)
		}
	}
}

func TestPageHandlers_HandleIndex_InvalidRange(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/?start=Mar+2017&end=Jan+2017", nil)
	w := httptest.NewRecorder()
	handlers.HandleIndex(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "is after end period") {
		t.Errorf("expected validation message, got %s", w.Body.String())
	}
}

func TestPageHandlers_HandleChart(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	for _, file := range []string{"revenue-trend.svg", "segments.svg", "top-categories.svg", "top-regions.svg"} {
		t.Run(file, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/charts/"+file+"?region=SP", nil)
			req.SetPathValue("file", file)
			w := httptest.NewRecorder()
			handlers.HandleChart(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("expected image/svg+xml, got %s", ct)
			}
			if !strings.HasPrefix(w.Body.String(), "<svg") {
				t.Errorf("expected svg body, got %.40s", w.Body.String())
			}
		})
	}
}

func TestPageHandlers_HandleChart_NotFound(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	for _, file := range []string{"histogram.svg", "segments.png"} {
		req := httptest.NewRequest(http.MethodGet, "/charts/"+file, nil)
		req.SetPathValue("file", file)
		w := httptest.NewRecorder()
		handlers.HandleChart(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", file, w.Code)
		}
		if !strings.Contains(w.Body.String(), string(errors.CodeNotFound)) {
			t.Errorf("%s: expected NOT_FOUND body, got %s", file, w.Body.String())
		}
	}
}

func TestPageHandlers_HandleChart_EmptySelection(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/charts/top-regions.svg?region=", nil)
	req.SetPathValue("file", "top-regions.svg")
	w := httptest.NewRecorder()
	handlers.HandleChart(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No data for the selected filters") {
		t.Error("expected placeholder chart for an empty selection")
	}
}

func TestPageHandlers_HandleExport(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/export.xlsx?start=Jan+2017&end=Feb+2017", nil)
	w := httptest.NewRecorder()
	handlers.HandleExport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("expected %s, got %s", export.ContentType, ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "olist-dashboard_Jan 2017_Feb 2017.xlsx") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(export.SummarySheet)
	if err != nil {
		t.Fatalf("failed to read summary sheet: %v", err)
	}
	if len(rows) < 6 || rows[5][1] != "2" {
		t.Errorf("expected 2 total orders in summary sheet, got %v", rows)
	}
}

func TestPageHandlers_HandleExport_DataUnavailable(t *testing.T) {
	handlers := NewPageHandlers(createUnavailableDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/export.xlsx", nil)
	w := httptest.NewRecorder()
	handlers.HandleExport(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

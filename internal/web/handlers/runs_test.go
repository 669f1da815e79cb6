package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/reverse-prompt/internal/store"
	"github.com/kozaktomas/reverse-prompt/internal/store/mock"
)

type runListResponse struct {
	Runs   []store.Run `json:"runs"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func seedRuns(t *testing.T, runs *mock.RunStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := runs.Save(context.Background(), &store.Run{
			ImageName: fmt.Sprintf("photo-%d.jpg", i),
			Prompt:    "A person in a park setting, under natural light conditions, with one person in frame.",
		})
		if err != nil {
			t.Fatalf("failed to seed run: %v", err)
		}
	}
}

func TestRunsHandler_List(t *testing.T) {
	runs := mock.NewRunStore()
	seedRuns(t, runs, 3)
	handler := NewRunsHandler(runs)

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response runListResponse
	parseJSONResponse(t, recorder, &response)

	if response.Total != 3 {
		t.Errorf("expected total 3, got %d", response.Total)
	}
	if len(response.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(response.Runs))
	}
	// Newest first.
	if response.Runs[0].ImageName != "photo-2.jpg" {
		t.Errorf("expected newest run first, got '%s'", response.Runs[0].ImageName)
	}
}

func TestRunsHandler_Pagination(t *testing.T) {
	runs := mock.NewRunStore()
	seedRuns(t, runs, 5)
	handler := NewRunsHandler(runs)

	req := httptest.NewRequest("GET", "/api/v1/runs?limit=2&offset=1", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response runListResponse
	parseJSONResponse(t, recorder, &response)

	if response.Limit != 2 || response.Offset != 1 {
		t.Errorf("expected limit=2 offset=1, got limit=%d offset=%d", response.Limit, response.Offset)
	}
	if len(response.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(response.Runs))
	}
	if response.Runs[0].ImageName != "photo-3.jpg" {
		t.Errorf("expected 'photo-3.jpg' first, got '%s'", response.Runs[0].ImageName)
	}
}

func TestRunsHandler_InvalidPagingFallsBack(t *testing.T) {
	runs := mock.NewRunStore()
	seedRuns(t, runs, 1)
	handler := NewRunsHandler(runs)

	req := httptest.NewRequest("GET", "/api/v1/runs?limit=bogus&offset=-3", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response runListResponse
	parseJSONResponse(t, recorder, &response)

	if response.Limit != defaultRunsLimit || response.Offset != 0 {
		t.Errorf("expected default paging, got limit=%d offset=%d", response.Limit, response.Offset)
	}
}

func TestRunsHandler_NoStore(t *testing.T) {
	handler := NewRunsHandler(nil)

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "run storage is not configured")
}

func TestRunsHandler_StoreFailure(t *testing.T) {
	runs := mock.NewRunStore()
	runs.ListError = errors.New("database down")
	handler := NewRunsHandler(runs)

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to list runs")
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tendercost/testhelpers"
)

func TestHandleExclusionAdd_CreatesExclusion(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Excl Tender", "")

	handler := HandleExclusionAdd(app)
	req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tenders/%s/markup/exclusions", tender.Id),
		`{"costCategory":"facade","kind":"works"}`)
	req.SetPathValue("id", tender.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var row exclusionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("response is not an exclusion: %v", err)
	}
	if row.CostCategory != "facade" || row.Kind != "works" || row.ID == "" {
		t.Errorf("row = %+v", row)
	}
}

func TestHandleExclusionAdd_DuplicateIsNoOp(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Excl Tender", "")
	existing := testhelpers.CreateTestExclusion(t, app, tender.Id, "facade", "works")

	handler := HandleExclusionAdd(app)
	req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tenders/%s/markup/exclusions", tender.Id),
		`{"costCategory":"facade","kind":"works"}`)
	req.SetPathValue("id", tender.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}

	var row exclusionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("response is not an exclusion: %v", err)
	}
	if row.ID != existing.Id {
		t.Errorf("duplicate add returned id %s, want existing %s", row.ID, existing.Id)
	}
}

func TestHandleExclusionAdd_InvalidKind(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Excl Tender", "")

	handler := HandleExclusionAdd(app)
	req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tenders/%s/markup/exclusions", tender.Id),
		`{"costCategory":"facade","kind":"labour"}`)
	req.SetPathValue("id", tender.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleExclusionList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Excl Tender", "")
	testhelpers.CreateTestExclusion(t, app, tender.Id, "facade", "works")
	testhelpers.CreateTestExclusion(t, app, tender.Id, "concrete", "materials")

	handler := HandleExclusionList(app)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tenders/%s/markup/exclusions", tender.Id), nil)
	req.SetPathValue("id", tender.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rows []exclusionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("response is not a list: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d exclusions, want 2", len(rows))
	}
}

func TestHandleExclusionDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Excl Tender", "")
	excl := testhelpers.CreateTestExclusion(t, app, tender.Id, "facade", "works")

	handler := HandleExclusionDelete(app)
	req := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/tenders/%s/markup/exclusions/%s", tender.Id, excl.Id), nil)
	req.SetPathValue("id", tender.Id)
	req.SetPathValue("exclusionId", excl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	if _, err := app.FindRecordById("growth_exclusions", excl.Id); err == nil {
		t.Error("exclusion still exists after delete")
	}
}

func TestHandleExclusionDelete_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleExclusionDelete(app)
	req := httptest.NewRequest(http.MethodDelete, "/api/tenders/x/markup/exclusions/nonexistent", nil)
	req.SetPathValue("id", "x")
	req.SetPathValue("exclusionId", "nonexistent")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

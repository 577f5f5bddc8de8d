package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tendercost/services"
	"tendercost/testhelpers"
)

func TestHandleTacticView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")
	testhelpers.CreateTestSequence(t, app, tactic.Id, services.CategoryMaterial, materialSequence())

	handler := HandleTacticView(app)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tactics/%s", tactic.Id), nil)
	req.SetPathValue("id", tactic.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp tacticResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a tactic: %v", err)
	}
	if resp.Name != "Standard" {
		t.Errorf("name = %q, want Standard", resp.Name)
	}
	if len(resp.Sequences) != 1 {
		t.Fatalf("got %d sequences, want 1", len(resp.Sequences))
	}
	if resp.Sequences[0].Category != "material" || len(resp.Sequences[0].Steps) != 3 {
		t.Errorf("sequence = %+v", resp.Sequences[0])
	}
}

func TestHandleTacticView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleTacticView(app)
	req := httptest.NewRequest(http.MethodGet, "/api/tactics/nonexistent", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleSequenceSave_CreatesAndUpdates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")

	handler := HandleSequenceSave(app)

	save := func(body string) *httptest.ResponseRecorder {
		req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tactics/%s/sequences", tactic.Id), body)
		req.SetPathValue("id", tactic.Id)
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(app, req, rec)
		if err := handler(e); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec
	}

	twoSteps := `{"category":"material","steps":[
		{"op":"multiply","base":-1,"operands":[{"kind":"parameter","key":"growth_mat"}]},
		{"op":"multiply","base":0,"operands":[{"kind":"parameter","key":"overhead"}]}
	]}`
	if rec := save(twoSteps); rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	oneStep := `{"category":"material","steps":[
		{"op":"multiply","base":-1,"operands":[{"kind":"parameter","key":"overhead"}]}
	]}`
	if rec := save(oneStep); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// One record per tactic+category, holding the latest sequence.
	records, err := app.FindRecordsByFilter("markup_sequences",
		"tactic = {:t} && category = {:c}", "", 0, 0,
		map[string]any{"t": tactic.Id, "c": "material"})
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 sequence record, got %d", len(records))
	}
	steps, err := services.DecodeSteps([]byte(records[0].GetString("steps")))
	if err != nil {
		t.Fatalf("stored sequence does not decode: %v", err)
	}
	if len(steps) != 1 {
		t.Errorf("stored sequence has %d steps, want 1", len(steps))
	}
}

func TestHandleSequenceSave_RejectsNonCausal(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")

	handler := HandleSequenceSave(app)
	// Step 0 references step 1, which comes after it.
	body := `{"category":"material","steps":[
		{"op":"multiply","base":1,"operands":[{"kind":"parameter","key":"overhead"}]},
		{"op":"multiply","base":0,"operands":[{"kind":"parameter","key":"profit"}]}
	]}`
	req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tactics/%s/sequences", tactic.Id), body)
	req.SetPathValue("id", tactic.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSequenceSave_RejectsEmptyAndUnknownCategory(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")

	handler := HandleSequenceSave(app)

	cases := []struct {
		name string
		body string
	}{
		{"empty sequence", `{"category":"material","steps":[]}`},
		{"unknown category", `{"category":"plumbing","steps":[{"op":"multiply","base":-1,"operands":[{"kind":"parameter","key":"overhead"}]}]}`},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(http.MethodPost, fmt.Sprintf("/api/tactics/%s/sequences", tactic.Id), tt.body)
			req.SetPathValue("id", tactic.Id)
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, req, rec)

			if err := handler(e); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

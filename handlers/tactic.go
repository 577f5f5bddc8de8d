package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

type sequenceRow struct {
	Category string          `json:"category"`
	Steps    []services.Step `json:"steps"`
}

type tacticResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Sequences []sequenceRow `json:"sequences"`
}

// HandleTacticView returns a handler that responds with a tactic and its
// decoded per-category sequences.
func HandleTacticView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tacticID := e.Request.PathValue("id")
		tactic, err := app.FindRecordById("markup_tactics", tacticID)
		if err != nil {
			return e.String(http.StatusNotFound, "Tactic not found")
		}

		seqRecords, err := app.FindAllRecords("markup_sequences", dbx.HashExp{"tactic": tacticID})
		if err != nil {
			log.Printf("tactic: could not query sequences for %s: %v", tacticID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		resp := tacticResponse{ID: tactic.Id, Name: tactic.GetString("name")}
		for _, sr := range seqRecords {
			steps, err := services.DecodeSteps([]byte(sr.GetString("steps")))
			if err != nil {
				log.Printf("tactic: invalid stored sequence for %s/%s: %v", tacticID, sr.GetString("category"), err)
				return e.String(http.StatusInternalServerError, "Stored sequence is invalid")
			}
			resp.Sequences = append(resp.Sequences, sequenceRow{
				Category: sr.GetString("category"),
				Steps:    steps,
			})
		}

		return e.JSON(http.StatusOK, resp)
	}
}

// HandleSequenceSave returns a handler that replaces the step sequence
// for one category of a tactic. The sequence is validated before it is
// stored so evaluation never sees a non-causal reference.
func HandleSequenceSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tacticID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("markup_tactics", tacticID); err != nil {
			return e.String(http.StatusNotFound, "Tactic not found")
		}

		var req struct {
			Category string          `json:"category"`
			Steps    json.RawMessage `json:"steps"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if !slices.Contains(services.Categories, services.Category(req.Category)) {
			return e.String(http.StatusBadRequest, "Unknown category")
		}

		steps, err := services.DecodeSteps(req.Steps)
		if err != nil {
			return e.String(http.StatusBadRequest, "Invalid sequence: "+err.Error())
		}
		if len(steps) == 0 {
			return e.String(http.StatusBadRequest, "Sequence must contain at least one step")
		}

		raw, err := services.EncodeSteps(steps)
		if err != nil {
			log.Printf("tactic: could not re-encode steps: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		existing, _ := app.FindRecordsByFilter("markup_sequences",
			"tactic = {:tactic} && category = {:category}", "", 1, 0,
			map[string]any{"tactic": tacticID, "category": req.Category})

		var rec *core.Record
		if len(existing) > 0 {
			rec = existing[0]
		} else {
			col, err := app.FindCollectionByNameOrId("markup_sequences")
			if err != nil {
				log.Printf("tactic: could not find markup_sequences collection: %v", err)
				return e.String(http.StatusInternalServerError, "Internal error")
			}
			rec = core.NewRecord(col)
			rec.Set("tactic", tacticID)
			rec.Set("category", req.Category)
		}
		rec.Set("steps", string(raw))

		if err := app.Save(rec); err != nil {
			log.Printf("tactic: could not save sequence %s/%s: %v", tacticID, req.Category, err)
			return e.String(http.StatusInternalServerError, "Could not save sequence")
		}

		return e.JSON(http.StatusOK, sequenceRow{Category: req.Category, Steps: steps})
	}
}

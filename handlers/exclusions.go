package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type exclusionRow struct {
	ID           string `json:"id"`
	CostCategory string `json:"costCategory"`
	Kind         string `json:"kind"`
}

// HandleExclusionList returns a handler listing the tender's growth
// exclusions.
func HandleExclusionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		records, err := app.FindAllRecords("growth_exclusions", dbx.HashExp{"tender": tenderID})
		if err != nil {
			log.Printf("exclusions: could not query tender %s: %v", tenderID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		rows := make([]exclusionRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, exclusionRow{
				ID:           rec.Id,
				CostCategory: rec.GetString("cost_category"),
				Kind:         rec.GetString("kind"),
			})
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleExclusionAdd returns a handler that registers a growth exclusion
// for a cost category.
func HandleExclusionAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		var req struct {
			CostCategory string `json:"costCategory"`
			Kind         string `json:"kind"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.CostCategory == "" {
			return e.String(http.StatusBadRequest, "Cost category is required")
		}
		if req.Kind != "works" && req.Kind != "materials" {
			return e.String(http.StatusBadRequest, "Kind must be works or materials")
		}

		// Adding the same pair twice is a no-op.
		existing, _ := app.FindRecordsByFilter("growth_exclusions",
			"tender = {:tender} && cost_category = {:cc} && kind = {:kind}", "", 1, 0,
			map[string]any{"tender": tenderID, "cc": req.CostCategory, "kind": req.Kind})
		if len(existing) > 0 {
			return e.JSON(http.StatusOK, exclusionRow{
				ID:           existing[0].Id,
				CostCategory: req.CostCategory,
				Kind:         req.Kind,
			})
		}

		col, err := app.FindCollectionByNameOrId("growth_exclusions")
		if err != nil {
			log.Printf("exclusions: could not find collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		rec := core.NewRecord(col)
		rec.Set("tender", tenderID)
		rec.Set("cost_category", req.CostCategory)
		rec.Set("kind", req.Kind)

		if err := app.Save(rec); err != nil {
			log.Printf("exclusions: could not save: %v", err)
			return e.String(http.StatusInternalServerError, "Could not save exclusion")
		}

		return e.JSON(http.StatusCreated, exclusionRow{
			ID:           rec.Id,
			CostCategory: req.CostCategory,
			Kind:         req.Kind,
		})
	}
}

// HandleExclusionDelete returns a handler that removes one growth
// exclusion by id.
func HandleExclusionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		exclusionID := e.Request.PathValue("exclusionId")
		rec, err := app.FindRecordById("growth_exclusions", exclusionID)
		if err != nil {
			return e.String(http.StatusNotFound, "Exclusion not found")
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("exclusions: could not delete %s: %v", exclusionID, err)
			return e.String(http.StatusInternalServerError, "Could not delete exclusion")
		}

		return e.NoContent(http.StatusNoContent)
	}
}

package handlers

import (
	"log"
	"net/http"
	"slices"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

type distributionRow struct {
	ID           string `json:"id"`
	Variant      string `json:"variant"`
	BaseTarget   string `json:"baseTarget"`
	MarkupTarget string `json:"markupTarget"`
}

// HandleDistributionList returns a handler listing the tender's
// distribution rules. An empty list means legacy routing applies.
func HandleDistributionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		records, err := app.FindAllRecords("distribution_rules", dbx.HashExp{"tender": tenderID})
		if err != nil {
			log.Printf("distribution: could not query tender %s: %v", tenderID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		rows := make([]distributionRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, distributionRow{
				ID:           rec.Id,
				Variant:      rec.GetString("variant"),
				BaseTarget:   rec.GetString("base_target"),
				MarkupTarget: rec.GetString("markup_target"),
			})
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleDistributionSave returns a handler that creates or updates the
// distribution rule for one variant.
func HandleDistributionSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		var req struct {
			Variant      string `json:"variant"`
			BaseTarget   string `json:"baseTarget"`
			MarkupTarget string `json:"markupTarget"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if !slices.Contains(services.Variants, services.Variant(req.Variant)) {
			return e.String(http.StatusBadRequest, "Unknown category variant")
		}
		if !validBucket(req.BaseTarget) || !validBucket(req.MarkupTarget) {
			return e.String(http.StatusBadRequest, "Targets must be material or work")
		}

		existing, _ := app.FindRecordsByFilter("distribution_rules",
			"tender = {:tender} && variant = {:variant}", "", 1, 0,
			map[string]any{"tender": tenderID, "variant": req.Variant})

		var rec *core.Record
		if len(existing) > 0 {
			rec = existing[0]
		} else {
			col, err := app.FindCollectionByNameOrId("distribution_rules")
			if err != nil {
				log.Printf("distribution: could not find collection: %v", err)
				return e.String(http.StatusInternalServerError, "Internal error")
			}
			rec = core.NewRecord(col)
			rec.Set("tender", tenderID)
			rec.Set("variant", req.Variant)
		}
		rec.Set("base_target", req.BaseTarget)
		rec.Set("markup_target", req.MarkupTarget)

		if err := app.Save(rec); err != nil {
			log.Printf("distribution: could not save %q: %v", req.Variant, err)
			return e.String(http.StatusInternalServerError, "Could not save distribution rule")
		}

		return e.JSON(http.StatusOK, distributionRow{
			ID:           rec.Id,
			Variant:      req.Variant,
			BaseTarget:   req.BaseTarget,
			MarkupTarget: req.MarkupTarget,
		})
	}
}

func validBucket(s string) bool {
	return s == string(services.BucketMaterial) || s == string(services.BucketWork)
}

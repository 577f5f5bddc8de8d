package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

type parameterRow struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Overridden bool    `json:"overridden"`
}

// HandleParameterList returns a handler listing the tender's effective
// markup parameters: well-known defaults merged with its overrides.
func HandleParameterList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		records, err := app.FindAllRecords("markup_parameters", dbx.HashExp{"tender": tenderID})
		if err != nil {
			log.Printf("parameters: could not query overrides for tender %s: %v", tenderID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		overrides := make(map[string]*core.Record, len(records))
		for _, rec := range records {
			overrides[rec.GetString("key")] = rec
		}

		var rows []parameterRow
		seen := make(map[string]bool)
		for _, def := range services.WellKnownParameters {
			row := parameterRow{Key: def.Key, Label: def.Label, Value: def.Default}
			if rec, ok := overrides[def.Key]; ok {
				row.Value = rec.GetFloat("value")
				row.Overridden = true
				if l := rec.GetString("label"); l != "" {
					row.Label = l
				}
			}
			rows = append(rows, row)
			seen[def.Key] = true
		}
		for _, rec := range records {
			key := rec.GetString("key")
			if key == "" || seen[key] {
				continue
			}
			rows = append(rows, parameterRow{
				Key:        key,
				Label:      rec.GetString("label"),
				Value:      rec.GetFloat("value"),
				Overridden: true,
			})
		}

		return e.JSON(http.StatusOK, rows)
	}
}

// HandleParameterSave returns a handler that creates or updates one
// parameter override for a tender.
func HandleParameterSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("tenders", tenderID); err != nil {
			return e.String(http.StatusNotFound, "Tender not found")
		}

		var req struct {
			Key   string  `json:"key"`
			Label string  `json:"label"`
			Value float64 `json:"value"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.Key == "" {
			return e.String(http.StatusBadRequest, "Parameter key is required")
		}

		existing, _ := app.FindRecordsByFilter("markup_parameters",
			"tender = {:tender} && key = {:key}", "", 1, 0,
			map[string]any{"tender": tenderID, "key": req.Key})

		var rec *core.Record
		if len(existing) > 0 {
			rec = existing[0]
		} else {
			col, err := app.FindCollectionByNameOrId("markup_parameters")
			if err != nil {
				log.Printf("parameters: could not find collection: %v", err)
				return e.String(http.StatusInternalServerError, "Internal error")
			}
			rec = core.NewRecord(col)
			rec.Set("tender", tenderID)
			rec.Set("key", req.Key)
		}
		rec.Set("value", req.Value)
		if req.Label != "" {
			rec.Set("label", req.Label)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("parameters: could not save %q: %v", req.Key, err)
			return e.String(http.StatusInternalServerError, "Could not save parameter")
		}

		return e.JSON(http.StatusOK, parameterRow{
			Key:        req.Key,
			Label:      rec.GetString("label"),
			Value:      rec.GetFloat("value"),
			Overridden: true,
		})
	}
}

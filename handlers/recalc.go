// Package handlers wires the markup engine and its configuration stores
// to the HTTP surface.
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

// HandleMarkupRecalculate returns a handler that runs the batch
// recalculation for a tender and responds with the run report.
func HandleMarkupRecalculate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tender, tacticID, ok := resolveTenderTactic(app, e)
		if !ok {
			return nil
		}

		rc := services.NewRecalculatorForApp(app, services.RecalcOptions{})
		report, err := rc.Run(e.Request.Context(), tender.Id, tacticID)
		if err != nil {
			log.Printf("recalc: run failed for tender %s: %v", tender.Id, err)
			return e.String(http.StatusUnprocessableEntity, "Recalculation failed: "+err.Error())
		}

		return e.JSON(http.StatusOK, report)
	}
}

// HandleMarkupReportPDF returns a handler that runs the batch
// recalculation and downloads the summary/anomaly report as PDF.
func HandleMarkupReportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tender, tacticID, ok := resolveTenderTactic(app, e)
		if !ok {
			return nil
		}

		tacticName := tacticID
		if tacticRec, err := app.FindRecordById("markup_tactics", tacticID); err == nil {
			tacticName = tacticRec.GetString("name")
		}

		rc := services.NewRecalculatorForApp(app, services.RecalcOptions{})
		report, err := rc.Run(e.Request.Context(), tender.Id, tacticID)
		if err != nil {
			log.Printf("recalc: run failed for tender %s: %v", tender.Id, err)
			return e.String(http.StatusUnprocessableEntity, "Recalculation failed: "+err.Error())
		}

		pdfBytes, err := services.GenerateRecalcPDF(services.RecalcPDFData{
			Title:           tender.GetString("title"),
			ReferenceNumber: tender.GetString("reference_number"),
			TacticName:      tacticName,
			GeneratedDate:   time.Now().Format("02 Jan 2006"),
			Report:          report,
		})
		if err != nil {
			log.Printf("recalc: failed to generate PDF: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF report")
		}

		filename := fmt.Sprintf("Recalc_%s_%d.pdf", sanitizeFilename(tender.GetString("title")), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// resolveTenderTactic loads the tender from the path and determines the
// tactic to run: an explicit ?tactic= query overrides the tender's
// configured one. On failure the response is already written and ok is
// false.
func resolveTenderTactic(app *pocketbase.PocketBase, e *core.RequestEvent) (tender *core.Record, tacticID string, ok bool) {
	tenderID := e.Request.PathValue("id")
	if tenderID == "" {
		e.String(http.StatusBadRequest, "Missing tender ID")
		return nil, "", false
	}

	tender, err := app.FindRecordById("tenders", tenderID)
	if err != nil {
		e.String(http.StatusNotFound, "Tender not found")
		return nil, "", false
	}

	tacticID = e.Request.URL.Query().Get("tactic")
	if tacticID == "" {
		tacticID = tender.GetString("tactic")
	}
	if tacticID == "" {
		e.String(http.StatusBadRequest, "Tender has no markup tactic configured")
		return nil, "", false
	}

	return tender, tacticID, true
}

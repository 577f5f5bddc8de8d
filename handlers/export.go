package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

// buildMarkupExportData fetches the tender and its lines with their
// stored commercial amounts.
func buildMarkupExportData(app *pocketbase.PocketBase, tenderID string) (services.MarkupExportData, error) {
	tender, err := app.FindRecordById("tenders", tenderID)
	if err != nil {
		return services.MarkupExportData{}, fmt.Errorf("tender not found: %w", err)
	}

	lines, err := services.NewStore(app).LoadLines(tenderID)
	if err != nil {
		return services.MarkupExportData{}, fmt.Errorf("load lines: %w", err)
	}

	data := services.MarkupExportData{
		Title:           tender.GetString("title"),
		ReferenceNumber: tender.GetString("reference_number"),
		GeneratedDate:   time.Now().Format("02 Jan 2006"),
	}

	for i, line := range lines {
		data.Rows = append(data.Rows, services.MarkupExportRow{
			Index:        i + 1,
			Name:         line.Name,
			Category:     line.Category,
			CostCategory: line.CostCategory,
			BaseAmount:   line.BaseAmount,
			Material:     line.CommercialMaterial,
			Work:         line.CommercialWork,
			Coefficient:  line.Coefficient,
		})
		data.TotalBase += line.BaseAmount
		data.TotalMaterial += line.CommercialMaterial
		data.TotalWork += line.CommercialWork
	}

	return data, nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleMarkupExportExcel returns a handler that generates and downloads
// the commercial-amount workbook for a tender.
func HandleMarkupExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tenderID := e.Request.PathValue("id")
		if tenderID == "" {
			return e.String(http.StatusBadRequest, "Missing tender ID")
		}

		data, err := buildMarkupExportData(app, tenderID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Tender not found")
		}

		xlsxBytes, err := services.GenerateMarkupExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Commercial_%s_%d.xlsx", sanitizeFilename(data.Title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

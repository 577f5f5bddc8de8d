package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/collections"
	"tendercost/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Batch recalculation ──────────────────────────────────
		se.Router.POST("/api/tenders/{id}/markup/recalculate", handlers.HandleMarkupRecalculate(app))
		se.Router.GET("/api/tenders/{id}/markup/report.pdf", handlers.HandleMarkupReportPDF(app))
		se.Router.GET("/api/tenders/{id}/markup/export", handlers.HandleMarkupExportExcel(app))

		// ── Markup parameters ────────────────────────────────────
		se.Router.GET("/api/tenders/{id}/markup/parameters", handlers.HandleParameterList(app))
		se.Router.POST("/api/tenders/{id}/markup/parameters", handlers.HandleParameterSave(app))

		// ── Growth exclusions ────────────────────────────────────
		se.Router.GET("/api/tenders/{id}/markup/exclusions", handlers.HandleExclusionList(app))
		se.Router.POST("/api/tenders/{id}/markup/exclusions", handlers.HandleExclusionAdd(app))
		se.Router.DELETE("/api/tenders/{id}/markup/exclusions/{exclusionId}", handlers.HandleExclusionDelete(app))

		// ── Distribution rules ───────────────────────────────────
		se.Router.GET("/api/tenders/{id}/markup/distribution", handlers.HandleDistributionList(app))
		se.Router.POST("/api/tenders/{id}/markup/distribution", handlers.HandleDistributionSave(app))

		// ── Tactics ──────────────────────────────────────────────
		se.Router.GET("/api/tactics/{id}", handlers.HandleTacticView(app))
		se.Router.POST("/api/tactics/{id}/sequences", handlers.HandleSequenceSave(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

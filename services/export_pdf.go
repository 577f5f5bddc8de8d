package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RecalcPDFData is the input for the recalculation report PDF.
type RecalcPDFData struct {
	Title           string
	ReferenceNumber string
	TacticName      string
	GeneratedDate   string
	Report          *RecalcReport
}

// GenerateRecalcPDF creates the recalculation summary and anomaly report
// as a PDF document using maroto/v2.
func GenerateRecalcPDF(data RecalcPDFData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addReportHeader(m, data)
	addReportSummary(m, data.Report)

	if len(data.Report.Anomalies) > 0 {
		addAnomalyTableHeader(m)
		for i, a := range data.Report.Anomalies {
			addAnomalyRow(m, i+1, a)
		}
	} else {
		m.AddRows(
			row.New(8).Add(
				col.New(12).Add(
					text.New("No anomalies detected.", props.Text{Size: 9, Align: align.Left}),
				),
			),
		)
	}

	if len(data.Report.Errors) > 0 {
		addErrorSection(m, data.Report)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addReportHeader adds the tender title, tactic and date.
func addReportHeader(m core.Maroto, data RecalcPDFData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Markup Recalculation — %s", data.Title), props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Tactic: %s", data.TacticName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", data.GeneratedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

// addReportSummary adds the run totals line.
func addReportSummary(m core.Maroto, report *RecalcReport) {
	summary := fmt.Sprintf("Lines: %d    Succeeded: %d    Failed: %d    Distinct coefficients: %d    Anomalies: %d",
		report.TotalLines, report.Succeeded, report.Failed, report.DistinctCoeffs, len(report.Anomalies))

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(summary, props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	m.AddRows(row.New(3))
}

// addAnomalyTableHeader adds the column header row for the anomaly table.
func addAnomalyTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Item", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Category", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Base", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Realized", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Expected", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Excluded", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Reason", headerText)).WithStyle(&headerCell),
		),
	)
}

// addAnomalyRow adds one anomaly to the table.
func addAnomalyRow(m core.Maroto, index int, a Anomaly) {
	baseText := props.Text{Size: 7, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	excludedStr := "no"
	if a.Excluded {
		excludedStr = "yes"
	}

	m.AddRows(
		row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", index), baseText)),
			col.New(3).Add(text.New(a.LineName, leftText)),
			col.New(1).Add(text.New(string(a.Category), baseText)),
			col.New(2).Add(text.New(FormatAmount(a.BaseAmount), rightText)),
			col.New(1).Add(text.New(FormatCoefficient(a.RealizedCoefficient), rightText)),
			col.New(1).Add(text.New(FormatCoefficient(a.ExpectedCoefficient), rightText)),
			col.New(1).Add(text.New(excludedStr, baseText)),
			col.New(2).Add(text.New(string(a.Reason), leftText)),
		),
	)
}

// addErrorSection lists per-line errors surfaced by the run.
func addErrorSection(m core.Maroto, report *RecalcReport) {
	m.AddRows(row.New(4))
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New("Line errors", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
	)

	for _, le := range report.Errors {
		m.AddRows(
			row.New(5).Add(
				col.New(3).Add(text.New(le.LineID, props.Text{Size: 7, Align: align.Left})),
				col.New(9).Add(text.New(le.Message, props.Text{Size: 7, Align: align.Left})),
			),
		)
	}

	if report.ErrorsOmitted > 0 {
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(
					text.New(fmt.Sprintf("… and %d more errors omitted", report.ErrorsOmitted), props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 120, Green: 120, Blue: 120},
					}),
				),
			),
		)
	}
}

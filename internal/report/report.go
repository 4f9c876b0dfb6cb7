// Package report renders the results of a playthrough as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

const (
	pageWidth  = 210.0
	margin     = 15.0
	lineHeight = 6.0
	barWidth   = 100.0
)

type rgb struct{ r, g, b int }

var statColors = map[models.Stat]rgb{
	models.StatIntegrity:  {34, 139, 84},
	models.StatMoney:      {212, 160, 23},
	models.StatPower:      {106, 90, 205},
	models.StatReputation: {30, 144, 255},
}

// Write renders r as a PDF into w.
func Write(w io.Writer, r engine.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("Integrity Trail results", true)
	pdf.SetCreator("integrity-trail", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := pageWidth - 2*margin

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(width, 12, tr("Integrity Trail"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	status := "In progress"
	if r.Complete {
		status = "Complete"
	}
	pdf.CellFormat(width, lineHeight, tr(fmt.Sprintf("Playthrough %s (%s)", r.PlaythroughID, status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	heading(pdf, tr, r.Rating.Title)
	body(pdf, tr, width, r.Rating.Description)
	body(pdf, tr, width, fmt.Sprintf("Leadership style: %s. Corruption risk: %s.", r.Style, r.CorruptionLevel))

	heading(pdf, tr, "Final stats")
	for _, stat := range models.AllStats {
		statBar(pdf, tr, stat, r.Stats.Get(stat))
	}

	heading(pdf, tr, "Decisions")
	if len(r.Decisions) == 0 {
		body(pdf, tr, width, "No decisions recorded.")
	}
	for _, d := range r.Decisions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(width, lineHeight, tr(fmt.Sprintf("%d. %s", d.Seq, d.ScenarioTitle)), "", "L", false)
		body(pdf, tr, width, d.ChoiceText)
		if d.OutcomeText != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(width, lineHeight, tr(d.OutcomeText), "", "L", false)
		}
		pdf.Ln(1)
	}

	if len(r.Consequences) > 0 {
		heading(pdf, tr, "Consequences of your decisions")
		for _, c := range r.Consequences {
			body(pdf, tr, width, "• "+c.Title)
		}
	}

	if len(r.Headlines) > 0 {
		heading(pdf, tr, "Headlines")
		for _, h := range r.Headlines {
			body(pdf, tr, width, fmt.Sprintf("%s (%s)%s", h.Headline, h.Source, impactSuffix(h.Impact)))
		}
	}

	if len(r.Reflections) > 0 {
		heading(pdf, tr, "Reflections")
		for _, ref := range r.Reflections {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(width, lineHeight, tr(ref.Question), "", "L", false)
			body(pdf, tr, width, ref.Answer)
			if ref.Feedback != "" {
				pdf.SetFont("Helvetica", "I", 10)
				pdf.MultiCell(width, lineHeight, tr(ref.Feedback), "", "L", false)
			}
			pdf.Ln(1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return nil
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(text), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func body(pdf *gofpdf.Fpdf, tr func(string) string, width float64, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(width, lineHeight, tr(text), "", "L", false)
}

func statBar(pdf *gofpdf.Fpdf, tr func(string) string, stat models.Stat, value int) {
	label := strings.ToUpper(string(stat[:1])) + string(stat[1:])
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(35, lineHeight, tr(label), "", 0, "L", false, 0, "")

	x, y := pdf.GetX(), pdf.GetY()+1
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x, y, barWidth, lineHeight-2, "D")
	c := statColors[stat]
	pdf.SetFillColor(c.r, c.g, c.b)
	if value > 0 {
		pdf.Rect(x, y, barWidth*float64(value)/100, lineHeight-2, "F")
	}
	pdf.SetX(x + barWidth + 4)
	pdf.CellFormat(15, lineHeight, fmt.Sprintf("%d", value), "", 1, "L", false, 0, "")
}

func impactSuffix(impact models.Effects) string {
	var parts []string
	for _, stat := range models.AllStats {
		if v, ok := impact[stat]; ok && v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", stat, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ": " + strings.Join(parts, ", ")
}

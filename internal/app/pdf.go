package app

import (
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// writeSummaryPDF renders the summary as a one-column A4 document: a title,
// the source line and one paragraph per bullet.
func writeSummaryPDF(title, source, summary, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreator("ytreader "+BuildVersion, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 15)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, tr(source+"  "+time.Now().UTC().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range strings.Split(summary, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			pdf.Ln(3)
			continue
		}
		pdf.MultiCell(0, 6, tr(s), "", "L", false)
		pdf.Ln(1)
	}
	return pdf.OutputFileAndClose(outPath)
}

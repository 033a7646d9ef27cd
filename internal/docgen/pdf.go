package docgen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"

	"github.com/permitdesk/permitdesk/internal/shared"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 15.0
	contentWidth = pageWidth - 2*margin

	// Rows never start below this line; the table breaks to a fresh page
	// and repeats its header instead.
	breakY = pageHeight - 60
)

// Result carries the raw PDF bytes and a data-URI form for inline transport.
type Result struct {
	Buffer []byte
	Base64 string
}

type theme struct {
	r, g, b int
}

var themes = map[Kind]theme{
	KindInvoice:  {31, 73, 125},
	KindProposal: {27, 94, 32},
}

// Generator renders documents to paginated A4 PDFs.
type Generator struct {
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{logger: logger}
}

func (g *Generator) Render(doc Document) (*Result, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	th := themes[doc.Kind]

	g.drawHeader(pdf, doc, th)
	g.drawMetaBox(pdf, doc)
	g.drawInfoBoxes(pdf, doc, th)
	g.drawItems(pdf, doc, th)
	g.drawTotals(pdf, doc, th)
	g.drawNotes(pdf, doc)
	g.drawFooter(pdf, doc, th)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: render %s %s: %v", shared.ErrDocumentGeneration, doc.Kind, doc.Number, err)
	}
	return &Result{
		Buffer: buf.Bytes(),
		Base64: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// logoUsable probes the image on a scratch instance so a corrupt or missing
// logo never poisons the real document.
func (g *Generator) logoUsable(path string) bool {
	if path == "" {
		return false
	}
	probe := fpdf.New("P", "mm", "A4", "")
	probe.AddPage()
	probe.RegisterImageOptions(path, fpdf.ImageOptions{})
	if probe.Err() {
		g.logger.Warn("logo unavailable, skipping",
			slog.String("path", path),
			slog.String("error", probe.Error().Error()))
		return false
	}
	return true
}

func (g *Generator) drawHeader(pdf *fpdf.Fpdf, doc Document, th theme) {
	pdf.SetFillColor(th.r, th.g, th.b)
	pdf.Rect(0, 0, pageWidth, 42, "F")

	x := margin
	if g.logoUsable(doc.Company.LogoPath) {
		pdf.ImageOptions(doc.Company.LogoPath, margin, 8, 24, 0, false, fpdf.ImageOptions{}, 0, "")
		x = margin + 28
	}

	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(x, 9)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(100, 8, doc.Company.Name, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{doc.Company.Address, doc.Company.Phone, doc.Company.Email} {
		if line == "" {
			continue
		}
		pdf.SetX(x)
		pdf.CellFormat(100, 4.5, line, "", 2, "L", false, 0, "")
	}

	pdf.SetXY(pageWidth-margin-80, 12)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(80, 12, doc.Kind.Label(), "", 0, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(48)
}

func (g *Generator) drawMetaBox(pdf *fpdf.Fpdf, doc Document) {
	pdf.SetDrawColor(200, 200, 200)
	rows := [][2]string{
		{"Number", doc.Number},
		{"Date", doc.Date.Format("2006-01-02")},
	}
	if doc.ValidUntil != nil {
		rows = append(rows, [2]string{"Valid until", doc.ValidUntil.Format("2006-01-02")})
	}

	y := pdf.GetY()
	boxW := 70.0
	x := pageWidth - margin - boxW
	pdf.Rect(x, y, boxW, float64(len(rows))*6+4, "D")
	pdf.SetY(y + 2)
	for _, row := range rows {
		pdf.SetX(x + 3)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(26, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(boxW-32, 6, row[1], "", 2, "L", false, 0, "")
	}
	pdf.SetY(y + float64(len(rows))*6 + 10)
}

func (g *Generator) drawInfoBoxes(pdf *fpdf.Fpdf, doc Document, th theme) {
	boxW := (contentWidth - 6) / 2
	y := pdf.GetY()
	g.drawInfoBox(pdf, doc.BillTo, th, margin, y, boxW)
	g.drawInfoBox(pdf, doc.Project, th, margin+boxW+6, y, boxW)

	tall := len(doc.BillTo.Lines)
	if len(doc.Project.Lines) > tall {
		tall = len(doc.Project.Lines)
	}
	pdf.SetY(y + 8 + float64(tall)*5 + 8)
}

func (g *Generator) drawInfoBox(pdf *fpdf.Fpdf, box InfoBox, th theme, x, y, w float64) {
	pdf.SetFillColor(th.r, th.g, th.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(w, 7, " "+box.Title, "", 2, "L", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range box.Lines {
		pdf.SetX(x)
		pdf.CellFormat(w, 5, " "+line, "", 2, "L", false, 0, "")
	}
}

var itemColumns = []struct {
	label string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Description", 90, "L"},
	{"Qty", 20, "R"},
	{"Unit Price", 30, "R"},
	{"Amount", 30, "R"},
}

func (g *Generator) drawItems(pdf *fpdf.Fpdf, doc Document, th theme) {
	g.drawItemsHeader(pdf, th)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, item := range doc.Items {
		if pdf.GetY() > breakY {
			pdf.AddPage()
			pdf.SetY(margin)
			g.drawItemsHeader(pdf, th)
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(0, 0, 0)
		}

		shaded := i%2 == 1
		pdf.SetFillColor(245, 245, 245)

		qty := ""
		if item.Quantity > 0 {
			qty = trimQuantity(item.Quantity)
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			item.Description,
			qty,
			moneyOrTBD(item.UnitPrice),
			moneyOrTBD(item.Amount),
		}
		pdf.SetX(margin)
		for c, col := range itemColumns {
			pdf.CellFormat(col.width, 7, cells[c], "B", 0, col.align, shaded, 0, "")
		}
		pdf.Ln(7)
	}
	pdf.Ln(4)
}

func (g *Generator) drawItemsHeader(pdf *fpdf.Fpdf, th theme) {
	pdf.SetFillColor(th.r, th.g, th.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetX(margin)
	for _, col := range itemColumns {
		pdf.CellFormat(col.width, 8, col.label, "", 0, col.align, true, 0, "")
	}
	pdf.Ln(8)
}

func (g *Generator) drawTotals(pdf *fpdf.Fpdf, doc Document, th theme) {
	if pdf.GetY() > breakY {
		pdf.AddPage()
		pdf.SetY(margin)
	}

	boxW := 80.0
	x := pageWidth - margin - boxW
	rows := [][2]string{{"Total", money(doc.Total)}}
	if doc.Kind == KindInvoice {
		rows = append(rows, [2]string{"Completed work", money(doc.Completed)})
		if doc.BalanceDue != nil {
			rows = append(rows, [2]string{"Balance due", money(*doc.BalanceDue)})
		}
	}

	y := pdf.GetY()
	pdf.SetFillColor(th.r, th.g, th.b)
	pdf.Rect(x, y, boxW, float64(len(rows))*7+4, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetY(y + 2)
	for _, row := range rows {
		pdf.SetX(x + 3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(boxW-46, 7, row[1], "", 2, "R", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(y + float64(len(rows))*7 + 10)
}

func (g *Generator) drawNotes(pdf *fpdf.Fpdf, doc Document) {
	if doc.Notes == "" {
		return
	}
	if pdf.GetY() > breakY {
		pdf.AddPage()
		pdf.SetY(margin)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetX(margin)
	pdf.CellFormat(contentWidth, 6, "Notes", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(margin)
	pdf.MultiCell(contentWidth, 5, doc.Notes, "", "L", false)
}

func (g *Generator) drawFooter(pdf *fpdf.Fpdf, doc Document, th theme) {
	pdf.SetFillColor(th.r, th.g, th.b)
	pdf.Rect(0, pageHeight-14, pageWidth, 14, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(margin, pageHeight-11)
	stamp := fmt.Sprintf("Generated on %s", doc.Date.Format("2006-01-02 15:04 MST"))
	pdf.CellFormat(contentWidth, 8, stamp, "", 0, "C", false, 0, "")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func moneyOrTBD(v *float64) string {
	if v == nil {
		return "TBD"
	}
	return money(*v)
}

func trimQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}

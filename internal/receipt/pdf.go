package receipt

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	pdfWidth  = 80.0 // mm, thermal roll
	pdfMargin = 4.0
	lineH     = 5.0
	qrSize    = 28.0
)

// PDF renders the document on an 80mm roll with a QR code of the order id.
// Controls are never printed.
func PDF(doc Document) ([]byte, error) {
	qrPNG, err := qrcode.Encode(doc.OrderID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt qr code: %w", err)
	}

	rows := 14 + 2*len(doc.Lines)
	height := 2*pdfMargin + float64(rows)*lineH + qrSize + 10

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pdfWidth, Ht: height},
	})
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	inner := pdfWidth - 2*pdfMargin
	center := func(style string, size float64, text string) {
		pdf.SetFont("Arial", style, size)
		pdf.CellFormat(inner, lineH, tr(text), "", 1, "C", false, 0, "")
	}
	row := func(style, left, right string) {
		pdf.SetFont("Arial", style, 8)
		pdf.CellFormat(inner*0.6, lineH, tr(left), "", 0, "L", false, 0, "")
		pdf.CellFormat(inner*0.4, lineH, tr(right), "", 1, "R", false, 0, "")
	}
	rule := func() {
		y := pdf.GetY() + 1
		pdf.SetDashPattern([]float64{1, 1}, 0)
		pdf.Line(pdfMargin, y, pdfWidth-pdfMargin, y)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.Ln(2)
	}

	if doc.Restaurant != "" {
		center("B", 10, doc.Restaurant)
	}
	center("B", 12, doc.Title)
	center("", 8, doc.Greeting)
	rule()

	row("", "Order ID:", doc.OrderID)
	row("", "Date:", doc.Date)
	row("", "Order Type:", doc.OrderType)
	row("B", "Status:", string(doc.Status))
	rule()

	center("B", 9, "ORDER ITEMS")
	for _, line := range doc.Lines {
		row("B", line.Name, money(line.Amount))
		row("", fmt.Sprintf("  %s × %d", money(line.Price), line.Quantity), "")
	}
	rule()

	row("", "Subtotal:", money(doc.Subtotal))
	row("", "Tax:", money(doc.Tax))
	row("B", "Total:", money(doc.Total))
	rule()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", (pdfWidth-qrSize)/2, pdf.GetY()+1, qrSize, qrSize, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + qrSize + 2)

	center("", 7, doc.Footer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

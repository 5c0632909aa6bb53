package formatter

import (
	"bytes"
	"os"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	// In Docker runtime fonts live next to the binary under ./ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

const (
	userLabel = "You"
	aiLabel   = "AI"
)

// PDFFormatter renders a conversation transcript as a PDF document
type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}

	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}

	return ""
}

// Format renders the conversation title and its messages in order,
// one labelled block per turn.
func (mf *PDFFormatter) Format(title string, messages []*entity.Message) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Try to use the UTF-8 capable DejaVuSans font when bundled;
	// fall back to the built-in Arial otherwise.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	_, lineHeight := pdf.GetFontSize()
	for _, m := range messages {
		label := userLabel
		if m.Sender == entity.SenderAI {
			label = aiLabel
		}

		pdf.SetFont(fontName, "B", 12)
		pdf.Cell(0, 8, label+" ("+m.CreatedAt.Format("2006-01-02 15:04")+")")
		pdf.Ln(8)

		pdf.SetFont(fontName, "", 12)
		pdf.MultiCell(0, lineHeight*1.5, m.Content, "", "", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

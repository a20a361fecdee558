package extract

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of an uploaded PDF. One shot, no retry:
// callers treat a failure as terminal for that upload.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// ExtractText walks every page in order and joins each page's text with a
// blank line. It never returns partial text: any unreadable page fails the
// whole extraction.
func (e *PDFExtractor) ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		log.Printf("extract: open %s: %v", path, err)
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			log.Printf("extract: %s page %d unreadable", path, i)
			return "", fmt.Errorf("read page %d", i)
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Printf("extract: %s page %d: %v", path, i, err)
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTextMissingFile(t *testing.T) {
	ex := NewPDFExtractor()
	if _, err := ex.ExtractText(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}
	ex := NewPDFExtractor()
	if _, err := ex.ExtractText(path); err == nil {
		t.Fatal("expected error for non-pdf bytes")
	}
}

package engine

import (
	"strings"
	"testing"
)

func TestForNameDispatch(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"doc.pdf", false},
		{"doc.docx", false},
		{"notes.md", false},
		{"notes.markdown", false},
		{"page.html", false},
		{"page.htm", false},
		{"data.csv", false},
		{"plain.txt", false},
		{"image.png", true},
		{"archive.zip", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForName(tt.filename, Options{})
		if (err != nil) != tt.wantErr {
			t.Errorf("ForName(%q): err = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("report.PDF") {
		t.Error("extension check should be case-insensitive")
	}
	if IsSupportedExtension("report.exe") {
		t.Error(".exe should not be supported")
	}
}

func TestTextEngineParagraphPages(t *testing.T) {
	input := strings.Repeat("alpha beta gamma ", 30) + "\n\n" + strings.Repeat("delta ", 30)
	eng := &TextEngine{Options: Options{PageWords: 60}}

	doc, err := eng.Open("notes.txt", []byte(input))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() < 2 {
		t.Fatalf("pageCount = %d, want >= 2", doc.PageCount())
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Text(), "alpha") {
		t.Errorf("page 1 text = %q", page.Text())
	}
	if doc.Metadata()["title"] != "notes" {
		t.Errorf("metadata = %v", doc.Metadata())
	}
}

func TestMarkdownEngineSectionsAndTitle(t *testing.T) {
	input := "# Annual Report\n\nIntro paragraph.\n\n## Revenue\n\nRevenue was up.\n\n## Costs\n\nCosts were down.\n"
	eng := &MarkdownEngine{Options: Options{PageWords: 300}}

	doc, err := eng.Open("report.md", []byte(input))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()

	if doc.Metadata()["title"] != "Annual Report" {
		t.Errorf("title = %q, want from first h1", doc.Metadata()["title"])
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Revenue was up", "Costs were down"} {
		if !strings.Contains(page.Text(), want) {
			t.Errorf("page text missing %q", want)
		}
	}
}

func TestHTMLEngineExtractsContent(t *testing.T) {
	input := `<html><head><title>Handbook</title><style>.x{}</style></head>
<body><h1>Welcome</h1><p>Hello world.</p><script>alert(1)</script></body></html>`
	eng := &HTMLEngine{Options: Options{PageWords: 300}}

	doc, err := eng.Open("handbook.html", []byte(input))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()

	if doc.Metadata()["title"] != "Handbook" {
		t.Errorf("title = %q, want Handbook", doc.Metadata()["title"])
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Text(), "Hello world.") {
		t.Errorf("page text = %q", page.Text())
	}
	if strings.Contains(page.Text(), "alert") {
		t.Error("script content leaked into page text")
	}
}

func TestCSVEngineRowPages(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,amount\n")
	for i := 0; i < 45; i++ {
		sb.WriteString("item,1\n")
	}
	eng := &CSVEngine{}

	doc, err := eng.Open("data.csv", []byte(sb.String()))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 3 {
		t.Fatalf("pageCount = %d, want 3 (45 rows at 20/page)", doc.PageCount())
	}
	for n := 1; n <= 3; n++ {
		page, err := doc.Page(n)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(page.Text(), "Headers: name, amount") {
			t.Errorf("page %d missing header context", n)
		}
	}
}

func TestCSVEngineEmptyFile(t *testing.T) {
	eng := &CSVEngine{}
	doc, err := eng.Open("data.csv", nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()
	if doc.PageCount() != 1 {
		t.Errorf("pageCount = %d, want 1 empty page", doc.PageCount())
	}
}

func TestPDFEngineRejectsGarbage(t *testing.T) {
	eng := &PDFEngine{}
	if _, err := eng.Open("broken.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected error for invalid pdf bytes")
	}
}

func TestDOCXEngineRejectsGarbage(t *testing.T) {
	eng := &DOCXEngine{}
	if _, err := eng.Open("broken.docx", []byte("not a docx")); err == nil {
		t.Fatal("expected error for invalid docx bytes")
	}
}

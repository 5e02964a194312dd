package engine

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownEngine renders Markdown files using goldmark. Each heading
// starts a new section; sections are packed into word-budget pages.
type MarkdownEngine struct {
	Options Options
}

func (e *MarkdownEngine) Open(name string, data []byte) (Document, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	title := strings.TrimSuffix(strings.TrimSuffix(name, ".md"), ".markdown")

	var sections []section
	var currentTitle string
	var currentText bytes.Buffer

	flush := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" || currentTitle != "" {
			sections = append(sections, section{title: currentTitle, text: t})
		}
		currentTitle = ""
		currentText.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			currentTitle = string(h.Text(data))
			if len(sections) == 0 && currentTitle != "" && h.Level == 1 {
				title = currentTitle
			}
			continue
		}
		t := nodeText(n, data)
		if t == "" {
			continue
		}
		if currentText.Len() > 0 {
			currentText.WriteString("\n\n")
		}
		currentText.WriteString(t)
	}
	flush()

	pages := paginate(sections, e.Options.pageWords())
	return newTextDocument(title, nil, pages), nil
}

// nodeText flattens the text content of a block node.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteString("\n")
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

package engine

import (
	"bufio"
	"bytes"
	"strings"
)

// TextEngine renders plain text files. Paragraphs (blank-line separated)
// are packed into word-budget pages.
type TextEngine struct {
	Options Options
}

func (e *TextEngine) Open(name string, data []byte) (Document, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sections []section
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				sections = append(sections, section{text: current.String()})
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		sections = append(sections, section{text: current.String()})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(name, ".txt")
	pages := paginate(sections, e.Options.pageWords())
	return newTextDocument(title, nil, pages), nil
}

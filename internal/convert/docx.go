package convert

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
)

// Run sizes are in half-points.
const (
	bodySize    = "22"
	headingSize = "28"
)

func writeDocx(pages []Page, headings bool) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	multi := len(pages) > 1
	for i, pg := range pages {
		if multi && headings {
			doc.AddParagraph().AddText(fmt.Sprintf("Page %d", pg.Number)).Bold().Size(headingSize)
		}
		for _, ln := range pg.Lines {
			text := xmlSafe(ln.Text)
			if text == "" {
				continue
			}
			doc.AddParagraph().AddText(text).Size(bodySize)
		}
		if i < len(pages)-1 {
			doc.AddParagraph()
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xmlSafe drops runes that cannot appear in an XML 1.0 document.
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError:
			return -1
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20:
			return -1
		case r >= 0xD800 && r <= 0xDFFF:
			return -1
		case r == 0xFFFE || r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}

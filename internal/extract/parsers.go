package extract

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var utf8BOM = []byte("\xEF\xBB\xBF")

// extractPlainText decodes UTF-8 text, dropping a leading byte order mark.
func extractPlainText(data []byte) (string, int, error) {
	if !utf8.Valid(data) {
		return "", 0, fmt.Errorf("text document is not valid UTF-8")
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), 0, nil
}

// extractPDFText trims every page and joins pages with a blank line.
func extractPDFText(data []byte) (text string, pages int, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf: %w", err)
	}

	numPages := reader.NumPage()
	parts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		parts = append(parts, strings.TrimSpace(pageText))
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")), numPages, nil
}

func extractDocxText(data []byte) (string, int, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return docxPlainText(doc.Editable().GetContent()), 0, nil
}

// docxPlainText reduces document.xml to text: paragraph ends become
// newlines and every other tag is dropped.
func docxPlainText(xml string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(xml, '<')
		if start < 0 {
			b.WriteString(xml)
			break
		}
		b.WriteString(xml[:start])
		end := strings.IndexByte(xml[start:], '>')
		if end < 0 {
			break
		}
		tag := xml[start : start+end+1]
		switch {
		case strings.HasPrefix(tag, "</w:p>"), strings.HasPrefix(tag, "<w:br"):
			b.WriteByte('\n')
		case tag == "<w:tab/>", strings.HasPrefix(tag, "<w:tab "):
			b.WriteByte('\t')
		}
		xml = xml[start+end+1:]
	}
	// Named and numeric character references (&amp;, &#8217;, &#x2019;).
	return html.UnescapeString(b.String())
}

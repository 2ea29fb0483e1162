package scraper

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// MinContentLength is the shortest extracted text worth keeping. Pages and
// PDFs below this are treated as empty and skipped.
const MinContentLength = 50

// nonContentSelectors matches the boilerplate stripped before text extraction
const nonContentSelectors = "script, style, header, footer, nav, .sidebar, .menu, .ad"

// CleanText collapses all whitespace runs to single spaces and trims
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractHTML parses an HTML page and returns its title and body text with
// navigation and other boilerplate removed
func ExtractHTML(body []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = CleanText(doc.Find("title").First().Text())
	doc.Find(nonContentSelectors).Remove()
	text = CleanText(doc.Find("body").Text())

	return title, text, nil
}

// SelectionText returns the cleaned, concatenated text of every element
// matching selector
func SelectionText(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return CleanText(strings.Join(parts, " "))
}

// ExtractPDF extracts plain text from PDF bytes. Corrupt or image-only PDFs
// return an error and the caller drops the item.
func ExtractPDF(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return CleanText(builder.String()), nil
}

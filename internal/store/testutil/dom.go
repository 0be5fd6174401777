package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"finitefield.org/boardgame-store/internal/store/templates/helpers"
)

// ParseHTML parses a response body for goquery assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Text returns the trimmed text of sel with narrow and non-breaking spaces
// folded to plain spaces, so ruble amounts compare as "1 234 ₽".
func Text(sel *goquery.Selection) string {
	return helpers.NormalizeSpaces(strings.TrimSpace(sel.Text()))
}

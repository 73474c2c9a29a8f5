package retrieve

import (
	"regexp"
	"strings"
	"unicode"
)

// pagePattern matches page/chapter references like "page 42", "chapter 3",
// "pg 7", or "p. 12".
var pagePattern = regexp.MustCompile(`(?i)\b(page|pages|chapter|chapters|pg|p\.?\s*\d)`)

// numberPattern extracts the first number in a query.
var numberPattern = regexp.MustCompile(`\d+`)

// translationKeywords indicate a translation or cross-language request.
var translationKeywords = []string{
	"translate", "translation", "hindi", "हिंदी", "español", "spanish",
	"français", "french", "deutsch", "german",
}

// isPageQuery reports whether the query references a page or chapter.
// Such queries need broader context than topical ones to have a chance of
// covering the requested region.
func isPageQuery(query string) bool {
	return pagePattern.MatchString(query)
}

// isTranslationQuery reports whether the query asks for a translation,
// detected via keywords or non-Latin script ranges.
func isTranslationQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range translationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, r := range query {
		if unicode.In(r, unicode.Devanagari, unicode.Han, unicode.Arabic, unicode.Cyrillic) {
			return true
		}
	}
	return false
}

// extractNumber returns the first number in the query, or "" if none.
func extractNumber(query string) string {
	return numberPattern.FindString(query)
}

// effectiveK widens the base k for queries that need broader context:
// page/chapter references triple it (capped at 15), translation requests
// double it (capped at 10).
func effectiveK(query string, k int) int {
	if isPageQuery(query) {
		return min(3*k, MaxPageWidenK)
	}
	if isTranslationQuery(query) {
		return min(2*k, MaxTranslationWidenK)
	}
	return k
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package usecases

import (
	"strings"
	"unicode"

	"project_healthbot/internal/entities"
)

var (
	devanagari = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}}
	odia       = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0B00, Hi: 0x0B7F, Stride: 1}}}
)

// Latin-script cues for users typing Hindi or Odia without their script.
// Checked only when no script characters are present.
var (
	hindiKeywords = []string{"namaste", "kya", "kaise", "bukhar", "bimari", "dawai", "lakshan", "nahi", "hindi"}
	odiaKeywords  = []string{"odia", "oriya", "kemiti", "namaskar", "jwara", "bemara"}
)

// DetectLanguage classifies text into a supported language. Script ranges
// take precedence over keyword cues. Empty text yields the default language.
func DetectLanguage(text string) entities.Language {
	if text == "" {
		return entities.DefaultLanguage
	}
	for _, r := range text {
		if unicode.Is(devanagari, r) {
			return entities.LangHindi
		}
	}
	for _, r := range text {
		if unicode.Is(odia, r) {
			return entities.LangOdia
		}
	}

	lower := strings.ToLower(text)
	if containsAny(lower, hindiKeywords) {
		return entities.LangHindi
	}
	if containsAny(lower, odiaKeywords) {
		return entities.LangOdia
	}
	return entities.DefaultLanguage
}

// containsAny reports whether any keyword is a substring of s. Both sides
// are expected lower-cased.
func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

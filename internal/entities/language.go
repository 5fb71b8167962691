package entities

import "strings"

// Language is one of the closed set of supported language codes.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangOdia    Language = "or"

	DefaultLanguage = LangEnglish
)

// SupportedLanguages lists every language a multilingual artifact must cover.
var SupportedLanguages = []Language{LangEnglish, LangHindi, LangOdia}

var languageNames = map[Language]string{
	LangEnglish: "English",
	LangHindi:   "Hindi",
	LangOdia:    "Odia",
}

// ParseLanguage normalizes a language code. Empty input yields the default
// language; anything outside the supported set reports ok=false.
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage, true
	}
	lang := Language(code)
	if _, ok := languageNames[lang]; !ok {
		return DefaultLanguage, false
	}
	return lang, true
}

// IsSupported reports whether l belongs to the supported set.
func (l Language) IsSupported() bool {
	_, ok := languageNames[l]
	return ok
}

// Name returns the English display name, e.g. "Hindi".
func (l Language) Name() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}

// Localized holds one text per language.
type Localized map[Language]string

// In returns the text for lang, falling back to the default language.
func (t Localized) In(lang Language) string {
	if s, ok := t[lang]; ok && s != "" {
		return s
	}
	return t[DefaultLanguage]
}

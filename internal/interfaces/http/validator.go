package http

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxRequestBytes    = 1 << 20
	MaxQuestionLength  = 2000
	MaxBroadcastLength = 4096
)

// SanitizeString removes null bytes and invalid UTF-8.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return s
}

// ValidateLength checks the byte length is within [min, max].
func ValidateLength(s string, min, max int) bool {
	l := len(s)
	return l >= min && l <= max
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

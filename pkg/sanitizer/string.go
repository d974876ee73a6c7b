package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeCity title-cases each word so "  casa   blanca" and "Casa Blanca"
// land in the same bucket of the city facet.
func NormalizeCity(city string) string {
	words := strings.Fields(city)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}

// NormalizeText trims free text such as descriptions and review comments
// while keeping paragraph breaks.
func NormalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

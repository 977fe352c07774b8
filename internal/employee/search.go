package employee

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FoldSearch lower-cases s, strips Vietnamese diacritics and collapses
// whitespace so "Nguyễn  Văn Đức" and "nguyen van duc" compare equal.
func FoldSearch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return whitespaceRe.ReplaceAllString(StripDiacritics(s), " ")
}

// StripDiacritics removes combining marks and maps Đ/đ to D/d, keeping case.
func StripDiacritics(s string) string {
	// Đ has no canonical decomposition.
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)

	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Matches reports whether term hits the employee's name (folded substring)
// or id (plain substring). An empty term matches everyone.
func (e *Employee) Matches(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	if strings.Contains(e.ID, term) {
		return true
	}
	return strings.Contains(FoldSearch(e.Name), FoldSearch(term))
}

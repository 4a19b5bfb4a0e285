package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonSlug      = regexp.MustCompile(`[^a-z0-9]+`)
	reMultiNewline = regexp.MustCompile(`\n{3,}`)
)

func nfc(s string) string {
	return norm.NFC.String(s)
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func dropControlKeepLines(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// foldDiacritics turns "Café" into "Cafe".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TrimAndNormalize trims s and collapses every whitespace run to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return Pipeline{nfc, dropControl, TrimAndNormalize}.Apply(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeNotes keeps line structure but caps blank runs at one empty line.
func NormalizeNotes(notes string) string {
	return Pipeline{
		nfc,
		dropControlKeepLines,
		func(s string) string { return reMultiNewline.ReplaceAllString(s, "\n\n") },
		strings.TrimSpace,
	}.Apply(notes)
}

// NormalizeSlug derives a URL-safe slug, e.g. "Café Chat!" becomes "cafe-chat".
func NormalizeSlug(s string) string {
	return Pipeline{
		strings.TrimSpace,
		foldDiacritics,
		strings.ToLower,
		func(s string) string { return reNonSlug.ReplaceAllString(s, "-") },
		func(s string) string { return strings.Trim(s, "-") },
	}.Apply(s)
}

// NormalizeColor lower-cases a hex color and adds the leading '#' when missing.
func NormalizeColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if color != "" && !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	return color
}

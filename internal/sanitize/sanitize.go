package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxTextLength = 500

// Text trims, collapses runs of whitespace and strips control characters.
// Free-text fields go through this before persistence.
func Text(input string) string {
	var builder strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(input) {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				builder.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		builder.WriteRune(r)
	}
	cleaned := builder.String()
	if len(cleaned) > maxTextLength {
		cut := maxTextLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return cleaned
}

// Slug derives a URL-safe, globally unique slug from an event name:
// lowercased, accents folded, non-alphanumerics collapsed to hyphens, with
// a short random suffix so two events named the same never collide.
func Slug(name string) string {
	base := fold(strings.ToLower(strings.TrimSpace(name)))

	var builder strings.Builder
	lastHyphen := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && builder.Len() > 0 {
				builder.WriteRune('-')
			}
			lastHyphen = true
		}
	}
	slug := strings.Trim(builder.String(), "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	if slug == "" {
		slug = "event"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// Key keeps only the characters a capability key can contain.
func Key(input string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, strings.TrimSpace(input))
}

// Emoji keeps at most one grapheme-ish rune cluster for the person emoji
// field; anything that looks like plain text is dropped.
func Emoji(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	var runes []rune
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		runes = append(runes, r)
		if len(runes) >= 4 {
			break
		}
	}
	return string(runes)
}

var foldPairs = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "á", "a",
	"ç", "c",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i", "í", "i",
	"ô", "o", "ö", "o", "ó", "o",
	"ù", "u", "û", "u", "ü", "u", "ú", "u",
	"œ", "oe", "æ", "ae",
	"ñ", "n",
)

func fold(input string) string {
	return foldPairs.Replace(input)
}

// FoldName lowercases and folds accents for case-insensitive name matching.
func FoldName(name string) string {
	return fold(strings.ToLower(strings.TrimSpace(name)))
}

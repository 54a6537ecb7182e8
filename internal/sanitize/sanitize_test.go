package sanitize_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yogz/colist/internal/sanitize"
)

func TestText_CollapsesWhitespaceAndControls(t *testing.T) {
	input := "  Raclette \t du   chef\x00\n "
	got := sanitize.Text(input)
	if got != "Raclette du chef" {
		t.Errorf("expected 'Raclette du chef', got %q", got)
	}
}

func TestText_Empty(t *testing.T) {
	if got := sanitize.Text("   \t  "); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestText_TruncatesOnRuneBoundary(t *testing.T) {
	input := "x" + strings.Repeat("é", 400)
	got := sanitize.Text(input)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) > 500 {
		t.Errorf("length = %d bytes, want at most 500", len(got))
	}
	if !strings.HasSuffix(got, "é") {
		t.Errorf("truncated string ends with %q, want a whole rune", got[len(got)-1:])
	}
}

func TestSlug_FoldsAccentsAndAddsSuffix(t *testing.T) {
	slug := sanitize.Slug("Réveillon chez Cécile !")
	if !strings.HasPrefix(slug, "reveillon-chez-cecile-") {
		t.Errorf("unexpected slug prefix: %q", slug)
	}
	parts := strings.Split(slug, "-")
	suffix := parts[len(parts)-1]
	if len(suffix) != 8 {
		t.Errorf("expected 8-char random suffix, got %q", suffix)
	}
}

func TestSlug_EmptyNameFallsBack(t *testing.T) {
	slug := sanitize.Slug("???")
	if !strings.HasPrefix(slug, "event-") {
		t.Errorf("expected fallback slug, got %q", slug)
	}
}

func TestSlug_Unique(t *testing.T) {
	if sanitize.Slug("Noël") == sanitize.Slug("Noël") {
		t.Error("expected two slugs for the same name to differ")
	}
}

func TestKey_StripsInvalidCharacters(t *testing.T) {
	got := sanitize.Key(" abc-123_XY;drop table ")
	if got != "abc-123_XYdroptable" {
		t.Errorf("unexpected key: %q", got)
	}
}

func TestEmoji_DropsPlainText(t *testing.T) {
	if got := sanitize.Emoji("hello"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if got := sanitize.Emoji("🎉"); got != "🎉" {
		t.Errorf("expected emoji preserved, got %q", got)
	}
}

func TestFoldName(t *testing.T) {
	if got := sanitize.FoldName("  CÉCILE "); got != "cecile" {
		t.Errorf("expected 'cecile', got %q", got)
	}
}

package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/mahallehub/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	in := "Evde yoktu, yarın tekrar aranacak"
	if got := htmlsanitize.PlainText(in); got != in {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_StripsMarkup(t *testing.T) {
	got := htmlsanitize.PlainText("<b>ulaşıldı</b><script>alert('x')</script>")
	if got != "ulaşıldı" {
		t.Errorf("expected markup stripped, got %q", got)
	}
}

func TestPlainText_Trims(t *testing.T) {
	if got := htmlsanitize.PlainText("  not  "); got != "not" {
		t.Errorf("expected trimmed, got %q", got)
	}
}

func TestPlainTextPtr(t *testing.T) {
	if htmlsanitize.PlainTextPtr(nil) != nil {
		t.Error("expected nil for nil input")
	}
	in := "<i>x</i>"
	got := htmlsanitize.PlainTextPtr(&in)
	if got == nil || *got != "x" {
		t.Errorf("expected \"x\", got %v", got)
	}
}

func TestPlainText_KeepsPunctuation(t *testing.T) {
	cases := []string{
		"Ali'ye ulaşıldı",
		"anne & baba evde",
		`"yarın" aranacak`,
		"5 < 10 dk sonra",
	}
	for _, in := range cases {
		if got := htmlsanitize.PlainText(in); got != in {
			t.Errorf("PlainText(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestPlainText_Idempotent(t *testing.T) {
	in := "anne & baba <b>evde</b>"
	once := htmlsanitize.PlainText(in)
	if twice := htmlsanitize.PlainText(once); twice != once {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
	if once != "anne & baba evde" {
		t.Errorf("got %q", once)
	}
}

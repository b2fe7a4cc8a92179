package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Morning walk by the river"); got != "Morning walk by the river" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_SafeFormatting(t *testing.T) {
	input := "<p><strong>Loud</strong> and <em>quiet</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p onclick="alert('xss')">Click</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); got == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p>Content</p><iframe src="https://evil.example"></iframe>`)
	if strings.Contains(got, "iframe") {
		t.Errorf("expected iframe removed, got %q", got)
	}
	if !strings.Contains(got, "Content") {
		t.Errorf("expected safe content preserved, got %q", got)
	}
}

func TestStripTags_PlainText(t *testing.T) {
	if got := htmlsanitize.StripTags("Lunch spot"); got != "Lunch spot" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStripTags_RemovesAllMarkup(t *testing.T) {
	got := htmlsanitize.StripTags("<b>Lunch</b> <script>alert(1)</script>spot")
	if got != "Lunch spot" {
		t.Errorf("expected all tags stripped, got %q", got)
	}
}

func TestStripTags_UnescapesEntities(t *testing.T) {
	if got := htmlsanitize.StripTags("Fish &amp; chips"); got != "Fish & chips" {
		t.Errorf("expected entities unescaped, got %q", got)
	}
}

func TestStripTags_TrimsWhitespace(t *testing.T) {
	if got := htmlsanitize.StripTags("  padded  "); got != "padded" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

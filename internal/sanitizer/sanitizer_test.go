package sanitizer

import (
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Property: plain-text sanitization strips every tag, whatever the
// surrounding content.
func TestSanitizeText_RemovesAllMarkup(t *testing.T) {
	s := New()

	rapid.Check(t, func(t *rapid.T) {
		before := rapid.StringMatching(`[a-zA-Z0-9 ]{0,20}`).Draw(t, "before")
		tag := rapid.SampledFrom([]string{"script", "img", "b", "div", "iframe", "a"}).Draw(t, "tag")
		inner := rapid.StringMatching(`[a-zA-Z0-9 ]{0,20}`).Draw(t, "inner")
		after := rapid.StringMatching(`[a-zA-Z0-9 ]{0,20}`).Draw(t, "after")

		input := before + "<" + tag + ">" + inner + "</" + tag + ">" + after
		result := s.SanitizeText(input)

		if strings.Contains(result, "<"+tag) || strings.Contains(result, "</"+tag) {
			t.Fatalf("tag %q survived text sanitization: %q", tag, result)
		}
	})
}

func TestSanitizeText_TrimsWhitespace(t *testing.T) {
	s := New()

	if got := s.SanitizeText("  Nanna Berg  "); got != "Nanna Berg" {
		t.Errorf("expected trimmed output, got %q", got)
	}
}

func TestSanitizeRich_RemovesScripts(t *testing.T) {
	s := New()

	rapid.Check(t, func(t *rapid.T) {
		scriptContent := rapid.StringMatching(`[a-zA-Z0-9\(\);]{1,30}`).Draw(t, "scriptContent")
		input := "<p>Safe content</p><script>" + scriptContent + "</script>"

		result := s.SanitizeRich(input)

		if regexp.MustCompile(`(?i)<script`).MatchString(result) {
			t.Fatalf("script tag survived rich sanitization: %q", result)
		}
		if !strings.Contains(result, "<p>Safe content</p>") {
			t.Errorf("benign paragraph should survive: %q", result)
		}
	})
}

func TestSanitizeRich_RemovesEventHandlers(t *testing.T) {
	s := New()

	handlers := []string{"onclick", "onload", "onerror", "onmouseover", "onfocus"}

	rapid.Check(t, func(t *rapid.T) {
		handler := rapid.SampledFrom(handlers).Draw(t, "handler")
		value := rapid.StringMatching(`[a-zA-Z0-9\(\)]{1,20}`).Draw(t, "value")

		input := `<p ` + handler + `="` + value + `">Content</p>`
		result := s.SanitizeRich(input)

		if regexp.MustCompile(`(?i)\son[a-z]+=`).MatchString(result) {
			t.Fatalf("event handler survived: %q (input %q)", result, input)
		}
	})
}

func TestSanitizeRich_KeepsFormattingMarkup(t *testing.T) {
	s := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"paragraph", "<p>Hello</p>", "<p>Hello</p>"},
		{"bold", "<strong>Hot deal</strong>", "<strong>Hot deal</strong>"},
		{"list", "<ul><li>Flights</li><li>Hotel</li></ul>", "<ul><li>Flights</li><li>Hotel</li></ul>"},
		{"emphasis", "<em>limited</em>", "<em>limited</em>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeRich(tt.input); got != tt.want {
				t.Errorf("SanitizeRich(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeRich_LinksGetNoFollow(t *testing.T) {
	s := New()

	result := s.SanitizeRich(`<a href="https://example.com/deals">Deals</a>`)

	if !strings.Contains(result, `href="https://example.com/deals"`) {
		t.Errorf("link href should survive: %q", result)
	}
	if !strings.Contains(result, "nofollow") {
		t.Errorf("links should carry rel=nofollow: %q", result)
	}
}

func TestSanitizeRich_RemovesIframes(t *testing.T) {
	s := New()

	result := s.SanitizeRich(`<p>Intro</p><iframe src="https://evil.example"></iframe>`)

	if strings.Contains(result, "<iframe") {
		t.Errorf("iframe survived: %q", result)
	}
	if !strings.Contains(result, "<p>Intro</p>") {
		t.Errorf("benign content should survive: %q", result)
	}
}

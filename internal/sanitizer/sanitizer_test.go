package sanitizer

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScript(t *testing.T) {
	got := Sanitize(`Before<script>alert("xss")</script>After`)
	if strings.Contains(got, "alert") {
		t.Errorf("Sanitize left script content behind: %q", got)
	}
	if !strings.Contains(got, "Before") || !strings.Contains(got, "After") {
		t.Errorf("Sanitize dropped surrounding text: %q", got)
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	got := Sanitize(`<div class="x"><p>Hello <b>world</b></p></div>`)
	if strings.ContainsAny(got, "<>") && strings.Contains(got, "div") {
		t.Errorf("Sanitize left markup behind: %q", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Errorf("Sanitize dropped text content: %q", got)
	}
}

func TestSanitizePlainTextUnchanged(t *testing.T) {
	input := "An essay about birds.\nThey fly south in winter."
	if got := Sanitize(input); got != input {
		t.Errorf("Sanitize altered plain text: %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		`<script>evil()</script>visible`,
		"a &lt; b &amp;&amp; c &gt; d",
		"&amp;lt;doubly escaped&amp;gt;",
		"<p>para one</p>\n\n<p>para two</p>",
		"unicode: héllo wörld — 你好",
		"stray < angle > brackets",
		"",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

func TestSanitizeCollapsesBlankLines(t *testing.T) {
	got := Sanitize("line one\n\n\n   \nline two")
	if got != "line one\nline two" {
		t.Errorf("Sanitize = %q, want blank lines removed", got)
	}
}

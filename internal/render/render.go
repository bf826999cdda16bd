// Package render turns question records into text fragments for the web
// templates. Question content is trusted HTML from the content repository.
package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/conorfennell/stepquiz/internal/domain"
)

// ResolveText picks the text to show for lang. A single language falls back
// to the other one when missing. LangBoth always emits both labelled blocks,
// empty or not, so the page can switch languages with CSS alone.
func ResolveText(t domain.LocalizedText, lang domain.Language) string {
	if t.IsPlain {
		return t.Plain
	}
	switch lang {
	case domain.LangZH:
		return firstNonEmpty(t.ZH, t.EN)
	case domain.LangBoth:
		return `<div class="text-zh">` + t.ZH + `</div><div class="text-en">` + t.EN + `</div>`
	default:
		return firstNonEmpty(t.EN, t.ZH)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ExhibitURLFunc maps an exhibit file of a question to a fetchable URL.
type ExhibitURLFunc func(q *domain.Question, file string) string

// ExhibitPlaceholder is the token that marks where exhibit n (1-based) goes.
func ExhibitPlaceholder(n int) string {
	return fmt.Sprintf("{{exhibit_%d}}", n)
}

// SubstituteExhibits replaces {{exhibit_N}} with an inline image of the Nth
// exhibit file. Tokens past the end of ExhibitFiles are left alone.
func SubstituteExhibits(text string, q *domain.Question, resolve ExhibitURLFunc) string {
	if q == nil || !q.HasExhibits || q.ExhibitFiles == nil {
		return text
	}
	for i, file := range q.ExhibitFiles {
		placeholder := ExhibitPlaceholder(i + 1)
		if !strings.Contains(text, placeholder) {
			continue
		}
		text = strings.ReplaceAll(text, placeholder, exhibitHTML(resolve(q, file), i+1))
	}
	return text
}

func exhibitHTML(url string, n int) string {
	u := html.EscapeString(url)
	return fmt.Sprintf(`<div class="exhibit-inline" data-exhibit="%s">`+
		`<a href="%s" target="_blank"><img src="%s" alt="Exhibit %d" class="exhibit-thumbnail"></a>`+
		`<div class="exhibit-label"><span class="text-zh">点击查看大图</span><span class="text-en">Click to enlarge</span></div>`+
		`</div>`, u, u, u, n)
}

// FormatExplanation splits an explanation into paragraphs. Blank lines
// separate paragraphs; text without any blank line is split per line.
// CRLF line endings are treated as LF.
func FormatExplanation(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	if len(parts) == 1 {
		parts = strings.Split(text, "\n")
	}

	paragraphs := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Paragraphs wraps each paragraph in a <p> element.
func Paragraphs(paragraphs []string) template.HTML {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// FormatTags returns at most limit tags. A limit <= 0 means no limit.
func FormatTags(tags domain.Tags, limit int) []string {
	out := []string{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

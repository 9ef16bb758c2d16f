// Package markdown renders post bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// Raw HTML passes through goldmark and is stripped by bluemonday
		// afterwards, so markdown that embeds benign tags keeps working.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("code", "pre")

	return &Renderer{md: md, policy: policy}
}

// Render converts markdown source to HTML safe for template injection.
// On conversion failure the raw text is escaped and returned as-is rather
// than losing the post body.
func (r *Renderer) Render(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	safe := r.policy.Sanitize(buf.String())
	return template.HTML(strings.TrimSpace(safe))
}

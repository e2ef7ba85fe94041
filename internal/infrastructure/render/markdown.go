// Package render turns user-written answer text into HTML that is safe to embed.
package render

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders CommonMark with GitHub extensions and strips anything the
// UGC policy does not allow. Raw HTML in the source is never passed through.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return &Markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Render is safe for concurrent use.
func (m *Markdown) Render(content string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return m.policy.Sanitize("<p>" + html.EscapeString(content) + "</p>")
	}
	return m.policy.Sanitize(buf.String())
}

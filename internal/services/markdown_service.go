package services

import (
	"bytes"
	"html/template"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownService renders AI solution text as sanitized HTML
type MarkdownService struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var _ serviceinterfaces.MarkdownRenderer = (*MarkdownService)(nil)

// NewMarkdownService creates a renderer with GitHub flavoured markdown and a UGC sanitizer policy
func NewMarkdownService() *MarkdownService {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")

	return &MarkdownService{
		md:     md,
		policy: policy,
	}
}

// ToHTML converts markdown and sanitizes the output
func (s *MarkdownService) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return s.policy.Sanitize(buf.String()), nil
}

// Render returns sanitized HTML for use in templates.
// On a conversion failure the input is returned escaped.
func (s *MarkdownService) Render(markdown string) template.HTML {
	if markdown == "" {
		return ""
	}
	out, err := s.ToHTML(markdown)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(out)
}

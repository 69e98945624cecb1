// Package outline parses travel plan Markdown: heading outlines for quick
// navigation and standalone HTML export.
package outline

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one section heading in a plan.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	ID    string `json:"id" yaml:"id"`
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Linkify,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Headings returns every heading in content in document order.
func Headings(content string) []Heading {
	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	var out []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: plainText(h, source)}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		out = append(out, heading)
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Title returns the text of the first level-1 heading, or fallback.
func Title(content, fallback string) string {
	for _, h := range Headings(content) {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	return fallback
}

// plainText concatenates the text leaves under n, dropping inline markup.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

var pageTemplate = template.Must(template.New("plan").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<nav>
<ul>
{{- range .Headings}}{{if le .Level 2}}
<li class="h{{.Level}}"><a href="#{{.ID}}">{{.Text}}</a></li>
{{- end}}{{end}}
</ul>
</nav>
<main>
{{.Body}}
</main>
</body>
</html>
`))

// HTML renders content as a standalone page with a table of contents built
// from its level-1 and level-2 headings. Raw HTML in content is not passed
// through.
func HTML(title, content string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(content), &body); err != nil {
		return nil, fmt.Errorf("convert plan: %w", err)
	}

	data := struct {
		Title    string
		Headings []Heading
		Body     template.HTML
	}{
		Title:    Title(content, title),
		Headings: Headings(content),
		Body:     template.HTML(body.String()),
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("render plan page: %w", err)
	}
	return out.Bytes(), nil
}

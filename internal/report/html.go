package report

// file: internal/report/html.go

import (
	"bytes"
	"html"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdOnce sync.Once
	md     goldmark.Markdown
)

func markdown() goldmark.Markdown {
	mdOnce.Do(func() {
		md = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(ghtml.WithXHTML()),
		)
	})
	return md
}

// HTML renders the markdown report as a standalone HTML page.
func HTML(r Report) (string, error) {
	var body bytes.Buffer
	if err := markdown().Convert([]byte(Markdown(r)), &body); err != nil {
		return "", errors.Wrap(err, "converting report to HTML")
	}
	title := r.Title
	if title == "" {
		title = "Work report"
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	page.WriteString(html.EscapeString(title))
	page.WriteString("</title></head><body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.String(), nil
}

package web

import (
	"embed"
	"io/fs"

	template "github.com/goliatone/go-template"

	"github.com/goliatone/go-transfers/components/dashboard"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// pages. Template names and extends paths are relative to the templates
// directory; a parent named in extends resolves next to the child.
func NewTemplateRenderer() (dashboard.Renderer, error) {
	pages, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(
		template.WithFS(pages),
		template.WithExtension(".html"),
	)
}

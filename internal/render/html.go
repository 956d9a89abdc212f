package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// HTML writes the shop page for v to w. The page is rendered into a buffer
// first so a template error never leaves a half-written response.
func HTML(w io.Writer, v View) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Package view renders the server-side HTML pages. Every page template is
// parsed together with the base layout so pages only define their own
// "title" and "content" blocks.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	entries, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, page := range entries {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/layouts/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", page, err)
		}
		pages[path.Base(page)] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render implements echo.Renderer. The name is the page file name, e.g.
// "login.html".
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}

	m, ok := data.(map[string]any)
	if !ok {
		if data != nil {
			return fmt.Errorf("view: template data must be map[string]any")
		}
		m = map[string]any{}
	}
	if _, ok := m["CSRFToken"]; !ok {
		tok, _ := c.Get("csrf_token").(string)
		m["CSRFToken"] = tok
	}
	// Sticky form values; default to empty so a bare GET render does not
	// print "<no value>".
	for _, key := range []string{"Email", "FullName"} {
		if _, ok := m[key]; !ok {
			m[key] = ""
		}
	}

	return t.ExecuteTemplate(w, "base.html", m)
}

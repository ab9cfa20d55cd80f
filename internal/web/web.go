// Package web renders the server-side HTML shell for the BFF.
//
// Every page carries the resolved theme in the data-theme attribute of <html> and the bootstrapped session as JSON
// in a <script id="session" type="application/json"> block, so the first paint matches what the client would
// resolve on its own.
//
// Templates are embedded from templates/*.html:
//   - layout.html : the document shell shared by all pages
//   - home.html, profile.html, login.html, register.html : page bodies
//   - callback.html : the result page the terminal client's one-shot Google callback shows
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/desertthunder/travelers/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the view model of a shell page. It doubles as the theme document of a request.
type Page struct {
	Name    string
	Title   string
	Path    string
	Theme   models.Theme
	Session models.Session
}

// NewPage returns the page registered for path, or false.
func NewPage(path string) (*Page, bool) {
	p, ok := pages[path]
	if !ok {
		return nil, false
	}
	p.Path = path
	p.Theme = models.DefaultTheme
	return &p, true
}

var pages = map[string]Page{
	"/":              {Name: "home", Title: "Travelers"},
	"/profile":       {Name: "profile", Title: "Profile"},
	"/auth/login":    {Name: "login", Title: "Sign in"},
	"/auth/register": {Name: "register", Title: "Create account"},
}

// Paths lists every path with a shell page.
func Paths() []string {
	paths := make([]string, 0, len(pages))
	for path := range pages {
		paths = append(paths, path)
	}
	return paths
}

// ApplyTheme sets the data-theme attribute.
func (p *Page) ApplyTheme(theme models.Theme) {
	p.Theme = theme
}

// User is a template helper returning the session user or nil.
func (p *Page) User() *models.UserProfile {
	return p.Session.User
}

// CallbackResult is the view model of the one-shot OAuth callback page.
type CallbackResult struct {
	OK      bool
	Message string
}

// Renderer executes the embedded templates.
type Renderer struct {
	pages    map[string]*template.Template
	callback *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, p := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+p.Name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", p.Name, err)
		}
		r.pages[p.Name] = tmpl
	}

	callback, err := template.ParseFS(templateFS, "templates/callback.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse callback template: %w", err)
	}
	r.callback = callback
	return r, nil
}

// Render writes page. Output is buffered so a template error never produces a partial document.
func (r *Renderer) Render(w io.Writer, page *Page) error {
	tmpl, ok := r.pages[page.Name]
	if !ok {
		return fmt.Errorf("unknown page %q", page.Name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", page.Name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderCallback writes the OAuth callback result page.
func (r *Renderer) RenderCallback(w io.Writer, result CallbackResult) error {
	var buf bytes.Buffer
	if err := r.callback.Execute(&buf, result); err != nil {
		return fmt.Errorf("failed to render callback: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

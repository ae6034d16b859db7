// Package docs renders the embedded markdown documentation pages.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed pages/*.md
var pagesFS embed.FS

// Page is one rendered documentation page
type Page struct {
	Slug  string
	Title string
	HTML  template.HTML
}

// Library holds every page, rendered once at startup
type Library struct {
	pages map[string]*Page
}

// Load renders all embedded pages
func Load() (*Library, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	entries, err := pagesFS.ReadDir("pages")
	if err != nil {
		return nil, err
	}

	lib := &Library{pages: make(map[string]*Page, len(entries))}
	for _, entry := range entries {
		name := entry.Name()
		src, err := pagesFS.ReadFile(path.Join("pages", name))
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}

		slug := strings.TrimSuffix(name, ".md")
		lib.pages[slug] = &Page{
			Slug:  slug,
			Title: title(src, slug),
			// goldmark escapes raw HTML unless WithUnsafe is set
			HTML: template.HTML(buf.String()),
		}
	}

	return lib, nil
}

// Page returns the page for slug
func (l *Library) Page(slug string) (*Page, bool) {
	p, ok := l.pages[slug]
	return p, ok
}

// Slugs lists the available pages in alphabetical order
func (l *Library) Slugs() []string {
	slugs := make([]string, 0, len(l.pages))
	for slug := range l.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// title uses the first level-one heading, or the slug when there is none
func title(src []byte, slug string) string {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return slug
}

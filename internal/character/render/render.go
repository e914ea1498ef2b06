// Package render turns character records into the listing page.
//
// The page is a single html/template document embedded in the binary; every
// record value is escaped for its context (text, attribute or URL).
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"potterdex/internal/character/filter"
	"potterdex/internal/character/models"
)

//go:embed templates/page.html
var templates embed.FS

const (
	DefaultTitle = "Personajes de Harry Potter"
	BootstrapCSS = "https://stackpath.bootstrapcdn.com/bootstrap/4.5.2/css/bootstrap.min.css"

	pageTemplate = "page.html"
)

// Page is the data for one listing response.
type Page struct {
	// Heading describes the active selection; empty for the unfiltered listing.
	Heading    string
	Characters []models.Character
}

type filterLink struct {
	Code  int
	Label string
}

type formField struct {
	Name  string
	Label string
}

type pageData struct {
	Page
	Title         string
	StylesheetURL string
	Filters       []filterLink
	FormFields    []formField
}

var (
	filterLinks = []filterLink{
		{Code: int(filter.CodeHuman), Label: filter.CodeHuman.Label()},
		{Code: int(filter.CodeBornBefore), Label: filter.CodeBornBefore.Label()},
		{Code: int(filter.CodeHollyWand), Label: filter.CodeHollyWand.Label()},
		{Code: int(filter.CodeAliveStudents), Label: filter.CodeAliveStudents.Label()},
	}
	formFields = []formField{
		{Name: models.FormName, Label: "Nombre"},
		{Name: models.FormSpecies, Label: "Especie"},
		{Name: models.FormGender, Label: "Género"},
		{Name: models.FormHouse, Label: "Casa"},
		{Name: models.FormYearOfBirth, Label: "Año de Nacimiento"},
	}
)

// Renderer executes the parsed page template. Safe for concurrent use.
type Renderer struct {
	tmpl  *template.Template
	title string
}

// New parses the embedded template once.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/"+pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{tmpl: tmpl, title: DefaultTitle}, nil
}

// Render writes the complete HTML document for page to w.
func (r *Renderer) Render(w io.Writer, page Page) error {
	data := pageData{
		Page:          page,
		Title:         r.title,
		StylesheetURL: BootstrapCSS,
		Filters:       filterLinks,
		FormFields:    formFields,
	}
	if err := r.tmpl.ExecuteTemplate(w, pageTemplate, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

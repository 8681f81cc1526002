package api

import (
	"embed"
	"html/template"

	"github.com/ajharbinger/churnguard/internal/recommend"
)

//go:embed templates/*.html
var templatesFS embed.FS

// templateFuncs are available to every dashboard template
var templateFuncs = template.FuncMap{
	"currency": recommend.FormatCurrency,
	"percent":  recommend.FormatPercent,
}

// LoadTemplates parses the embedded dashboard templates
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
}

package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var reportTmpl *template.Template

// loadTemplatesFromFS loads report templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	reportTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded report templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// ReportData is the view model for the report page.
type ReportData struct {
	SiteName       string
	ChartLoaderURL string
	Extended       bool
	HistoryLabel   string
	Chart          Chart
	Summary        Summary
}

func RenderReport(w io.Writer, data *ReportData) error {
	if reportTmpl == nil {
		return errors.New("report template not loaded: call views.LoadTemplates during startup")
	}
	return reportTmpl.ExecuteTemplate(w, "report.html", data)
}

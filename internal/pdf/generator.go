package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"go-jobscraper/internal/models"
)

//go:embed templates/jobs.html
var jobsTemplate string

// Printer turns HTML into PDF bytes
type Printer interface {
	PrintPDF(ctx context.Context, markup string) ([]byte, error)
}

// Report is one scrape rendered as a document
type Report struct {
	ListingURL  string
	GeneratedAt time.Time
	Jobs        []models.JobInformation
}

// Generator renders scrape reports to HTML and, through a Printer, to PDF
type Generator struct {
	tmpl    *template.Template
	printer Printer
}

func NewGenerator(printer Printer) (*Generator, error) {
	funcMap := template.FuncMap{
		"value": models.Value,
		"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}
	tmpl, err := template.New("jobs").Funcs(funcMap).Parse(jobsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl, printer: printer}, nil
}

// RenderHTML executes the report template
func (g *Generator) RenderHTML(report Report) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders the report and prints it to PDF
func (g *Generator) Generate(ctx context.Context, report Report) ([]byte, error) {
	markup, err := g.RenderHTML(report)
	if err != nil {
		return nil, err
	}
	return g.printer.PrintPDF(ctx, markup)
}

// SaveToFile is a helper function to directly save generated PDF to disk
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}

	return os.WriteFile(outputPath, pdfBytes, 0644)
}

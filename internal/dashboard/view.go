package dashboard

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mikey/email-triage-dashboard/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTitle heads the dashboard page
const PageTitle = "AI Email Classifier Dashboard"

// WarningIncomplete is shown when a submission lacks a subject or body
const WarningIncomplete = "Please enter both subject and body"

// InfoNoMatches is shown when records exist but none pass the filters
const InfoNoMatches = "No emails match selected filters."

type spamOption struct {
	Label   string
	Checked bool
}

type urgencyOption struct {
	Value   string
	Checked bool
}

type rowView struct {
	Position int
	Subject  string
	Spam     string
	Category string
	Urgency  string
	Selected bool
}

type detailView struct {
	Position     int
	Subject      string
	Body         string
	Tags         []Tag
	ModelUsed    string
	ClassifiedAt time.Time
}

// pageData is the whole state the dashboard template renders
type pageData struct {
	Title          string
	ModelName      string
	Filter         Filter
	SpamOptions    []spamOption
	UrgencyOptions []urgencyOption
	Warning        string
	Total          int
	Rows           []rowView
	Selected       *detailView
	InfoMessage    string
}

func newPageData(modelName string, filter Filter, records []core.EmailRecord, selected int) *pageData {
	page := &pageData{
		Title:     PageTitle,
		ModelName: modelName,
		Filter:    filter,
		Total:     len(records),
	}

	for _, option := range SpamFilters {
		page.SpamOptions = append(page.SpamOptions, spamOption{
			Label:   option.String(),
			Checked: option == filter.Spam,
		})
	}
	for _, level := range core.UrgencyLevels {
		page.UrgencyOptions = append(page.UrgencyOptions, urgencyOption{
			Value:   level,
			Checked: filter.HasUrgency(level),
		})
	}

	rows := filter.Apply(records)
	if len(records) > 0 && len(rows) == 0 {
		page.InfoMessage = InfoNoMatches
	}

	for _, row := range rows {
		isSelected := row.Position == selected
		page.Rows = append(page.Rows, rowView{
			Position: row.Position,
			Subject:  row.Record.Subject,
			Spam:     string(row.Record.Spam),
			Category: row.Record.Category,
			Urgency:  row.Record.Urgency,
			Selected: isSelected,
		})
		// Only records visible under the current filters can be opened
		if isSelected {
			page.Selected = &detailView{
				Position:     row.Position,
				Subject:      row.Record.Subject,
				Body:         row.Record.Body,
				Tags:         Tags(row.Record),
				ModelUsed:    row.Record.ModelUsed,
				ClassifiedAt: row.Record.ClassifiedAt,
			}
		}
	}

	return page
}

type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return humanize.Time(t)
		},
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
	}).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &renderer{tmpl: tmpl}, nil
}

func (r *renderer) render(w io.Writer, page *pageData) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard.html", page)
}

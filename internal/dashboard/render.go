package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"slices"
	"strings"
	texttemplate "text/template"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/portfolio"
)

//go:embed templates
var templatesFS embed.FS

var (
	reportTemplate = texttemplate.Must(
		texttemplate.New("report.md").Funcs(texttemplate.FuncMap{
			"fixed": fixed,
			"join":  join,
			"cell":  cell,
		}).ParseFS(templatesFS, "templates/report.md"),
	)

	pageTemplate = template.Must(
		template.New("page.html").Funcs(template.FuncMap{
			"fixed": fixed,
		}).ParseFS(templatesFS, "templates/page.html"),
	)
)

func fixed(v float64) string {
	return decimal.NewFromFloat(v).Round(8).StringFixed(2)
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// cell makes free text safe inside one markdown table cell
func cell(v interface{}) string {
	return cellReplacer.Replace(fmt.Sprint(v))
}

func join(v interface{}) string {
	switch vs := v.(type) {
	case []string:
		return strings.Join(vs, ", ")
	case []contracts.RiskLevel:
		parts := make([]string, len(vs))
		for i, r := range vs {
			parts[i] = string(r)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// RenderMarkdown renders the dashboard as a markdown report
func RenderMarkdown(d *contracts.Dashboard) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderTerminal styles markdown for a terminal. style is a glamour standard
// style name ("dark", "light", "notty", "auto").
func RenderTerminal(md, style string) (string, error) {
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return out, nil
}

// PageOption is one checkbox of the filter form
type PageOption struct {
	Value   string
	Checked bool
}

// pageData feeds templates/page.html
type pageData struct {
	Dashboard      *contracts.Dashboard
	Intro          template.HTML
	Query          string
	RiskOptions    []PageOption
	PurposeOptions []PageOption
}

// RenderHTML writes the dashboard page. p supplies the intro and the filter options.
func RenderHTML(w io.Writer, p *portfolio.Portfolio, d *contracts.Dashboard) error {
	var intro bytes.Buffer
	if err := goldmark.Convert([]byte(p.Intro), &intro); err != nil {
		return fmt.Errorf("render intro: %w", err)
	}

	all := p.Instruments()
	data := pageData{
		Dashboard: d,
		// goldmark escapes raw HTML unless WithUnsafe is set
		Intro: template.HTML(intro.String()),
		Query: filterQuery(d.Filter),
	}
	for _, r := range portfolio.RiskLevels(all) {
		checked := len(d.Filter.RiskLevels) == 0 || slices.Contains(d.Filter.RiskLevels, r)
		data.RiskOptions = append(data.RiskOptions, PageOption{Value: string(r), Checked: checked})
	}
	for _, purpose := range portfolio.Purposes(all) {
		data.PurposeOptions = append(data.PurposeOptions, PageOption{Value: purpose, Checked: slices.Contains(d.Filter.Purposes, purpose)})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// filterQuery rebuilds the query string for chart image links
func filterQuery(f contracts.FilterSpec) string {
	values := url.Values{}
	for _, r := range f.RiskLevels {
		values.Add("risk", string(r))
	}
	for _, p := range f.Purposes {
		values.Add("purpose", p)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

package outwriter

import (
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{"fixed": fixed3}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

// Metal status labels used in reports.
const (
	statusExceeded   = "EXCEEDED"
	statusWithin     = "WITHIN LIMIT"
	statusNoStandard = "NO STANDARD"
)

func fixed3(v float64) string {
	return contract.FormatValue(v, 3)
}

// metalRow is one line of the report's concentration section.
type metalRow struct {
	Symbol        string
	Concentration string
	Limit         string
	Unit          string
	Status        string
}

// reportView is the data handed to the HTML template.
type reportView struct {
	Run             schema.RunRecord
	Sample          schema.Sample
	Metals          []metalRow
	Indices         []schema.IndexValue
	Classification  schema.Category
	Overall         schema.Category
	Violations      []string
	Recommendations []string
	GeneratedAt     string
}

// metalStatus compares a reading against its standard.
func metalStatus(c float64, standards schema.Standards, symbol string) (limit, status string) {
	s, ok := standards[symbol]
	if !ok || s <= 0 {
		return "N/A", statusNoStandard
	}
	if c > s {
		return schema.FormatConcentration(s), statusExceeded
	}
	return schema.FormatConcentration(s), statusWithin
}

func metalRows(detail schema.RunDetail) []metalRow {
	conc := detail.Sample.Concentrations
	rows := make([]metalRow, 0, len(conc))
	for _, symbol := range slices.Sorted(maps.Keys(conc)) {
		limit, status := metalStatus(conc[symbol], detail.Standards, symbol)
		rows = append(rows, metalRow{
			Symbol:        symbol,
			Concentration: schema.FormatConcentration(conc[symbol]),
			Limit:         limit,
			Unit:          schema.UnitFor(detail.Units, symbol),
			Status:        status,
		})
	}
	return rows
}

// Recommendations maps an overall classification to suggested actions.
func Recommendations(c schema.Category) []string {
	switch c {
	case schema.Unsuitable, schema.VeryPoor:
		return []string{
			"Immediate action required - water is not safe for consumption",
			"Identify and eliminate contamination sources",
			"Implement advanced treatment methods",
		}
	case schema.Poor:
		return []string{
			"Water treatment recommended before consumption",
			"Monitor contamination sources",
			"Regular testing advised",
		}
	case schema.Good:
		return []string{
			"Basic treatment may be beneficial",
			"Continue regular monitoring",
		}
	case schema.Excellent:
		return []string{
			"Water quality is within acceptable limits",
			"Maintain current protection measures",
		}
	default:
		return []string{"Insufficient data to assess water quality; analyse more metals"}
	}
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return schema.FormatConcentration(*v)
}

func sampleDate(s schema.Sample) string {
	if s.SamplingDate == nil {
		return "N/A"
	}
	return s.SamplingDate.Format("2006-01-02")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// WriteReport renders a stored run as a CSV or HTML report.
func WriteReport(detail schema.RunDetail, cfg *contract.Config) error {
	switch cfg.ReportFormat {
	case schema.CSVReport:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteReportCSV(w, detail)
		}, "Wrote CSV report")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteReportHTML(w, detail)
		}, "Wrote HTML report")
	}
}

// WriteReportCSV writes the sectioned CSV report. Sections are separated by a blank record.
func WriteReportCSV(w io.Writer, detail schema.RunDetail) error {
	cw := csv.NewWriter(w)
	s := detail.Sample

	records := [][]string{
		{"Water Quality Analysis Report"},
		{"Run ID", strconv.FormatInt(detail.Run.RunID, 10)},
		{"Generated", detail.Run.CalculatedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{},
		{"Sample Information"},
		{"Sample ID", s.ID},
		{"Sample Name", orNA(s.Name)},
		{"Location", orNA(s.Location)},
		{"Latitude", optionalFloat(s.Latitude)},
		{"Longitude", optionalFloat(s.Longitude)},
		{"Sampling Date", sampleDate(s)},
		{"pH", optionalFloat(s.PH)},
		{"Temperature", optionalFloat(s.TemperatureC)},
		{},
		{"Metal Concentrations"},
		{"Metal", "Concentration", "Unit", "Standard Limit", "Status"},
	}
	for _, m := range metalRows(detail) {
		records = append(records, []string{m.Symbol, m.Concentration, m.Unit, m.Limit, m.Status})
	}

	records = append(records, []string{}, []string{"Water Quality Indices"}, []string{"Index", "Value", "Classification", "Formula"})
	for _, v := range detail.Result.Indices {
		records = append(records, []string{indexLabel(v), fixed3(v.Value), contract.GetPlainLabel(v.Classification), v.Formula})
	}

	records = append(records,
		[]string{},
		[]string{"Classification", contract.GetPlainLabel(detail.Result.Classification)},
		[]string{"Overall Classification", contract.GetPlainLabel(detail.Result.Overall)},
		[]string{},
	)
	if len(detail.Result.Violations) == 0 {
		records = append(records, []string{"No violations detected"})
	} else {
		records = append(records, []string{"Threshold Violations"})
		for _, v := range detail.Result.Violations {
			records = append(records, []string{v})
		}
	}

	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV report: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportHTML renders the embedded HTML template.
func WriteReportHTML(w io.Writer, detail schema.RunDetail) error {
	view := reportView{
		Run:             detail.Run,
		Sample:          detail.Sample,
		Metals:          metalRows(detail),
		Indices:         detail.Result.Indices,
		Classification:  detail.Result.Classification,
		Overall:         detail.Result.Overall,
		Violations:      detail.Result.Violations,
		Recommendations: Recommendations(detail.Result.Overall),
		GeneratedAt:     detail.Run.CalculatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
	}
	if err := reportTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

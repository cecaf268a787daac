// Package export renders the admin report as printable PDFs.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/reporting"
	"github.com/phpdave11/gofpdf"
)

// All selects every day in the participants export.
const All = "all"

var (
	golden    = [3]int{236, 198, 127}
	stripe    = [3]int{248, 250, 252}
	footerRGB = [3]int{128, 128, 128}
)

type column struct {
	title string
	width float64
	align string
}

type Exporter struct {
	schedule models.Schedule
	now      func() time.Time
}

func New(schedule models.Schedule) *Exporter {
	return &Exporter{schedule: schedule, now: time.Now}
}

// Filename is the download name for a document of the given kind.
func (e *Exporter) Filename(kind string) string {
	return fmt.Sprintf("d79-%s-%s.pdf", kind, e.now().Format("2006-01-02"))
}

func (e *Exporter) newDoc(subtitle string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(footerRGB[0], footerRGB[1], footerRGB[2])
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(golden[0], golden[1], golden[2])
	pdf.CellFormat(0, 10, "DISTRICT 79 FALL CRAWLS", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 9, tr(subtitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Generated on: "+e.now().Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return pdf, tr
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, cols []column, rows [][]string, fontSize float64) {
	pdf.SetFont("Arial", "B", fontSize)
	pdf.SetFillColor(golden[0], golden[1], golden[2])
	pdf.SetTextColor(0, 0, 0)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", fontSize)
	pdf.SetFillColor(stripe[0], stripe[1], stripe[2])
	for i, row := range rows {
		for j, c := range cols {
			pdf.CellFormat(c.width, 6, tr(fit(pdf, row[j], c.width)), "1", 0, c.align, i%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates s so it stays inside a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w-2 {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w-2 {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// Participants writes one table of registrants per location. Locations with no
// registrants are left out.
func (e *Exporter) Participants(w io.Writer, report *reporting.Report, filter string) error {
	stats := report.LocationStats
	subtitle := "PARTICIPANT REGISTRATIONS - ALL EVENTS"
	if filter != All {
		label := models.DayLabel(filter)
		if !e.schedule.Known(label) {
			return fmt.Errorf("unknown day %q", filter)
		}
		stats = report.ForDay(label)
		subtitle = "PARTICIPANT REGISTRATIONS - " + strings.ToUpper(e.schedule.DayDisplay(label))
	}

	pdf, tr := e.newDoc(subtitle)
	cols := []column{
		{"#", 10, "C"},
		{"Name", 38, "L"},
		{"Email", 50, "L"},
		{"Phone", 26, "L"},
		{"School", 34, "L"},
		{"Registered", 24, "C"},
	}

	for _, s := range stats {
		if len(s.Registrations) == 0 {
			continue
		}
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(golden[0], golden[1], golden[2])
		pdf.CellFormat(0, 7, tr(s.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 5, tr(s.Address), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%s - %d/%d participants", e.schedule.ShortDisplay(s.EventDate), s.RegistrationCount, s.MaxCapacity), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		rows := make([][]string, 0, len(s.Registrations))
		for i, r := range s.Registrations {
			rows = append(rows, []string{
				fmt.Sprint(i + 1),
				r.FirstName + " " + r.LastName,
				r.Email,
				r.Phone,
				r.School,
				r.RegisteredAt.Format("01/02/2006"),
			})
		}
		table(pdf, tr, cols, rows, 8)
		pdf.Ln(10)
	}

	return pdf.Output(w)
}

// Summary writes the per-day totals and one row per location.
func (e *Exporter) Summary(w io.Writer, report *reporting.Report) error {
	pdf, tr := e.newDoc("REGISTRATION SUMMARY")

	total := 0
	perDay := make(map[models.DayLabel]int)
	for _, s := range report.LocationStats {
		total += s.RegistrationCount
		perDay[s.EventDate] += s.RegistrationCount
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(golden[0], golden[1], golden[2])
	pdf.CellFormat(0, 8, "SUMMARY STATISTICS", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Registrations: %d", total), "", 1, "L", false, 0, "")
	for _, label := range e.schedule.Labels() {
		pdf.CellFormat(0, 8, fmt.Sprintf("%s Event: %d participants", label.Title(), perDay[label]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	cols := []column{
		{"#", 12, "C"},
		{"Location", 64, "L"},
		{"Date", 40, "L"},
		{"Registered", 22, "C"},
		{"Capacity", 22, "C"},
		{"Status", 22, "C"},
	}
	rows := make([][]string, 0, len(report.LocationStats))
	for i, s := range report.LocationStats {
		status := "Full"
		if s.AvailableSpots > 0 {
			status = "Available"
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			s.Name,
			e.schedule.ShortDisplay(s.EventDate),
			fmt.Sprint(s.RegistrationCount),
			fmt.Sprint(s.MaxCapacity),
			status,
		})
	}
	table(pdf, tr, cols, rows, 10)

	return pdf.Output(w)
}

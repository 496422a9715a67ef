// Package export renders a WeekPlan as a downloadable document: a one-page
// PDF table or a single-sheet spreadsheet.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// Format selects the output document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for any format other than pdf or xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat is case-insensitive; empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnknownFormat
}

// ContentType returns the MIME type to send for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Filename returns the download name for plan in format f.
func (f Format) Filename(plan domain.WeekPlan) string {
	return fmt.Sprintf("mealplan-%s.%s", plan.Start, f)
}

// Week writes plan to w in format f.
func Week(w io.Writer, plan domain.WeekPlan, f Format) error {
	switch f {
	case FormatPDF:
		return WeekPDF(w, plan)
	case FormatXLSX:
		return WeekXLSX(w, plan)
	}
	return ErrUnknownFormat
}

// WeekPDF renders plan as a landscape A4 table: one row per day and one
// column per meal slot.
func WeekPDF(w io.Writer, plan domain.WeekPlan) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Meal plan "+plan.Start, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Meal plan %s to %s", plan.Start, plan.End()))
	pdf.Ln(14)

	const dateW, slotW, rowH = 40.0, 78.0, 10.0

	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(dateW, rowH, "Date", "1", 0, "L", true, 0, "")
	title := cases.Title(language.English)
	for _, m := range domain.Meals {
		pdf.CellFormat(slotW, rowH, title.String(string(m)), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, d := range plan.Days {
		pdf.CellFormat(dateW, rowH, d.Date, "1", 0, "L", false, 0, "")
		for _, s := range d.Slots {
			pdf.CellFormat(slotW, rowH, tr(clip(s.RecipeTitle, 40)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// WeekXLSX renders plan as a sheet with a header row and one row per day.
func WeekXLSX(w io.Writer, plan domain.WeekPlan) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Week " + plan.Start)
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	header.AddCell().SetValue("Date")
	for _, m := range domain.Meals {
		header.AddCell().SetValue(string(m))
	}

	for _, d := range plan.Days {
		row := sheet.AddRow()
		row.AddCell().SetValue(d.Date)
		for _, s := range d.Slots {
			row.AddCell().SetValue(s.RecipeTitle)
		}
	}

	return file.Write(w)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

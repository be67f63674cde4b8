package report

import (
	"fmt"
	"io"
	"time"

	fuelcell "Polarcell/internal/calc/fuelcell"
	"github.com/phpdave11/gofpdf"
	"gonum.org/v1/gonum/floats"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// TableStride is the spacing of curve points printed in the table.
const TableStride = 10

// plot frame, mm
const (
	plotX = 25.0
	plotW = 160.0
	plotH = 80.0
)

// Write renders res as a PDF document.
func Write(w io.Writer, meta Meta, res fuelcell.Result, now time.Time) error {
	if meta.Title == "" {
		meta.Title = "Fuel Cell Polarization Report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(10)

	section(pdf, "Operating parameters")
	keyValues(pdf, [][2]string{
		{"Pressure", fmt.Sprintf("%g atm", res.Input.PressureAtm)},
		{"Temperature", fmt.Sprintf("%g K", res.Input.TemperatureK)},
		{"Electrode thickness", fmt.Sprintf("%g um", res.Input.ElectrodeThicknessUm)},
		{"Membrane thickness", fmt.Sprintf("%g um", res.Input.MembraneThicknessUm)},
	})

	section(pdf, "Summary")
	keyValues(pdf, [][2]string{
		{"Limiting current iL", fmt.Sprintf("%.1f A/m2", res.LimitingCurrent)},
		{"Flooding current", fmt.Sprintf("%.1f A/m2", res.FloodCurrent)},
		{"Peak power", fmt.Sprintf("%.1f W/m2 at %.1f A/m2", res.PeakPower.PowerDensity, res.PeakPower.CurrentDensity)},
		{"Points", fmt.Sprintf("%d", len(res.Curve))},
	})

	if len(res.Curve) > 1 {
		section(pdf, "Polarization curve")
		plot(pdf, res.Curve)
	}

	section(pdf, "Curve samples")
	table(pdf, res.Curve)

	if meta.Notes != "" {
		section(pdf, "Notes")
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func keyValues(pdf *gofpdf.Fpdf, kv [][2]string) {
	for _, row := range kv {
		pdf.CellFormat(60, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
}

func table(pdf *gofpdf.Fpdf, curve fuelcell.Curve) {
	head := []string{"i (A/m2)", "V (V)", "eta (V)", "P (W/m2)"}
	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range head {
		pdf.CellFormat(40, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range curve {
		if i%TableStride != 0 && i != len(curve)-1 {
			continue
		}
		for _, v := range []string{
			fmt.Sprintf("%.1f", p.CurrentDensity),
			fmt.Sprintf("%.4f", p.Voltage),
			fmt.Sprintf("%.4f", p.Overpotential),
			fmt.Sprintf("%.1f", p.PowerDensity),
		} {
			pdf.CellFormat(40, 6, v, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// plot draws voltage against current density inside a framed box.
func plot(pdf *gofpdf.Fpdf, curve fuelcell.Curve) {
	xs, ys := curve.CurrentDensities(), curve.Voltages()
	x0, x1 := floats.Min(xs), floats.Max(xs)
	y0, y1 := floats.Min(ys), floats.Max(ys)
	if x1 == x0 {
		x1 = x0 + 1
	}
	if y1 == y0 {
		y0, y1 = y0-0.05, y1+0.05
	}
	top := pdf.GetY() + 2
	px := func(x float64) float64 { return plotX + (x-x0)/(x1-x0)*plotW }
	py := func(y float64) float64 { return top + plotH - (y-y0)/(y1-y0)*plotH }

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(plotX, top, plotW, plotH, "D")
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(plotX-20, top+3, fmt.Sprintf("%.3f V", y1))
	pdf.Text(plotX-20, top+plotH, fmt.Sprintf("%.3f V", y0))
	pdf.Text(plotX, top+plotH+5, fmt.Sprintf("%.0f A/m2", x0))
	pdf.Text(plotX+plotW-20, top+plotH+5, fmt.Sprintf("%.0f A/m2", x1))

	pdf.SetDrawColor(0, 0, 200)
	pdf.SetLineWidth(0.4)
	for i := 1; i < len(curve); i++ {
		pdf.Line(px(xs[i-1]), py(ys[i-1]), px(xs[i]), py(ys[i]))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetY(top + plotH + 8)
}

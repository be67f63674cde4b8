package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	fuelcell "Polarcell/internal/calc/fuelcell"
	"github.com/xuri/excelize/v2"
)

// Columns of an import sheet, after a header row.
var Columns = []string{"pressure_atm", "temperature_k", "electrode_thickness_um", "membrane_thickness_um"}

// RowError reports a sheet row that could not be turned into an input.
// Row is 1-based as shown in spreadsheet software.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Row is a parsed sheet row.
type Row struct {
	Row   int            `json:"row"`
	Input fuelcell.Input `json:"input"`
}

// ReadInputs parses the first sheet of an xlsx workbook.
func ReadInputs(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("importer: read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("importer: sheet %q has no data rows", sheet)
	}

	var inputs []Row
	var bad []RowError
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		in, err := parseRow(rows[i])
		if err != nil {
			bad = append(bad, RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		inputs = append(inputs, Row{Row: i + 1, Input: in})
	}
	return inputs, bad, nil
}

func parseRow(row []string) (fuelcell.Input, error) {
	if len(row) < len(Columns) {
		return fuelcell.Input{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}
	var v [4]float64
	for k := range v {
		x, err := toFloat(row[k])
		if err != nil {
			return fuelcell.Input{}, fmt.Errorf("%s: %w", Columns[k], err)
		}
		v[k] = x
	}
	return fuelcell.Input{
		PressureAtm:          v[0],
		TemperatureK:         v[1],
		ElectrodeThicknessUm: v[2],
		MembraneThicknessUm:  v[3],
	}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

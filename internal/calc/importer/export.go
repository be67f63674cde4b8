package importer

import (
	"fmt"

	fuelcell "Polarcell/internal/calc/fuelcell"
	"github.com/xuri/excelize/v2"
)

const (
	ParamsSheet = "Parameters"
	CurveSheet  = "Curve"
)

// CurveHeader is the header row of the curve sheet.
var CurveHeader = []interface{}{"current_density_a_m2", "voltage_v", "overpotential_v", "power_density_w_m2"}

// WriteWorkbook renders a calculation result as a two sheet workbook.
// The caller closes the returned file.
func WriteWorkbook(res fuelcell.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ParamsSheet); err != nil {
		f.Close()
		return nil, err
	}
	params := [][]interface{}{
		{"parameter", "value"},
		{"pressure_atm", res.Input.PressureAtm},
		{"temperature_k", res.Input.TemperatureK},
		{"electrode_thickness_um", res.Input.ElectrodeThicknessUm},
		{"membrane_thickness_um", res.Input.MembraneThicknessUm},
		{"limiting_current_a_m2", res.LimitingCurrent},
		{"flood_current_a_m2", res.FloodCurrent},
		{"peak_power_w_m2", res.PeakPower.PowerDensity},
		{"peak_power_current_a_m2", res.PeakPower.CurrentDensity},
	}
	if err := writeRows(f, ParamsSheet, params); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(CurveSheet); err != nil {
		f.Close()
		return nil, err
	}
	rows := make([][]interface{}, 0, len(res.Curve)+1)
	rows = append(rows, CurveHeader)
	for _, p := range res.Curve {
		rows = append(rows, []interface{}{p.CurrentDensity, p.Voltage, p.Overpotential, p.PowerDensity})
	}
	if err := writeRows(f, CurveSheet, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("importer: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

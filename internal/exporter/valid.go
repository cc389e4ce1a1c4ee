package exporter

import (
	"encoding/csv"
	"fmt"

	"vinaudit/internal/model"
)

// ValidSheetName 有效车辆表（xlsx）工作表名
const ValidSheetName = "CAN"

// ValidHeaders 有效车辆表列
var ValidHeaders = []string{"VRN", "VIN", "YEAR", "MAKE", "MODEL", "FUEL", "COUNTRY"}

// validRow YEAR/MAKE/MODEL 取申报值，FUEL 取登记库主燃料
func (e *Exporter) validRow(r model.ReconciledRecord) []string {
	return []string{
		r.Input.AssetName,
		r.VIN.Value,
		r.Input.Year,
		r.Input.Make,
		r.Input.Model,
		r.Decode.Fuel,
		e.country,
	}
}

func (e *Exporter) validRows(valid []model.ReconciledRecord) [][]string {
	rows := make([][]string, 0, len(valid))
	for _, r := range valid {
		rows = append(rows, e.validRow(r))
	}
	return rows
}

func (e *Exporter) renderValidCSV(valid []model.ReconciledRecord) ([]byte, error) {
	buf := newBuffer(64 * (len(valid) + 1))
	w := csv.NewWriter(buf)

	if err := w.Write(ValidHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(e.validRows(valid)); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) renderValidXLSX(valid []model.ReconciledRecord) ([]byte, error) {
	rows := e.validRows(valid)
	return renderSheet(ValidSheetName, ValidHeaders, rows, columnWidths(ValidHeaders, rows))
}

package exporter

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"vinaudit/internal/model"
)

// AuditSheetName 审计表工作表名
const AuditSheetName = "Processed VINs"

// errorCodeWidth ERROR CODE 列固定宽度
const errorCodeWidth = 12

// AuditHeaders 审计表列
var AuditHeaders = []string{
	"VRN",
	"VIN",
	"VIN CORRECTED",
	"NHTSA YEAR",
	"NHTSA MAKE",
	"NHTSA MODEL",
	"YEAR",
	"MAKE",
	"MODEL",
	"DECLARED FUEL",
	"FUEL",
	"COUNTRY",
	"VEHICLE TYPE",
	"MANUAL CHECK NEEDED",
	"ERROR CODE",
}

func (e *Exporter) auditRow(r model.ReconciledRecord) []string {
	return []string{
		r.Input.AssetName,
		r.VIN.Value,
		r.VIN.Correction.Label(),
		r.Decode.Year,
		r.Decode.Make,
		r.Decode.Model,
		r.Input.Year,
		r.Input.Make,
		r.Input.Model,
		r.Input.Fuel,
		r.Decode.Fuel,
		e.country,
		r.VehicleType.String(),
		string(r.ManualCheck),
		r.Decode.ErrorText,
	}
}

// renderAudit 每条记录一行，不丢弃任何行
func (e *Exporter) renderAudit(records []model.ReconciledRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, e.auditRow(r))
	}

	widths := columnWidths(AuditHeaders, rows)
	widths[len(widths)-1] = errorCodeWidth

	return renderSheet(AuditSheetName, AuditHeaders, rows, widths)
}

// columnWidths 每列取最长值（含表头）+ 2
func columnWidths(headers []string, rows [][]string) []float64 {
	longest := make([]int, len(headers))
	for i, h := range headers {
		longest[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if i >= len(longest) {
				break
			}
			if n := utf8.RuneCountInString(v); n > longest[i] {
				longest[i] = n
			}
		}
	}

	widths := make([]float64, len(longest))
	for i, n := range longest {
		widths[i] = float64(n + 2)
	}
	return widths
}

// renderSheet 生成单 sheet 工作簿：加粗底色表头 + 数据行 + 列宽
func renderSheet(sheet string, headers []string, rows [][]string, widths []float64) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

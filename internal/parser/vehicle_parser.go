package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vinaudit/internal/model"
)

// Options 解析选项
type Options struct {
	SheetName string // 多 sheet 时优先读取的工作表
	HeaderRow int    // 表头所在行（1 起），默认 4
}

// VehicleParser 车辆清单解析器
type VehicleParser struct {
	opts       Options
	recognizer *SheetRecognizer
}

// NewVehicleParser 创建解析器
func NewVehicleParser(opts Options) *VehicleParser {
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 4
	}
	return &VehicleParser{
		opts:       opts,
		recognizer: NewSheetRecognizer(opts.SheetName, opts.HeaderRow),
	}
}

// ParseFile 按扩展名解析本地文件
func (p *VehicleParser) ParseFile(path string) (*Table, error) {
	return p.ParseFileAs(path, filepath.Base(path))
}

// ParseFileAs 解析本地文件，格式按 filename 的扩展名判断
func (p *VehicleParser) ParseFileAs(path, filename string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return p.Parse(filename, f)
}

// Parse 按文件名扩展名解析输入流
func (p *VehicleParser) Parse(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open excel: %w", err)
		}
		defer wb.Close()
		return p.ParseWorkbook(wb)
	case ".csv":
		return p.ParseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseWorkbook 解析工作簿
func (p *VehicleParser) ParseWorkbook(wb *excelize.File) (*Table, error) {
	sheetName, err := p.recognizer.Pick(wb)
	if err != nil {
		return nil, err
	}

	rows, err := wb.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	return p.ParseRows(sheetName, rows)
}

// ParseCSV 解析 CSV（表头行与工作簿一致）
func (p *VehicleParser) ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	return p.ParseRows("", rows)
}

// ParseRows 从原始行解析记录
//
// 表头之前的行（标题/空行）被忽略；VIN 为空的行直接丢弃。
func (p *VehicleParser) ParseRows(sheetName string, rows [][]string) (*Table, error) {
	headerIdx := p.opts.HeaderRow - 1
	if len(rows) <= headerIdx {
		return nil, &MissingColumnError{SheetName: sheetName, Columns: RequiredColumns()}
	}

	bound, missing := MapColumns(rows[headerIdx])
	if len(missing) > 0 {
		return nil, &MissingColumnError{SheetName: sheetName, Columns: missing}
	}

	table := &Table{SheetName: sheetName}
	for _, col := range RequiredColumns() {
		table.Bindings = append(table.Bindings, bound[col])
	}

	get := func(row []string, col Column) string {
		return cellAt(row, bound[col].Index)
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		// VIN 保留原始空白，交由 VIN 修正记录 "spaces-removed"
		vin := rawCellAt(row, bound[ColumnVIN].Index)
		if strings.TrimSpace(vin) == "" {
			table.DroppedRows++
			continue
		}

		table.Records = append(table.Records, model.InputRecord{
			RowNo:     i + 1,
			AssetName: get(row, ColumnAssetName),
			VIN:       vin,
			Year:      get(row, ColumnModelYear),
			Make:      get(row, ColumnMake),
			Model:     get(row, ColumnModel),
			Fuel:      get(row, ColumnFuelType),
		})
	}

	return table, nil
}

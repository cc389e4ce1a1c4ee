package parser

import (
	"errors"
	"fmt"
	"strings"

	"vinaudit/internal/model"
)

// Column 输入表的逻辑列
type Column string

const (
	ColumnAssetName Column = "asset name"
	ColumnModelYear Column = "model year"
	ColumnMake      Column = "make"
	ColumnModel     Column = "model"
	ColumnVIN       Column = "vin"
	ColumnFuelType  Column = "fuel type"
)

var (
	// ErrMissingColumn 输入表缺少必需列（在任何查询之前报出）
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat 不支持的文件格式
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrSheetNotFound 多 sheet 工作簿中找不到可用的车辆清单
	ErrSheetNotFound = errors.New("vehicle list sheet not found")
)

// MissingColumnError 缺少的必需列
type MissingColumnError struct {
	SheetName string
	Columns   []Column
}

func (e *MissingColumnError) Error() string {
	names := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		names = append(names, string(c))
	}
	if e.SheetName == "" {
		return fmt.Sprintf("%v: %s", ErrMissingColumn, strings.Join(names, ", "))
	}
	return fmt.Sprintf("%v in sheet %q: %s", ErrMissingColumn, e.SheetName, strings.Join(names, ", "))
}

// Is 使 errors.Is(err, ErrMissingColumn) 成立
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// ColumnBinding 逻辑列与表头的绑定结果
type ColumnBinding struct {
	Column Column `json:"column"`
	Index  int    `json:"index"`  // 列索引（0 起）
	Header string `json:"header"` // 原始表头
}

// Table 解析结果
type Table struct {
	SheetName   string              `json:"sheetName"`
	Bindings    []ColumnBinding     `json:"bindings"`
	Records     []model.InputRecord `json:"records"`
	DroppedRows int                 `json:"droppedRows"` // VIN 为空而被丢弃的行
}

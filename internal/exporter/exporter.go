package exporter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"vinaudit/internal/model"
)

// 有效车辆表输出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Options 导出选项
type Options struct {
	Country     string // COUNTRY 列取值，默认 US
	ValidFormat string // csv / xlsx
	Progress    func(ProgressEvent)
}

// Exporter 审计表 + 有效车辆表导出器
//
// 两个文件都先在内存中渲染完成，再逐个以临时文件 + 重命名的方式落盘；
// 任一步失败时不会留下半成品文件。
type Exporter struct {
	country     string
	validFormat string
	progress    func(ProgressEvent)
}

// NewExporter 创建导出器
func NewExporter(opts Options) *Exporter {
	country := strings.TrimSpace(opts.Country)
	if country == "" {
		country = "US"
	}
	format := strings.ToLower(strings.TrimSpace(opts.ValidFormat))
	if format != FormatXLSX {
		format = FormatCSV
	}
	return &Exporter{
		country:     country,
		validFormat: format,
		progress:    opts.Progress,
	}
}

// Artifact 渲染完成、尚未写盘的输出文件
type Artifact struct {
	Name string
	Data []byte
}

// Rendered 一次导出的两个文件
type Rendered struct {
	Audit Artifact
	Valid Artifact
}

// Paths 写盘后的文件路径
type Paths struct {
	Audit string
	Valid string
}

// BaseName 输入文件名去掉目录与扩展名
func BaseName(inputName string) string {
	base := filepath.Base(strings.TrimSpace(inputName))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "vehicles"
	}
	return base
}

// OutputNames 根据输入文件名推导两个输出文件名
func (e *Exporter) OutputNames(inputName string) (audit, valid string) {
	base := BaseName(inputName)
	return base + "_processed.xlsx", base + "_CAN." + e.validFormat
}

// Render 在内存中渲染审计表与有效车辆表
func (e *Exporter) Render(inputName string, records, valid []model.ReconciledRecord) (*Rendered, error) {
	auditName, validName := e.OutputNames(inputName)

	e.report(StageRenderAudit, len(records))
	auditData, err := e.renderAudit(records)
	if err != nil {
		return nil, fmt.Errorf("failed to render audit workbook: %w", err)
	}

	e.report(StageRenderValid, len(valid))
	var validData []byte
	switch e.validFormat {
	case FormatXLSX:
		validData, err = e.renderValidXLSX(valid)
	default:
		validData, err = e.renderValidCSV(valid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render valid table: %w", err)
	}

	return &Rendered{
		Audit: Artifact{Name: auditName, Data: auditData},
		Valid: Artifact{Name: validName, Data: validData},
	}, nil
}

// Export 渲染并写入 dir
func (e *Exporter) Export(dir, inputName string, records, valid []model.ReconciledRecord) (Paths, error) {
	rendered, err := e.Render(inputName, records, valid)
	if err != nil {
		return Paths{}, err
	}

	e.report(StageWrite, len(records))
	paths, err := WriteAll(dir, rendered)
	if err != nil {
		return Paths{}, err
	}

	e.report(StageDone, len(records))
	return paths, nil
}

func newBuffer(size int) *bytes.Buffer {
	return bytes.NewBuffer(make([]byte, 0, size))
}

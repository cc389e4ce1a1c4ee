package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetRecognizer 选取车辆清单所在的 sheet
type SheetRecognizer struct {
	preferred string
	headerRow int
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(preferred string, headerRow int) *SheetRecognizer {
	return &SheetRecognizer{
		preferred: strings.TrimSpace(preferred),
		headerRow: headerRow,
	}
}

// SheetScore 单个 sheet 的识别得分
type SheetScore struct {
	SheetName  string  `json:"sheetName"`
	Confidence float64 `json:"confidence"` // 命中的必需列比例 0-1
}

// Pick 选择 sheet
//
// 只有一个 sheet 时直接使用；多个 sheet 时优先按名称匹配，
// 名称找不到时退化为按表头命中的必需列数量打分。
func (r *SheetRecognizer) Pick(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	switch len(sheets) {
	case 0:
		return "", ErrSheetNotFound
	case 1:
		return sheets[0], nil
	}

	if r.preferred != "" {
		for _, name := range sheets {
			if name == r.preferred {
				return name, nil
			}
		}
		for _, name := range sheets {
			if strings.EqualFold(strings.TrimSpace(name), r.preferred) {
				return name, nil
			}
		}
	}

	best := SheetScore{}
	for _, name := range sheets {
		score := r.Score(f, name)
		if score.Confidence > best.Confidence {
			best = score
		}
	}
	if best.Confidence >= 0.5 {
		return best.SheetName, nil
	}

	return "", fmt.Errorf("%w: want %q, have %s", ErrSheetNotFound, r.preferred, strings.Join(sheets, ", "))
}

// Score 计算 sheet 表头对必需列的命中率
func (r *SheetRecognizer) Score(f *excelize.File, sheetName string) SheetScore {
	score := SheetScore{SheetName: sheetName}

	rows, err := f.GetRows(sheetName)
	if err != nil || len(rows) < r.headerRow || r.headerRow < 1 {
		return score
	}

	bound, _ := MapColumns(rows[r.headerRow-1])
	score.Confidence = float64(len(bound)) / float64(len(columnRules))
	return score
}

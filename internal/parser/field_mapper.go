package parser

import "strings"

// columnRule 逻辑列 → 表头匹配规则
type columnRule struct {
	Column Column
	Match  func(header string) bool
}

func containsFold(keyword string) func(string) bool {
	return func(header string) bool {
		return strings.Contains(NormalizeColumnName(header), keyword)
	}
}

// columnRules 按优先级排列："model year" 必须先于 "model" 匹配
var columnRules = []columnRule{
	{Column: ColumnAssetName, Match: containsFold("asset name")},
	{Column: ColumnModelYear, Match: containsFold("model year")},
	{Column: ColumnMake, Match: containsFold("make")},
	{Column: ColumnModel, Match: containsFold("model")},
	{Column: ColumnVIN, Match: containsFold("vin")},
	{Column: ColumnFuelType, Match: containsFold("fuel type")},
}

// RequiredColumns 全部必需列（按规则顺序）
func RequiredColumns() []Column {
	cols := make([]Column, 0, len(columnRules))
	for _, r := range columnRules {
		cols = append(cols, r.Column)
	}
	return cols
}

// MapColumns 将表头绑定到逻辑列
//
// 每个表头取第一条命中的规则；同一逻辑列只绑定最先出现的表头。
func MapColumns(headers []string) (map[Column]ColumnBinding, []Column) {
	bound := make(map[Column]ColumnBinding, len(columnRules))

	for idx, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		for _, rule := range columnRules {
			if !rule.Match(header) {
				continue
			}
			if _, taken := bound[rule.Column]; !taken {
				bound[rule.Column] = ColumnBinding{Column: rule.Column, Index: idx, Header: header}
			}
			break
		}
	}

	var missing []Column
	for _, rule := range columnRules {
		if _, ok := bound[rule.Column]; !ok {
			missing = append(missing, rule.Column)
		}
	}
	return bound, missing
}

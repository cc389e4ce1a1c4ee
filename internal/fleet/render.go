package fleet

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"vinaudit/internal/model"
)

// vinDisplayLimit VIN 超过该长度时截断并追加 "..."
const vinDisplayLimit = 27

// Text 车队摘要文本
type Text struct {
	Vehicles    string `json:"vehicles"`    // 品牌/车型及分桶计数
	Unconfirmed string `json:"unconfirmed"` // 待确认车辆明细
}

// Render 生成摘要文本
func Render(summary model.FleetSummary) Text {
	return Text{
		Vehicles:    strings.Join(VehicleLines(summary), "\n"),
		Unconfirmed: strings.Join(UnconfirmedLines(summary), "\n"),
	}
}

// VehicleLines 品牌/车型按字典序在前，分桶按字典序追加在后
func VehicleLines(summary model.FleetSummary) []string {
	known := make([]string, 0, len(summary.Known))
	for key := range summary.Known {
		known = append(known, key)
	}
	sort.Strings(known)

	buckets := make([]string, 0, len(summary.Buckets))
	for b := range summary.Buckets {
		buckets = append(buckets, string(b))
	}
	sort.Strings(buckets)

	lines := make([]string, 0, len(known)+len(buckets))
	for _, key := range known {
		lines = append(lines, fmt.Sprintf("%s: %d", key, summary.Known[key]))
	}
	for _, b := range buckets {
		lines = append(lines, fmt.Sprintf("%s: %d", b, summary.Buckets[model.Bucket(b)]))
	}
	return lines
}

// UnconfirmedLines 待确认车辆明细，VIN 列按本批最长值对齐
func UnconfirmedLines(summary model.FleetSummary) []string {
	if len(summary.Unconfirmed) == 0 {
		return nil
	}

	labels := make([]string, len(summary.Unconfirmed))
	width := 0
	for i, d := range summary.Unconfirmed {
		labels[i] = "VIN: " + displayVIN(d.VIN)
		if n := utf8.RuneCountInString(labels[i]); n > width {
			width = n
		}
	}

	lines := make([]string, len(summary.Unconfirmed))
	for i, d := range summary.Unconfirmed {
		makeModel := strings.TrimSpace(strings.TrimSpace(d.DeclaredMake) + " " + strings.TrimSpace(d.DeclaredModel))
		lines[i] = fmt.Sprintf("VEHICLE%d INFO:    %s    MAKE/MODEL: %s", d.Index, padRight(labels[i], width), makeModel)
	}
	return lines
}

func displayVIN(vin string) string {
	if utf8.RuneCountInString(vin) <= vinDisplayLimit {
		return vin
	}
	return string([]rune(vin)[:vinDisplayLimit]) + "..."
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

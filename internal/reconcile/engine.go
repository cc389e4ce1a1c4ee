// Package reconcile 将输入行与解码结果合并，判定有效性、车辆类型与人工复核需求。
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"vinaudit/internal/model"
)

// MaxVehicleAge 车龄上限（年）；VIN 编码规则会跨年代复用，30 年以上的车辆无法可靠解码
const MaxVehicleAge = 30

// Entry 单行输入：原始记录 + 修正后 VIN + 解码结果
type Entry struct {
	Record model.InputRecord
	VIN    model.NormalizedVIN
	Decode model.DecodeResult
}

// Result 对账结果
type Result struct {
	Records []model.ReconciledRecord // 与输入同序，一行不少
	Valid   []model.ReconciledRecord // 有效且按 VIN 去重（保留首次出现）
}

// Options 引擎选项
type Options struct {
	Now func() time.Time // 默认 time.Now
}

// Engine 对账引擎（无状态，每次 Reconcile 独立）
type Engine struct {
	now func() time.Time
}

// NewEngine 创建对账引擎
func NewEngine(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Reconcile 按输入顺序处理全部行
//
// 人工复核判定依赖已处理过的 VIN 集合，必须严格按行序折叠。
func (e *Engine) Reconcile(entries []Entry) Result {
	currentYear := e.now().Year()

	records := make([]model.ReconciledRecord, len(entries))
	for i, entry := range entries {
		records[i] = model.ReconciledRecord{
			Input:       entry.Record,
			VIN:         entry.VIN,
			Decode:      entry.Decode,
			Valid:       IsValid(entry.Decode, currentYear),
			VehicleType: EffectiveType(entry.Decode.VehicleType, entry.Record.Model),
		}
	}

	valid := dedupeValid(records)
	validSet := make(map[string]struct{}, len(valid))
	for _, r := range valid {
		validSet[r.VIN.Value] = struct{}{}
	}

	state := newCheckState(validSet)
	for i := range records {
		records[i].ManualCheck = state.next(records[i])
	}

	return Result{Records: records, Valid: valid}
}

// IsValid 有效性规则：燃料类型存在且有效，且车龄小于 MaxVehicleAge
//
// 年份缺失或无法解析时不因年份排除。
func IsValid(d model.DecodeResult, currentYear int) bool {
	if !HasUsableFuel(d.Fuel) {
		return false
	}
	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil {
		return true
	}
	return currentYear-year < MaxVehicleAge
}

// HasUsableFuel 燃料类型存在且不是 "Not Applicable" / 错误标记
func HasUsableFuel(fuel string) bool {
	if model.IsBlankValue(fuel) {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(fuel), model.ValueNotApplicable)
}

// EffectiveType 推断生效的车辆类型
//
// 解码类型缺失或为错误标记时，按申报车型中的 "trailer"/"lift" 关键字推断，否则为 UNKNOWN。
func EffectiveType(decoded, declaredModel string) model.VehicleType {
	raw := strings.TrimSpace(decoded)
	if model.IsBlankValue(raw) {
		switch {
		case containsFold(declaredModel, "trailer"):
			return model.VehicleTrailer
		case containsFold(declaredModel, "lift"):
			return model.VehicleLift
		default:
			return model.VehicleUnknown
		}
	}

	switch strings.ToUpper(raw) {
	case "TRAILER":
		return model.VehicleTrailer
	case "LIFT":
		return model.VehicleLift
	default:
		return model.OtherVehicle(raw)
	}
}

func dedupeValid(records []model.ReconciledRecord) []model.ReconciledRecord {
	seen := make(map[string]struct{})
	var valid []model.ReconciledRecord
	for _, r := range records {
		if !r.Valid {
			continue
		}
		if _, dup := seen[r.VIN.Value]; dup {
			continue
		}
		seen[r.VIN.Value] = struct{}{}
		valid = append(valid, r)
	}
	return valid
}

func containsFold(s, keyword string) bool {
	return strings.Contains(strings.ToLower(s), keyword)
}

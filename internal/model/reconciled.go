package model

// ManualCheck 是否需要人工复核
type ManualCheck string

const (
	ManualCheckNo           ManualCheck = "NO"
	ManualCheckYes          ManualCheck = "YES"
	ManualCheckYesDuplicate ManualCheck = "YES: Duplicate Vin"
)

// NeedsReview 是否需要人工处理
func (m ManualCheck) NeedsReview() bool {
	return m == ManualCheckYes || m == ManualCheckYesDuplicate
}

// ReconciledRecord 输入行 + 修正后 VIN + 解码结果 + 派生标记
type ReconciledRecord struct {
	Input       InputRecord   `json:"input"`
	VIN         NormalizedVIN `json:"vin"`
	Decode      DecodeResult  `json:"decode"`
	Valid       bool          `json:"valid"`       // 通过有效性规则（未去重）
	ManualCheck ManualCheck   `json:"manualCheck"`
	VehicleType VehicleType   `json:"vehicleType"` // 推断后的生效类型
}

package model

import "strings"

// InputRecord 输入表中的一行车辆记录（读取后不可变）
type InputRecord struct {
	RowNo     int    `json:"rowNo"`     // 原表行号（1 起）
	AssetName string `json:"assetName"` // 车辆资产名称（VRN）
	VIN       string `json:"vin"`       // 原始 VIN，可能含录入错误
	Year      string `json:"year"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Fuel      string `json:"fuel"`
}

// Correction VIN 修正标记（仅保留最后一次生效的规则）
type Correction string

const (
	CorrectionNone          Correction = "none"
	CorrectionSpacesRemoved Correction = "spaces-removed"
	CorrectionQToZero       Correction = "Q-to-0"
	CorrectionOToZero       Correction = "O-to-0"
	CorrectionIToOne        Correction = "I-to-1"
)

// Label 审计表中 "VIN CORRECTED" 列的展示文本
func (c Correction) Label() string {
	switch c {
	case CorrectionSpacesRemoved:
		return "YES: Spaces Removed"
	case CorrectionQToZero:
		return "YES: Replaced 'Q' with '0'"
	case CorrectionOToZero:
		return "YES: Replaced 'O' with '0'"
	case CorrectionIToOne:
		return "YES: Replaced 'I' with '1'"
	default:
		return "NO"
	}
}

// NormalizedVIN 修正后的 VIN
type NormalizedVIN struct {
	Value      string     `json:"value"`
	Correction Correction `json:"correction"`
}

// 登记库响应中的占位值
const (
	ValueNotAvailable  = "N/A"   // 响应中缺少该变量
	ValueError         = "Error" // 响应无法解析
	ValueNotApplicable = "Not Applicable"

	DecodeFailureText = "Error: No information found for input VIN"
)

// DecodeResult 登记库解码结果
//
// 响应缺少的变量取 "N/A"；变量存在但值为 null 时为空字符串。
type DecodeResult struct {
	Year        string `json:"year"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Fuel        string `json:"fuel"`
	VehicleType string `json:"vehicleType"`
	ErrorText   string `json:"errorText"`
	Failed      bool   `json:"failed"` // 响应无法解析（DecodeFailure）
}

// DecodeFailure 响应无法解析时的占位结果
func DecodeFailure() DecodeResult {
	return DecodeResult{
		Year:        ValueError,
		Make:        ValueError,
		Model:       ValueError,
		Fuel:        ValueError,
		VehicleType: ValueError,
		ErrorText:   DecodeFailureText,
		Failed:      true,
	}
}

// IsBlankValue 判断登记库字段是否缺失或为错误标记
func IsBlankValue(v string) bool {
	switch strings.TrimSpace(v) {
	case "", ValueNotAvailable, ValueError:
		return true
	}
	return false
}

// VehicleKind 车辆类型分支
type VehicleKind int

const (
	KindOther VehicleKind = iota // 登记库返回的其它类型，原文保存在 VehicleType.Raw
	KindTrailer
	KindLift
	KindUnknown
)

// VehicleType 生效的车辆类型
type VehicleType struct {
	Kind VehicleKind
	Raw  string
}

var (
	VehicleTrailer = VehicleType{Kind: KindTrailer, Raw: "TRAILER"}
	VehicleLift    = VehicleType{Kind: KindLift, Raw: "LIFT"}
	VehicleUnknown = VehicleType{Kind: KindUnknown, Raw: "UNKNOWN"}
)

// OtherVehicle 登记库返回的普通车辆类型
func OtherVehicle(raw string) VehicleType {
	return VehicleType{Kind: KindOther, Raw: raw}
}

// String 返回输出表中的类型文本
func (t VehicleType) String() string {
	return t.Raw
}

// MarshalText 以类型文本序列化（用于 JSON）
func (t VehicleType) MarshalText() ([]byte, error) {
	return []byte(t.Raw), nil
}

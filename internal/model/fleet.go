package model

// Bucket 非品牌/车型分组
type Bucket string

const (
	BucketTrailer     Bucket = "TRAILER"
	BucketLift        Bucket = "LIFT"
	BucketUnconfirmed Bucket = "UNCONFIRMED"
)

// UnconfirmedDetail 待确认车辆明细（按原始行序编号，从 1 开始）
type UnconfirmedDetail struct {
	Index         int    `json:"index"`
	VIN           string `json:"vin"`
	DeclaredMake  string `json:"declaredMake"`
	DeclaredModel string `json:"declaredModel"`
}

// FleetSummary 车队汇总
type FleetSummary struct {
	Known       map[string]int      `json:"known"`   // "MAKE MODEL" -> 数量
	Buckets     map[Bucket]int      `json:"buckets"` // TRAILER/LIFT/UNCONFIRMED -> 数量
	Unconfirmed []UnconfirmedDetail `json:"unconfirmed"`
}

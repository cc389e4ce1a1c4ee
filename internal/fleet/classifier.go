// Package fleet 按品牌/车型汇总车队，并生成车队摘要文本。
package fleet

import (
	"strings"

	"vinaudit/internal/model"
)

// Classify 汇总对账后的记录
func Classify(records []model.ReconciledRecord) model.FleetSummary {
	summary := model.FleetSummary{
		Known:   make(map[string]int),
		Buckets: make(map[model.Bucket]int),
	}

	for _, r := range records {
		key, bucket := GroupKey(r)
		if bucket != "" {
			summary.Buckets[bucket]++
		} else {
			summary.Known[key]++
		}

		if bucket == model.BucketUnconfirmed {
			summary.Unconfirmed = append(summary.Unconfirmed, model.UnconfirmedDetail{
				Index:         len(summary.Unconfirmed) + 1,
				VIN:           r.VIN.Value,
				DeclaredMake:  r.Input.Make,
				DeclaredModel: r.Input.Model,
			})
		}
	}

	return summary
}

// GroupKey 返回记录的分组："MAKE MODEL" 或分桶
func GroupKey(r model.ReconciledRecord) (string, model.Bucket) {
	switch r.VehicleType.Kind {
	case model.KindUnknown:
		return "", model.BucketUnconfirmed
	case model.KindTrailer:
		return "", model.BucketTrailer
	case model.KindLift:
		return "", model.BucketLift
	}

	mk := strings.TrimSpace(r.Decode.Make)
	md := strings.TrimSpace(r.Decode.Model)
	if model.IsBlankValue(mk) || model.IsBlankValue(md) {
		return "", model.BucketUnconfirmed
	}
	return mk + " " + md, ""
}

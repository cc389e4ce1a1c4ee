package reconcile

import "vinaudit/internal/model"

// checkState 人工复核判定的折叠状态
type checkState struct {
	valid map[string]struct{}
	seen  map[string]struct{}
}

func newCheckState(valid map[string]struct{}) *checkState {
	return &checkState{
		valid: valid,
		seen:  make(map[string]struct{}),
	}
}

// next 判定当前行并把 VIN 计入已处理集合
func (s *checkState) next(r model.ReconciledRecord) model.ManualCheck {
	_, seen := s.seen[r.VIN.Value]
	check := Decide(r, s.isValid(r.VIN.Value), seen)
	s.seen[r.VIN.Value] = struct{}{}
	return check
}

func (s *checkState) isValid(vin string) bool {
	_, ok := s.valid[vin]
	return ok
}

// Decide 单行人工复核判定（先命中者生效）
//
//  1. NO：VIN 在有效子集中且此前未出现
//  2. NO：生效类型为 TRAILER
//  3. NO：申报车型或资产名含 "trailer"
//  4. NO：申报车型或资产名含 "lift"
//  5. NO：VIN 含 "example"（样例行）
//  6. YES_DUPLICATE：VIN 此前已出现
//  7. YES
func Decide(r model.ReconciledRecord, inValidSubset, seenBefore bool) model.ManualCheck {
	switch {
	case inValidSubset && !seenBefore:
		return model.ManualCheckNo
	case r.VehicleType.Kind == model.KindTrailer:
		return model.ManualCheckNo
	case containsFold(r.Input.Model, "trailer") || containsFold(r.Input.AssetName, "trailer"):
		return model.ManualCheckNo
	case containsFold(r.Input.Model, "lift") || containsFold(r.Input.AssetName, "lift"):
		return model.ManualCheckNo
	case containsFold(r.VIN.Value, "example"):
		return model.ManualCheckNo
	case seenBefore:
		return model.ManualCheckYesDuplicate
	default:
		return model.ManualCheckYes
	}
}

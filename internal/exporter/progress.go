package exporter

// Stage 导出阶段
type Stage string

const (
	StageRenderAudit Stage = "render_audit" // 渲染审计表
	StageRenderValid Stage = "render_valid" // 渲染有效车辆表
	StageWrite       Stage = "write"        // 临时文件落盘并重命名
	StageDone        Stage = "done"
)

// stagePercent 各阶段开始时的进度
var stagePercent = map[Stage]int{
	StageRenderAudit: 10,
	StageRenderValid: 60,
	StageWrite:       80,
	StageDone:        100,
}

// ProgressEvent 导出进度
type ProgressEvent struct {
	Stage   Stage `json:"stage"`
	Percent int   `json:"percent"`
	Records int   `json:"records"` // 本阶段处理的记录数（审计表为全部记录，有效表为去重后的有效记录）
}

func (e *Exporter) report(stage Stage, records int) {
	if e.progress == nil {
		return
	}
	e.progress(ProgressEvent{
		Stage:   stage,
		Percent: stagePercent[stage],
		Records: records,
	})
}

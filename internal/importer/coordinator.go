package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vinaudit/internal/exporter"
	"vinaudit/internal/fleet"
	"vinaudit/internal/model"
	"vinaudit/internal/nhtsa"
	"vinaudit/internal/parser"
	"vinaudit/internal/reconcile"
	"vinaudit/internal/store"
	"vinaudit/pkg/logger"
)

// Coordinator 批处理协调器：解析 → VIN 修正 → 登记库查询 → 对账 → {车队汇总, 导出}
type Coordinator struct {
	store       *store.Store
	lookup      nhtsa.Lookup
	parser      *parser.VehicleParser
	export      exporter.Options
	concurrency int
	now         func() time.Time
	logger      *logger.Logger
}

// Options 协调器依赖
type Options struct {
	Store       *store.Store // 可为空，为空时不记录运行历史
	Lookup      nhtsa.Lookup
	Parser      parser.Options
	Export      exporter.Options
	Concurrency int // 同时在途的查询数，<=1 为串行
	Now         func() time.Time
	Logger      *logger.Logger
}

// NewCoordinator 创建协调器
func NewCoordinator(opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Coordinator{
		store:       opts.Store,
		lookup:      opts.Lookup,
		parser:      parser.NewVehicleParser(opts.Parser),
		export:      opts.Export,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		logger:      opts.Logger.Named("importer"),
	}
}

// RunOptions 单次运行参数
type RunOptions struct {
	FilePath  string
	Filename  string // 展示用文件名，也是输出文件名的来源；默认取 FilePath 的文件名
	OutputDir string // 默认与输入文件同目录
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/progress/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Totals 运行统计
type Totals struct {
	Records      int `json:"records"`
	Valid        int `json:"valid"`
	ManualChecks int `json:"manualChecks"`
	DroppedRows  int `json:"droppedRows"`
}

// RunResult 运行结果
type RunResult struct {
	RunID     string                   `json:"runId,omitempty"`
	Records   []model.ReconciledRecord `json:"-"`
	Valid     []model.ReconciledRecord `json:"-"`
	Summary   model.FleetSummary       `json:"summary"`
	Text      fleet.Text               `json:"text"`
	AuditPath string                   `json:"-"`
	ValidPath string                   `json:"-"`
	Totals    Totals                   `json:"totals"`
	Duration  time.Duration            `json:"duration"`
}

// Process 异步执行，返回进度通道；最后一个事件为 done（Data 为 *RunResult）或 error
func (c *Coordinator) Process(ctx context.Context, opts RunOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		emit := func(evt ProgressEvent) { c.sendProgress(progressChan, evt) }
		result, err := c.run(ctx, opts, emit)
		if err != nil {
			c.sendFinal(ctx, progressChan, ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Data:      map[string]interface{}{"reason": FailureReason(err)},
				Timestamp: c.now(),
			})
			return
		}
		c.sendFinal(ctx, progressChan, ProgressEvent{
			Type:      "done",
			Message:   "处理完成",
			Data:      result,
			Timestamp: c.now(),
		})
	}()

	return progressChan
}

// Run 同步执行；progress 可为空
func (c *Coordinator) Run(ctx context.Context, opts RunOptions, progress func(ProgressEvent)) (*RunResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	return c.run(ctx, opts, progress)
}

func (c *Coordinator) run(ctx context.Context, opts RunOptions, emit func(ProgressEvent)) (*RunResult, error) {
	if c.lookup == nil {
		return nil, errors.New("no vin lookup configured")
	}

	startTime := c.now()
	filename := strings.TrimSpace(opts.Filename)
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(opts.FilePath)
	}

	log := c.logger.With(logger.String("file", filename))

	runID := c.createRun(log, filename)
	fail := func(err error) (*RunResult, error) {
		log.Warn("run failed", logger.String("run_id", runID), logger.Error(err))
		c.failRun(log, runID, err)
		return nil, err
	}

	emit(ProgressEvent{
		Type:    "start",
		Message: "开始处理车辆清单",
		Data: map[string]string{
			"filename": filename,
			"runId":    runID,
		},
		Timestamp: c.now(),
	})

	table, err := c.parseInput(opts.FilePath, filename)
	if err != nil {
		return fail(fmt.Errorf("failed to parse %s: %w", filename, err))
	}

	emit(ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("工作表 %q 读取到 %d 条车辆记录", table.SheetName, len(table.Records)),
		Data: map[string]interface{}{
			"sheet_name":   table.SheetName,
			"records":      len(table.Records),
			"dropped_rows": table.DroppedRows,
		},
		Timestamp: c.now(),
	})

	entries := normalizeAll(table.Records)

	if err := c.lookupAll(ctx, entries, emit); err != nil {
		return fail(err)
	}

	// 查询全部完成后才取消的批次同样不产出文件
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	engine := reconcile.NewEngine(reconcile.Options{Now: c.now})
	reconciled := engine.Reconcile(entries)

	summary := fleet.Classify(reconciled.Records)
	text := fleet.Render(summary)

	exp := exporter.NewExporter(exporter.Options{
		Country:     c.export.Country,
		ValidFormat: c.export.ValidFormat,
		Progress: func(p exporter.ProgressEvent) {
			emit(ProgressEvent{
				Type:      "progress",
				Message:   "export:" + string(p.Stage),
				Data:      p,
				Timestamp: c.now(),
			})
		},
	})
	paths, err := exp.Export(outputDir, filename, reconciled.Records, reconciled.Valid)
	if err != nil {
		return fail(fmt.Errorf("failed to export: %w", err))
	}

	result := &RunResult{
		RunID:     runID,
		Records:   reconciled.Records,
		Valid:     reconciled.Valid,
		Summary:   summary,
		Text:      text,
		AuditPath: paths.Audit,
		ValidPath: paths.Valid,
		Totals: Totals{
			Records:      len(reconciled.Records),
			Valid:        len(reconciled.Valid),
			ManualChecks: countManualChecks(reconciled.Records),
			DroppedRows:  table.DroppedRows,
		},
		Duration: c.now().Sub(startTime),
	}

	c.completeRun(log, result)

	log.Info("run completed",
		logger.String("run_id", runID),
		logger.Int("records", result.Totals.Records),
		logger.Int("valid", result.Totals.Valid),
		logger.Int("manual_checks", result.Totals.ManualChecks),
		logger.Duration("duration", result.Duration),
	)
	return result, nil
}

// parseInput 上传落盘的文件名不可信，格式按原始文件名判断
func (c *Coordinator) parseInput(path, filename string) (*parser.Table, error) {
	return c.parser.ParseFileAs(path, filename)
}

func countManualChecks(records []model.ReconciledRecord) int {
	n := 0
	for _, r := range records {
		if r.ManualCheck.NeedsReview() {
			n++
		}
	}
	return n
}

// FailureReason 失败原因的简短分类（用于 API / 命令行输出）
func FailureReason(err error) string {
	switch {
	case errors.Is(err, nhtsa.ErrBatchTimeout):
		return "timeout"
	case errors.Is(err, nhtsa.ErrLookupUnavailable):
		return "lookup_unavailable"
	case errors.Is(err, parser.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, parser.ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

func (c *Coordinator) createRun(log *logger.Logger, filename string) string {
	if c.store == nil {
		return ""
	}
	run, err := c.store.CreateRun(filename)
	if err != nil {
		log.Warn("failed to record run start", logger.Error(err))
		return ""
	}
	return run.ID
}

func (c *Coordinator) failRun(log *logger.Logger, runID string, cause error) {
	if c.store == nil || runID == "" {
		return
	}
	if err := c.store.FailRun(runID, cause.Error()); err != nil {
		log.Warn("failed to record run failure", logger.String("run_id", runID), logger.Error(err))
	}
}

func (c *Coordinator) completeRun(log *logger.Logger, result *RunResult) {
	if c.store == nil || result.RunID == "" {
		return
	}
	if err := c.store.CompleteRun(result.RunID, result.Totals.Records, result.Totals.Valid, result.Totals.ManualChecks); err != nil {
		log.Warn("failed to record run completion", logger.String("run_id", result.RunID), logger.Error(err))
		return
	}
	if err := c.store.SetConfig(store.KeyLastRunID, result.RunID); err != nil {
		log.Warn("failed to remember last run", logger.Error(err))
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// sendFinal 终止事件不可丢弃，仅在调用方放弃时放弃
func (c *Coordinator) sendFinal(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}

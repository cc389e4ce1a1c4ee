package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"vinaudit/internal/model"
	"vinaudit/internal/nhtsa"
	"vinaudit/internal/reconcile"
	"vinaudit/internal/vin"
	"vinaudit/pkg/logger"
)

// progressEvery 查询进度事件的发送间隔（条）
const progressEvery = 10

func normalizeAll(records []model.InputRecord) []reconcile.Entry {
	entries := make([]reconcile.Entry, len(records))
	for i, r := range records {
		entries[i] = reconcile.Entry{
			Record: r,
			VIN:    vin.Normalize(r.VIN),
		}
	}
	return entries
}

// batchError 致命查询错误只按整批报告，行号与 VIN 仅写入日志
func batchError(err error) error {
	switch {
	case errors.Is(err, nhtsa.ErrBatchTimeout):
		return fmt.Errorf("batch aborted: %w", nhtsa.ErrBatchTimeout)
	case errors.Is(err, nhtsa.ErrLookupUnavailable):
		return fmt.Errorf("batch aborted: %w", nhtsa.ErrLookupUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("batch aborted: %w", err)
	}
}

// lookupAll 为每条记录查询登记库，结果按行号下标写回 entries。
// 任一致命错误（超时 / 服务不可用）立即终止整批。
func (c *Coordinator) lookupAll(ctx context.Context, entries []reconcile.Entry, emit func(ProgressEvent)) error {
	total := len(entries)
	if total == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	report := func() {
		n := int(done.Add(1))
		if n%progressEvery != 0 && n != total {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		emit(ProgressEvent{
			Type:    "progress",
			Message: fmt.Sprintf("已查询 %d/%d", n, total),
			Data: map[string]interface{}{
				"stage":   "lookup",
				"done":    n,
				"total":   total,
				"percent": n * 100 / total,
			},
			Timestamp: c.now(),
		})
	}

	decode := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := &entries[i]
		d, err := c.lookup.Decode(ctx, e.VIN.Value)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("lookup aborted batch",
					logger.Int("row", e.Record.RowNo),
					logger.String("vin", e.VIN.Value),
					logger.Error(err),
				)
			}
			return batchError(err)
		}
		e.Decode = d
		report()
		return nil
	}

	if c.concurrency <= 1 {
		for i := range entries {
			if err := decode(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range entries {
		i := i
		g.Go(func() error {
			return decode(gctx, i)
		})
	}
	return g.Wait()
}

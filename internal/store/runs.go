package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vinaudit/internal/model"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, filename, status, total_records, valid_records, manual_checks, error_message, started_at, completed_at`

// CreateRun 创建一条处理中的运行记录
func (s *Store) CreateRun(filename string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    model.RunStatusProcessing,
		StartedAt: s.now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, filename, status, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Filename, string(run.Status), run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun 标记运行成功并写入统计
func (s *Store) CompleteRun(id string, totalRecords, validRecords, manualChecks int) error {
	res, err := s.db.Exec(`
		UPDATE runs SET
			status = ?,
			total_records = ?,
			valid_records = ?,
			manual_checks = ?,
			completed_at = ?
		WHERE id = ?
	`, string(model.RunStatusDone), totalRecords, validRecords, manualChecks, s.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return expectOneRow(res, id)
}

// FailRun 标记运行失败
func (s *Store) FailRun(id, errorMessage string) error {
	res, err := s.db.Exec(`
		UPDATE runs SET
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, string(model.RunStatusFailed), errorMessage, s.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to fail run: %w", err)
	}
	return expectOneRow(res, id)
}

// GetRun 按 ID 读取运行记录
func (s *Store) GetRun(id string) (*model.Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns 按开始时间倒序返回最近的运行记录
func (s *Store) ListRuns(limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CountRuns 运行记录总数
func (s *Store) CountRuns() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*model.Run, error) {
	var (
		run         model.Run
		status      string
		startedAt   string
		completedAt sql.NullString
	)
	if err := sc.Scan(
		&run.ID,
		&run.Filename,
		&status,
		&run.TotalRecords,
		&run.ValidRecords,
		&run.ManualChecks,
		&run.ErrorMessage,
		&startedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	run.Status = model.RunStatus(status)

	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t

	if completedAt.Valid && completedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"vinaudit/internal/model"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	st := NewWithDB(db)
	st.SetClock(func() time.Time { return fixedNow })
	return st, mock
}

func TestCreateRun_Mock(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO runs").
		WithArgs(sqlmock.AnyArg(), "fleet.xlsx", "processing", fixedNow.Format(time.RFC3339Nano)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run, err := st.CreateRun("fleet.xlsx")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if run.ID == "" || run.Status != model.RunStatusProcessing || !run.StartedAt.Equal(fixedNow) {
		t.Fatalf("run=%+v", run)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCompleteRun_Mock(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").
		WithArgs("done", 4, 1, 1, fixedNow.Format(time.RFC3339Nano), "run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE runs SET").
		WithArgs("done", 0, 0, 0, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.CompleteRun("run-1", 4, 1, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := st.CompleteRun("missing", 0, 0, 0); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFailRun_MockExecError(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").
		WithArgs("failed", "vin lookup timed out", sqlmock.AnyArg(), "run-1").
		WillReturnError(errors.New("disk I/O error"))

	if err := st.FailRun("run-1", "vin lookup timed out"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRuns_Mock(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	completed := fixedNow.Add(time.Minute).Format(time.RFC3339Nano)
	rows := sqlmock.NewRows([]string{
		"id", "filename", "status", "total_records", "valid_records", "manual_checks", "error_message", "started_at", "completed_at",
	}).
		AddRow("b", "second.xlsx", "failed", 0, 0, 0, "vin lookup timed out", fixedNow.Format(time.RFC3339Nano), completed).
		AddRow("a", "first.xlsx", "processing", 0, 0, 0, "", fixedNow.Add(-time.Hour).Format(time.RFC3339Nano), nil)

	mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY started_at DESC LIMIT").
		WithArgs(20).
		WillReturnRows(rows)

	runs, err := st.ListRuns(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs=%d", len(runs))
	}
	if runs[0].Status != model.RunStatusFailed || runs[0].CompletedAt == nil || runs[0].ErrorMessage == "" {
		t.Fatalf("first=%+v", runs[0])
	}
	if runs[1].CompletedAt != nil {
		t.Fatalf("processing run should have no completion time")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetRun_MockNotFound(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM runs WHERE id =").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := st.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRuns_SQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	st, err := New(filepath.Join(t.TempDir(), "vinaudit.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	clock := fixedNow
	st.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	first, err := st.CreateRun("first.xlsx")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := st.CreateRun("second.csv")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := st.CompleteRun(first.ID, 5, 1, 2); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := st.FailRun(second.ID, "vin lookup service unavailable"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := st.GetRun(first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.RunStatusDone || got.TotalRecords != 5 || got.ValidRecords != 1 || got.ManualChecks != 2 || got.CompletedAt == nil {
		t.Fatalf("first=%+v", got)
	}

	runs, err := st.ListRuns(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[0].Status != model.RunStatusFailed {
		t.Fatalf("runs=%+v", runs)
	}

	n, err := st.CountRuns()
	if err != nil || n != 2 {
		t.Fatalf("count=%d err=%v", n, err)
	}

	if err := st.SetConfig(KeyLastRunID, first.ID); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if err := st.SetConfig(KeyLastRunID, second.ID); err != nil {
		t.Fatalf("overwrite config: %v", err)
	}
	v, err := st.GetConfig(KeyLastRunID)
	if err != nil || v != second.ID {
		t.Fatalf("config=%q err=%v", v, err)
	}
	if _, err := st.GetConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	all, err := st.GetAllConfig()
	if err != nil {
		t.Fatalf("get all config: %v", err)
	}
	if diff := cmp.Diff(map[string]string{KeyLastRunID: second.ID}, all); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

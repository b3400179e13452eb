package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/desertthunder/tbx/internal/tasks"
	"github.com/google/go-cmp/cmp"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestRun(operation, boardID string) *models.Run {
	run := models.NewRun(0, operation, boardID)
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run.SetTimes(started, started.Add(2*time.Second))
	run.SetOutcome(false, 3, 2, []string{"Urgent"}, nil)
	run.SetErrors([]models.RunError{{Position: 0, CardID: "c2", CardName: "Landing page", Message: "status 403"}})
	return run
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "nope"); err == nil {
		t.Error("expected error for table without sequence")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun(tasks.OpAddLabels, "board-1")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun(tasks.OpCopyCards, "board-1")
		run.SetTargetBoardID("board-2")
		run.SetErrors([]models.RunError{
			{Position: 0, CardID: "c1", CardName: "One", Message: "first"},
			{Position: 1, CardID: "c9", CardName: "Nine", Message: "second"},
		})

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.Operation() != tasks.OpCopyCards || retrieved.TargetBoardID() != "board-2" {
			t.Errorf("unexpected identity: %s %s", retrieved.Operation(), retrieved.TargetBoardID())
		}
		if retrieved.Processed() != 3 || retrieved.Success() != 2 || retrieved.Failed() != 2 {
			t.Errorf("unexpected counts: %d %d %d", retrieved.Processed(), retrieved.Success(), retrieved.Failed())
		}
		if diff := cmp.Diff(run.Errors(), retrieved.Errors()); diff != "" {
			t.Errorf("errors mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Urgent"}, retrieved.MissingLabels()); diff != "" {
			t.Errorf("missing labels mismatch (-want +got):\n%s", diff)
		}
		if len(retrieved.SkippedLists()) != 0 {
			t.Errorf("expected no skipped lists, got %v", retrieved.SkippedLists())
		}
		if !retrieved.StartedAt().Equal(run.StartedAt()) {
			t.Errorf("expected started_at %v, got %v", run.StartedAt(), retrieved.StartedAt())
		}
	})

	t.Run("GetBySequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		first := newTestRun(tasks.OpArchive, "board-1")
		second := newTestRun(tasks.OpDelete, "board-1")
		for _, r := range []*models.Run{first, second} {
			if err := repo.Create(r); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		got, err := repo.GetBySequence(2)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.ID() != second.ID() || len(got.Errors()) != 1 {
			t.Errorf("expected second run with its error, got %s", got.ID())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun(tasks.OpAddLabels, "board-1")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}

		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)

		copyRun := newTestRun(tasks.OpCopyCards, "board-1")
		copyRun.SetTargetBoardID("board-3")
		runs := []*models.Run{
			newTestRun(tasks.OpAddLabels, "board-1"),
			newTestRun(tasks.OpAddLabels, "board-2"),
			copyRun,
			newTestRun(tasks.OpArchive, "board-2"),
		}
		for _, r := range runs {
			if err := repo.Create(r); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     []int
		}{
			{name: "all", criteria: map[string]any{}, want: []int{1, 2, 3, 4}},
			{name: "by operation", criteria: map[string]any{"operation": tasks.OpAddLabels}, want: []int{1, 2}},
			{name: "by board", criteria: map[string]any{"board_id": "board-2"}, want: []int{2, 4}},
			{name: "by target board", criteria: map[string]any{"board_id": "board-3"}, want: []int{3}},
			{name: "limit keeps latest", criteria: map[string]any{"limit": 2}, want: []int{3, 4}},
			{name: "no match", criteria: map[string]any{"operation": "nope"}, want: nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				var seqs []int
				for _, r := range got {
					seqs = append(seqs, r.Sequence())
				}
				if diff := cmp.Diff(tt.want, seqs); diff != "" {
					t.Errorf("sequences mismatch (-want +got):\n%s", diff)
				}
			})
		}

		if err := repo.Delete(runs[0].ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		remaining, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(remaining) != 3 {
			t.Errorf("expected deleted run to be excluded, got %d runs", len(remaining))
		}
	})
}

func TestRunRepositoryErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun(0, tasks.OpAddLabels, "")

		if err := repo.Create(run); err == nil {
			t.Fatal("expected validation error for empty board id")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if _, err := repo.GetBySequence(99); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)
		db.Close()

		if err := repo.Create(newTestRun(tasks.OpAddLabels, "board-1")); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected error on closed database")
		}
	})
}

func TestRunJournal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db)
	journal := NewRunJournal(repo)

	started := time.Now().Add(-time.Second)
	result := &tasks.Result{
		Operation:     tasks.OpCopyCards,
		BoardID:       "src",
		TargetBoardID: "dst",
		Processed:     2,
		Success:       1,
		Errors:        []tasks.CardError{{CardID: "c4", Name: "Release", Error: "status 500"}},
		SkippedLists:  []string{"Doing"},
		StartedAt:     started,
		FinishedAt:    time.Now(),
	}

	run, err := journal.Record(result)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	stored, err := repo.Get(run.ID())
	if err != nil {
		t.Fatalf("failed to get recorded run: %v", err)
	}

	want := []models.RunError{{Position: 0, CardID: "c4", CardName: "Release", Message: "status 500"}}
	if diff := cmp.Diff(want, stored.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Doing"}, stored.SkippedLists()); diff != "" {
		t.Errorf("skipped lists mismatch (-want +got):\n%s", diff)
	}
	if stored.TargetBoardID() != "dst" || stored.DryRun() {
		t.Errorf("unexpected run: target=%s dry=%v", stored.TargetBoardID(), stored.DryRun())
	}

	listed, err := repo.List(map[string]any{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 run, got %d", len(listed))
	}
	if listed[0].Errors() != nil {
		t.Error("expected List to leave errors unloaded")
	}
	if listed[0].Processed() != 2 || listed[0].Success() != 1 || listed[0].Failed() != 1 {
		t.Errorf("unexpected listed counts: processed=%d success=%d failed=%d",
			listed[0].Processed(), listed[0].Success(), listed[0].Failed())
	}

	if _, err := journal.Record(nil); err == nil {
		t.Error("expected error for nil result")
	}
}

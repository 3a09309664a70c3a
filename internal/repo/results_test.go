package repo

import (
	"context"
	"testing"

	"cquiz-service/internal/domain"
	"cquiz-service/internal/store/memory"
)

func TestResultSaveOverwritesCallerIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(memory.NewStore(), "cquiz_results_v2", nil)

	saved, err := repo.Save(ctx, domain.Result{
		ID:          "caller-supplied",
		TestID:      "t1",
		TestTitle:   "Basics",
		StudentRoll: "STU101",
		Score:       8,
		Total:       10,
		Timestamp:   42,
		Answers:     map[int]int{0: 1},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "caller-supplied" || saved.ID == "" {
		t.Fatalf("expected generated id, got %q", saved.ID)
	}
	if saved.Timestamp == 42 || saved.Timestamp == 0 {
		t.Fatalf("expected generated timestamp, got %d", saved.Timestamp)
	}
}

func TestResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(memory.NewStore(), "cquiz_results_v2", nil)

	saved, err := repo.Save(ctx, domain.Result{
		TestID:      "t1",
		TestTitle:   "Basics",
		StudentRoll: "STU101",
		Score:       8,
		Total:       10,
		Answers:     map[int]int{0: 1, 1: 0},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	results, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.ID != saved.ID || got.TestID != "t1" || got.Score != 8 || got.Total != 10 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Answers[0] != 1 || got.Answers[1] != 0 {
		t.Fatalf("answers mismatch: %+v", got.Answers)
	}
}

func TestResultsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(memory.NewStore(), "cquiz_results_v2", nil)

	for i := 0; i < 3; i++ {
		if _, err := repo.Save(ctx, domain.Result{TestID: "t1", Score: i, Total: 3}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	results, _ := repo.List(ctx)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Score != i {
			t.Fatalf("expected insertion order preserved, got %+v", results)
		}
	}
}

func TestListByTestID(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(memory.NewStore(), "cquiz_results_v2", nil)

	for _, testID := range []string{"t1", "t2", "t1"} {
		if _, err := repo.Save(ctx, domain.Result{TestID: testID, Score: 1, Total: 1}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	matched, err := repo.ListByTestID(ctx, "t1")
	if err != nil {
		t.Fatalf("list by test: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
}

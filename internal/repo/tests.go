package repo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"cquiz-service/internal/domain"
	"cquiz-service/internal/store"
)

const testsCollection = "tests"

// TestRepository stores the quiz tests under a single durable key.
type TestRepository struct {
	kv    store.KV
	key   string
	hooks Hooks
	log   *zap.Logger
	now   func() time.Time
	rnd   *rand.Rand
}

func NewTestRepository(kv store.KV, key string, hooks Hooks, log *zap.Logger) *TestRepository {
	return &TestRepository{
		kv:    kv,
		key:   key,
		hooks: hooks,
		log:   noopLogger(log),
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List returns the full stored collection. An absent or malformed blob is an
// empty collection.
func (r *TestRepository) List(ctx context.Context) ([]domain.Test, error) {
	raw, ok, err := r.kv.GetItem(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read tests: %w", err)
	}
	return decodeList[domain.Test](raw, ok), nil
}

// Get finds a single test by ID.
func (r *TestRepository) Get(ctx context.Context, testID string) (domain.Test, error) {
	tests, err := r.List(ctx)
	if err != nil {
		return domain.Test{}, err
	}
	for _, t := range tests {
		if t.ID == testID {
			return t, nil
		}
	}
	return domain.Test{}, domain.ErrTestNotFound
}

// Save upserts a test. A missing ID and createdAt are generated; an existing
// ID is replaced in place so collection order is preserved. The remote
// mirror is best-effort and never fails the local save.
func (r *TestRepository) Save(ctx context.Context, test domain.Test) (domain.Test, error) {
	if err := validateQuestions(test.Questions); err != nil {
		return domain.Test{}, err
	}

	if test.ID == "" {
		test.ID = newID(r.now(), r.rnd)
	}
	if test.CreatedAt == 0 {
		test.CreatedAt = r.now().UnixMilli()
	}

	tests, err := r.List(ctx)
	if err != nil {
		return domain.Test{}, err
	}

	replaced := false
	for i := range tests {
		if tests[i].ID == test.ID {
			tests[i] = test
			replaced = true
			break
		}
	}
	if !replaced {
		tests = append(tests, test)
	}

	if err := r.persist(ctx, tests); err != nil {
		return domain.Test{}, err
	}

	if r.hooks.Sink != nil {
		if err := r.hooks.Sink.SaveRecord(ctx, testsCollection, test.ID, test); err != nil {
			r.log.Warn("remote sync failed", zap.String("testId", test.ID), zap.Error(err))
		}
	}

	r.hooks.render()
	return test, nil
}

// Delete removes a test and cascades to its results, after an explicit
// confirmation. The remote phase runs first and its failures are reported
// but never block the local removal. If the cascading result rewrite fails
// the test stays removed; the caller gets ErrDeleteIncomplete.
func (r *TestRepository) Delete(ctx context.Context, results *ResultRepository, testID string) error {
	if !r.hooks.confirm("Are you sure you want to delete this test? This will also remove all related results.") {
		return nil
	}

	if r.hooks.Sink != nil {
		if err := r.hooks.Sink.DeleteRecord(ctx, testsCollection, testID); err != nil {
			r.log.Warn("remote delete failed", zap.String("testId", testID), zap.Error(err))
		}
		if err := r.hooks.Sink.DeleteSubmissionsForTest(ctx, testID); err != nil {
			r.log.Warn("remote submission delete failed", zap.String("testId", testID), zap.Error(err))
		}
	}

	tests, err := r.List(ctx)
	if err != nil {
		r.hooks.notify("Failed to delete test completely.")
		return fmt.Errorf("%w: %v", domain.ErrDeleteIncomplete, err)
	}
	kept := tests[:0]
	for _, t := range tests {
		if t.ID != testID {
			kept = append(kept, t)
		}
	}
	if err := r.persist(ctx, kept); err != nil {
		r.hooks.notify("Failed to delete test completely.")
		return fmt.Errorf("%w: %v", domain.ErrDeleteIncomplete, err)
	}

	// The test is already gone locally; a failure below leaves orphaned
	// results behind rather than resurrecting the test.
	if err := results.deleteByTestID(ctx, testID); err != nil {
		r.hooks.notify("Failed to delete test completely.")
		return fmt.Errorf("%w: %v", domain.ErrDeleteIncomplete, err)
	}

	r.hooks.notify("Test deleted successfully")
	r.hooks.render()
	return nil
}

func (r *TestRepository) persist(ctx context.Context, tests []domain.Test) error {
	blob, err := encodeList(tests)
	if err != nil {
		return fmt.Errorf("encode tests: %w", err)
	}
	if err := r.kv.SetItem(ctx, r.key, blob); err != nil {
		return fmt.Errorf("write tests: %w", err)
	}
	return nil
}

func validateQuestions(questions []domain.Question) error {
	for i, q := range questions {
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", domain.ErrInvalidQuestion, i)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index %d out of range", domain.ErrInvalidQuestion, i, q.CorrectIndex)
		}
	}
	return nil
}

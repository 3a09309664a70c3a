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

// ResultRepository stores submissions under a single durable key.
// Results are append-only; the only removal path is the test-delete cascade.
type ResultRepository struct {
	kv  store.KV
	key string
	log *zap.Logger
	now func() time.Time
	rnd *rand.Rand
}

func NewResultRepository(kv store.KV, key string, log *zap.Logger) *ResultRepository {
	return &ResultRepository{
		kv:  kv,
		key: key,
		log: noopLogger(log),
		now: time.Now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List returns the full stored collection, empty on absence or corruption.
func (r *ResultRepository) List(ctx context.Context) ([]domain.Result, error) {
	raw, ok, err := r.kv.GetItem(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return decodeList[domain.Result](raw, ok), nil
}

// ListByTestID returns only the submissions for one test.
func (r *ResultRepository) ListByTestID(ctx context.Context, testID string) ([]domain.Result, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var matched []domain.Result
	for _, res := range all {
		if res.TestID == testID {
			matched = append(matched, res)
		}
	}
	return matched, nil
}

// Save appends a submission. Caller-supplied ID and timestamp are always
// overwritten with generated values.
func (r *ResultRepository) Save(ctx context.Context, result domain.Result) (domain.Result, error) {
	now := r.now()
	result.ID = newID(now, r.rnd)
	result.Timestamp = now.UnixMilli()

	results, err := r.List(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	results = append(results, result)

	if err := r.persist(ctx, results); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

// deleteByTestID rewrites the collection without the submissions for a test.
// Only the test-delete cascade may call it.
func (r *ResultRepository) deleteByTestID(ctx context.Context, testID string) error {
	results, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := results[:0]
	for _, res := range results {
		if res.TestID != testID {
			kept = append(kept, res)
		}
	}
	return r.persist(ctx, kept)
}

func (r *ResultRepository) persist(ctx context.Context, results []domain.Result) error {
	blob, err := encodeList(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := r.kv.SetItem(ctx, r.key, blob); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

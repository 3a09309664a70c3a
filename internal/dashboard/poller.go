// Package dashboard drives the teacher dashboard: a timer polls the
// repositories, re-renders the view, and publishes a snapshot to subscribers
// only when the rendered content actually changed.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"cquiz-service/internal/analytics"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/repo"
)

// DefaultInterval is the dashboard polling cadence.
const DefaultInterval = 3 * time.Second

// Snapshot is one rendered dashboard state.
type Snapshot struct {
	Stats           *domain.Stats `json:"stats"`
	SubmissionsHTML string        `json:"submissionsHtml"`
	MyTestsHTML     string        `json:"myTestsHtml"`
	GeneratedAt     time.Time     `json:"generatedAt"`
}

func (s Snapshot) sameContent(other Snapshot) bool {
	return s.SubmissionsHTML == other.SubmissionsHTML && s.MyTestsHTML == other.MyTestsHTML
}

// Poller is the dashboard refresh loop for one teacher session. It has two
// states: rendering and suspended. A tick while suspended does no work at
// all; the modal detail view suspends the loop for as long as it is open.
type Poller struct {
	tests    *repo.TestRepository
	results  *repo.ResultRepository
	user     domain.User
	interval time.Duration
	log      *zap.Logger
	sf       singleflight.Group

	mu          sync.Mutex
	suspended   bool
	hasLast     bool
	last        Snapshot
	subscribers map[chan Snapshot]struct{}
}

func NewPoller(tests *repo.TestRepository, results *repo.ResultRepository, user domain.User, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		tests:       tests,
		results:     results,
		user:        user,
		interval:    interval,
		log:         log,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Run ticks until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.Suspended() {
				continue
			}
			if _, err := p.Refresh(ctx); err != nil {
				p.log.Warn("dashboard refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh re-reads both repositories, renders, and publishes when the
// rendered content differs from the last published snapshot. Concurrent
// refreshes (timer tick plus a forced refresh) are coalesced.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := p.sf.Do("refresh", func() (any, error) {
		return p.refresh(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (p *Poller) refresh(ctx context.Context) (Snapshot, error) {
	results, err := p.results.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	allTests, err := p.tests.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var mine []domain.Test
	for _, t := range allTests {
		if t.CreatedBy == p.user.Roll {
			mine = append(mine, t)
		}
	}

	snapshot := Snapshot{
		Stats:           analytics.Summarize(results),
		SubmissionsHTML: renderSubmissionsTable(results),
		MyTestsHTML:     renderMyTests(mine, results),
		GeneratedAt:     time.Now(),
	}

	p.mu.Lock()
	changed := !p.hasLast || !snapshot.sameContent(p.last)
	if changed {
		p.last = snapshot
		p.hasLast = true
		p.broadcastLocked(snapshot)
	}
	p.mu.Unlock()

	return snapshot, nil
}

// ViewTest renders the detail view for one test and suspends the loop while
// the modal is open.
func (p *Poller) ViewTest(ctx context.Context, testID string) (string, error) {
	test, err := p.tests.Get(ctx, testID)
	if err != nil {
		return "", err
	}
	p.Suspend()
	return renderTestDetail(test), nil
}

// CloseTest resumes the loop when the modal closes.
func (p *Poller) CloseTest() {
	p.Resume()
}

func (p *Poller) Suspend() {
	p.mu.Lock()
	p.suspended = true
	p.mu.Unlock()
}

func (p *Poller) Resume() {
	p.mu.Lock()
	p.suspended = false
	p.mu.Unlock()
}

func (p *Poller) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended
}

// Subscribe returns a channel of published snapshots, starting with the last
// one when present. The caller must invoke cancel to avoid leaks.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	if p.hasLast {
		ch <- p.last
	}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *Poller) broadcastLocked(snapshot Snapshot) {
	for ch := range p.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow subscriber never blocks the loop.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

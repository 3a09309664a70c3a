package dashboard

import (
	"fmt"
	"html"
	"strings"
	"time"

	"cquiz-service/internal/domain"
)

// The renderers reproduce the markup of the teacher page so snapshots can be
// compared byte-for-byte; the displayed view is only replaced on change.

func renderSubmissionsTable(results []domain.Result) string {
	if len(results) == 0 {
		return `<tr><td colspan="4" class="text-center">No submissions yet.</td></tr>`
	}

	var b strings.Builder
	// Newest submissions first.
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		badge := "badge-pink"
		if 2*r.Score >= r.Total {
			badge = "badge-indigo"
		}
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td><span class="badge %s">%d/%d</span></td><td class="text-muted">%s</td></tr>`,
			html.EscapeString(r.StudentRoll),
			html.EscapeString(r.TestTitle),
			badge,
			r.Score, r.Total,
			formatDate(r.Timestamp),
		)
	}
	return b.String()
}

func renderMyTests(tests []domain.Test, results []domain.Result) string {
	if len(tests) == 0 {
		return `<p class="text-center text-muted">You haven't created any tests yet.</p>`
	}

	counts := make(map[string]int)
	for _, r := range results {
		counts[r.TestID]++
	}

	var b strings.Builder
	// Newest tests first.
	for i := len(tests) - 1; i >= 0; i-- {
		t := tests[i]
		fmt.Fprintf(&b, `<div class="test-list-item" data-test-id="%s"><div class="flex-between"><div><h4>%s</h4><span class="text-muted">%d Questions &middot; %d Submissions</span></div><span class="badge badge-indigo">View Details</span></div></div>`,
			html.EscapeString(t.ID),
			html.EscapeString(t.Title),
			len(t.Questions),
			counts[t.ID],
		)
	}
	return b.String()
}

func renderTestDetail(test domain.Test) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<h3>%s</h3><div class="question-grid">`, html.EscapeString(test.Title))
	for i, q := range test.Questions {
		fmt.Fprintf(&b, `<div class="glass-card"><h5>Question %d</h5><p>%s</p><div class="options">`, i+1, html.EscapeString(q.Text))
		for j, opt := range q.Options {
			class := "option"
			mark := ""
			if j == q.CorrectIndex {
				class = "option option-correct"
				mark = " &#10004;"
			}
			fmt.Fprintf(&b, `<div class="%s">%s%s</div>`, class, html.EscapeString(opt), mark)
		}
		b.WriteString(`</div></div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func formatDate(unixMilli int64) string {
	return time.UnixMilli(unixMilli).Format("Jan 2, 03:04 PM")
}

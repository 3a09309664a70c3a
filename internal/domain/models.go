package domain

// Role gates access to the teacher and student views.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User is an entry in the fixed roster. Users are defined at startup and
// never mutated; the authenticated copy lives in the session-scoped store.
type User struct {
	Roll string `json:"roll"`
	Role Role   `json:"role"`
}

// Question is a single multiple-choice question. CorrectIndex points into
// Options and is validated when the owning Test is saved.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Test is a teacher-authored quiz. CreatedBy is a weak reference to a
// roster roll; nothing enforces it. Timestamps are Unix milliseconds.
type Test struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt int64      `json:"createdAt"`
	Questions []Question `json:"questions"`
}

// Grade scores a set of chosen option indexes against the test's answer
// key. Unanswered or out-of-range choices score nothing.
func (t Test) Grade(answers map[int]int) (score, total int) {
	total = len(t.Questions)
	for i, q := range t.Questions {
		chosen, ok := answers[i]
		if !ok {
			continue
		}
		if chosen >= 0 && chosen < len(q.Options) && chosen == q.CorrectIndex {
			score++
		}
	}
	return score, total
}

// Result is an append-only submission record. ID and Timestamp are assigned
// on save; Answers maps question index to the chosen option index.
type Result struct {
	ID          string      `json:"id"`
	TestID      string      `json:"testId"`
	TestTitle   string      `json:"testTitle"`
	StudentRoll string      `json:"studentRoll"`
	Score       int         `json:"score"`
	Total       int         `json:"total"`
	Timestamp   int64       `json:"timestamp"`
	Answers     map[int]int `json:"answers"`
}

// Percentage returns the score as 0..100.
func (r Result) Percentage() float64 {
	if r.Total <= 0 {
		return 0
	}
	return 100 * float64(r.Score) / float64(r.Total)
}

// Stats is the dashboard summary derived from all stored results.
// Score fields are percentages rounded to one decimal place.
type Stats struct {
	TotalAttempts int     `json:"totalAttempts"`
	AvgScore      float64 `json:"avgScore"`
	HighScore     float64 `json:"highScore"`
	LowScore      float64 `json:"lowScore"`
}

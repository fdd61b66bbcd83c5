package models

import "sync"

// Severity ranks an issue for reporting.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Issue is a single recorded defect, keyed to the file that raised it.
type Issue struct {
	File     string   `json:"file"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// MaxScore is the health score ceiling a run starts from.
const MaxScore = 100

// Report accumulates issues and a running health score. Every recorded issue
// immediately deducts its type's penalty; the score never goes below zero.
// Updates are serialized so probe workers can report concurrently.
type Report struct {
	mu        sync.Mutex
	issues    []Issue
	score     int
	penalties map[string]int
}

// NewReport creates a report with the given per-type penalties.
func NewReport(penalties map[string]int) *Report {
	return &Report{
		score:     MaxScore,
		penalties: penalties,
	}
}

// Add records an issue and applies its penalty. Unknown types cost nothing.
func (r *Report) Add(file, issueType string, severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.issues = append(r.issues, Issue{
		File:     file,
		Type:     issueType,
		Severity: severity,
		Message:  message,
	})

	r.score -= r.penalties[issueType]
	if r.score < 0 {
		r.score = 0
	}
}

// Score returns the current health score.
func (r *Report) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

// Issues returns a copy of the recorded issues in insertion order.
func (r *Report) Issues() []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

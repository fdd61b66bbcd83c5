package db

import (
	"fmt"
	"time"

	"github.com/davyos/siteforge/models"
)

// RunSummary is one historical audit run.
type RunSummary struct {
	RunID         int64
	CreatedAt     time.Time
	Score         int
	FileCount     int
	IssueCount    int
	ExternalCount int
}

// SaveRun persists a report and its issues, returning the new run id.
func (db *DB) SaveRun(report *models.Report, fileCount, externalCount int) (int64, error) {
	issues := report.Issues()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (score, file_count, issue_count, external_count) VALUES (?, ?, ?, ?)`,
		report.Score(), fileCount, len(issues), externalCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO run_issues (run_id, file, type, severity, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, issue := range issues {
		if _, err := stmt.Exec(runID, issue.File, issue.Type, issue.Severity, issue.Message); err != nil {
			return 0, fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT run_id, created_at, score, file_count, issue_count, external_count
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Score, &r.FileCount, &r.IssueCount, &r.ExternalCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunIssues returns every issue a run recorded, in insertion order.
func (db *DB) RunIssues(runID int64) ([]models.Issue, error) {
	rows, err := db.Query(
		`SELECT file, type, severity, message FROM run_issues WHERE run_id = ? ORDER BY issue_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		var issue models.Issue
		if err := rows.Scan(&issue.File, &issue.Type, &issue.Severity, &issue.Message); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

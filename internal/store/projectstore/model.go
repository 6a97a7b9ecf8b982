package projectstore

import (
	"strings"
	"time"
)

// Status tracks how a project's latest generation run ended.
const (
	StatusComplete = "complete"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Record is the stored summary of a project. File contents live in the
// artifact store; this row carries the metadata the list and detail
// endpoints serve.
type Record struct {
	ID          string    `json:"project_id"`
	Name        string    `json:"project_name"`
	Prompt      string    `json:"prompt"`
	ProjectType string    `json:"project_type"`
	Intent      string    `json:"intent"`
	Status      string    `json:"status"`
	FileCount   int       `json:"file_count"`
	ErrorCount  int       `json:"error_count"`
	Iterations  int       `json:"iterations"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func normalizeRecord(rec Record) Record {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.ProjectType = strings.TrimSpace(rec.ProjectType)
	rec.Status = strings.TrimSpace(rec.Status)
	if rec.Name == "" {
		rec.Name = "Project"
	}
	if rec.Status == "" {
		rec.Status = StatusComplete
	}
	return rec
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, bool) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Prompt,
		&rec.ProjectType,
		&rec.Intent,
		&rec.Status,
		&rec.FileCount,
		&rec.ErrorCount,
		&rec.Iterations,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, false
	}
	return normalizeRecord(rec), true
}

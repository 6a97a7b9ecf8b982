package projectstore

import "strings"

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
  project_id TEXT PRIMARY KEY,
  project_name TEXT NOT NULL DEFAULT 'Project',
  prompt TEXT NOT NULL DEFAULT '',
  project_type TEXT NOT NULL DEFAULT '',
  intent TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT '',
  file_count INTEGER NOT NULL DEFAULT 0,
  error_count INTEGER NOT NULL DEFAULT 0,
  iterations INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects (updated_at DESC);
`)
	})
	return s.schemaErr
}

const recordColumns = `project_id, project_name, prompt, project_type, intent, status,
file_count, error_count, iterations, created_at, updated_at`

func (s *Store) putDB(rec Record) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	_, _ = s.db.Exec(`
INSERT INTO projects (
  project_id, project_name, prompt, project_type, intent, status,
  file_count, error_count, iterations
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (project_id)
DO UPDATE SET project_name=EXCLUDED.project_name,
  prompt=EXCLUDED.prompt,
  project_type=EXCLUDED.project_type,
  intent=EXCLUDED.intent,
  status=EXCLUDED.status,
  file_count=EXCLUDED.file_count,
  error_count=EXCLUDED.error_count,
  iterations=EXCLUDED.iterations,
  updated_at=NOW()`,
		rec.ID, rec.Name, rec.Prompt, rec.ProjectType, rec.Intent, rec.Status,
		rec.FileCount, rec.ErrorCount, rec.Iterations)
}

func (s *Store) getDB(projectID string) (Record, bool) {
	if err := s.ensureSchema(); err != nil {
		return Record{}, false
	}
	id := strings.TrimSpace(projectID)
	if id == "" {
		return Record{}, false
	}
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM projects WHERE project_id = $1`, id)
	return scanRecord(row)
}

func (s *Store) updateDB(projectID string, fn func(*Record)) (Record, bool) {
	if err := s.ensureSchema(); err != nil {
		return Record{}, false
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, false
	}
	defer func() { _ = tx.Rollback() }()

	id := strings.TrimSpace(projectID)
	row := tx.QueryRow(`SELECT `+recordColumns+` FROM projects WHERE project_id = $1 FOR UPDATE`, id)
	cur, ok := scanRecord(row)
	if !ok {
		return Record{}, false
	}
	fn(&cur)
	cur.ID = id
	cur = normalizeRecord(cur)
	_, err = tx.Exec(`
UPDATE projects
SET project_name=$2, prompt=$3, project_type=$4, intent=$5, status=$6,
  file_count=$7, error_count=$8, iterations=$9, updated_at=NOW()
WHERE project_id=$1`,
		cur.ID, cur.Name, cur.Prompt, cur.ProjectType, cur.Intent, cur.Status,
		cur.FileCount, cur.ErrorCount, cur.Iterations)
	if err != nil {
		return Record{}, false
	}
	if err := tx.Commit(); err != nil {
		return Record{}, false
	}
	return cur, true
}

func (s *Store) listDB() []Record {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	rows, err := s.db.Query(`SELECT ` + recordColumns + ` FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	out := make([]Record, 0, 32)
	for rows.Next() {
		if rec, ok := scanRecord(rows); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Package store is the persistence gateway: upsert-by-external-id
// semantics for jobs and their match scores on Postgres.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
)

// Store wraps a pgx pool with the job-feed queries.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a configured Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the tables when they don't exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS jobs (
		id               BIGSERIAL PRIMARY KEY,
		external_id      TEXT UNIQUE NOT NULL,
		source           TEXT NOT NULL,
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		location         TEXT,
		description      TEXT,
		url              TEXT NOT NULL,
		salary_min       INTEGER,
		salary_max       INTEGER,
		salary_currency  TEXT,
		job_type         TEXT,
		remote           BOOLEAN NOT NULL DEFAULT false,
		tags             TEXT,
		posted_at        TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS job_matches (
		id             BIGSERIAL PRIMARY KEY,
		job_id         BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		match_score    INTEGER NOT NULL,
		match_reasons  JSONB,
		status         TEXT NOT NULL DEFAULT 'new',
		favorited      BOOLEAN NOT NULL DEFAULT false,
		applied        BOOLEAN NOT NULL DEFAULT false,
		notes          TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (job_id)
	);

	CREATE TABLE IF NOT EXISTS scraper_logs (
		id            BIGSERIAL PRIMARY KEY,
		source        TEXT NOT NULL,
		jobs_found    INTEGER,
		jobs_added    INTEGER,
		jobs_updated  INTEGER,
		error         TEXT,
		started_at    TIMESTAMPTZ,
		finished_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// UpsertJob inserts the job or, on an external_id conflict, partially
// updates the existing row: only updated_at and the salary fields are
// overwritten (and salary only when the new fetch actually carries one);
// everything else keeps its first-seen value. Returns the row id and
// whether the job was new.
func (s *Store) UpsertJob(ctx context.Context, j model.Job) (int64, bool, error) {
	const q = `
	INSERT INTO jobs (
		external_id, source, title, company, location, description,
		url, salary_min, salary_max, salary_currency, job_type, remote,
		tags, posted_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (external_id) DO UPDATE SET
		updated_at      = now(),
		salary_min      = COALESCE(EXCLUDED.salary_min, jobs.salary_min),
		salary_max      = COALESCE(EXCLUDED.salary_max, jobs.salary_max),
		salary_currency = COALESCE(EXCLUDED.salary_currency, jobs.salary_currency)
	RETURNING id, (xmax = 0) AS is_new`

	var (
		id    int64
		isNew bool
	)
	err := s.pool.QueryRow(ctx, q,
		j.ExternalID, j.Source, j.Title, j.Company, j.Location, j.Description,
		j.URL, j.SalaryMin, j.SalaryMax, nullIfEmpty(j.SalaryCurrency), j.JobType, j.Remote,
		j.Tags, j.PostedAt,
	).Scan(&id, &isNew)
	if err != nil {
		return 0, false, fmt.Errorf("upsert job %s: %w", j.ExternalID, err)
	}
	return id, isNew, nil
}

// UpsertMatch writes the match row for a job; one row per job, replaced
// on re-score.
func (s *Store) UpsertMatch(ctx context.Context, jobID int64, m model.MatchResult) error {
	reasons, err := json.Marshal(m.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}

	const q = `
	INSERT INTO job_matches (job_id, match_score, match_reasons, status)
	VALUES ($1, $2, $3, 'new')
	ON CONFLICT (job_id) DO UPDATE SET
		match_score   = EXCLUDED.match_score,
		match_reasons = EXCLUDED.match_reasons,
		updated_at    = now()`

	if _, err := s.pool.Exec(ctx, q, jobID, m.Score, reasons); err != nil {
		return fmt.Errorf("upsert match for job %d: %w", jobID, err)
	}
	return nil
}

// JobFilter narrows and pages the job listing.
type JobFilter struct {
	MinScore int
	Source   string
	Remote   *bool
	JobType  string
	Search   string // substring match on title/company/description
	SortBy   string // "score" (default) or "posted_at"
	Limit    int
	Offset   int
}

const scoredJobColumns = `
	j.id, j.external_id, j.source, j.title, j.company,
	COALESCE(j.location, ''), COALESCE(j.description, ''), j.url,
	j.salary_min, j.salary_max, COALESCE(j.salary_currency, ''),
	COALESCE(j.job_type, ''), j.remote, COALESCE(j.tags, ''), j.posted_at,
	m.match_score, m.match_reasons,
	COALESCE(m.status, 'new'), COALESCE(m.favorited, false), COALESCE(m.applied, false)`

// ListJobs returns the scored job feed, filtered and paginated.
func (s *Store) ListJobs(ctx context.Context, f JobFilter) ([]model.ScoredJob, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.MinScore > 0 {
		where = append(where, "m.match_score >= "+arg(f.MinScore))
	}
	if f.Source != "" {
		where = append(where, "j.source = "+arg(f.Source))
	}
	if f.Remote != nil {
		where = append(where, "j.remote = "+arg(*f.Remote))
	}
	if f.JobType != "" {
		where = append(where, "j.job_type = "+arg(f.JobType))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(j.title ILIKE %s OR j.company ILIKE %s OR j.description ILIKE %s)", p, p, p))
	}

	q := `SELECT ` + scoredJobColumns + `
	FROM jobs j
	LEFT JOIN job_matches m ON m.job_id = j.id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if f.SortBy == "posted_at" {
		q += " ORDER BY j.posted_at DESC NULLS LAST"
	} else {
		q += " ORDER BY m.match_score DESC NULLS LAST, j.posted_at DESC NULLS LAST"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.ScoredJob, 0)
	for rows.Next() {
		sj, err := scanScoredJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, sj)
	}
	return jobs, rows.Err()
}

// GetJob returns one scored job by row id.
func (s *Store) GetJob(ctx context.Context, id int64) (*model.ScoredJob, error) {
	q := `SELECT ` + scoredJobColumns + `
	FROM jobs j
	LEFT JOIN job_matches m ON m.job_id = j.id
	WHERE j.id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("get job query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	sj, err := scanScoredJob(rows)
	if err != nil {
		return nil, err
	}
	return &sj, nil
}

// AllJobs returns every stored job, for re-scoring passes.
func (s *Store) AllJobs(ctx context.Context) ([]model.Job, error) {
	const q = `
	SELECT id, external_id, source, title, company,
	       COALESCE(location, ''), COALESCE(description, ''), url,
	       salary_min, salary_max, COALESCE(salary_currency, ''),
	       COALESCE(job_type, ''), remote, COALESCE(tags, ''), posted_at
	FROM jobs`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("all jobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(
			&j.ID, &j.ExternalID, &j.Source, &j.Title, &j.Company,
			&j.Location, &j.Description, &j.URL,
			&j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency,
			&j.JobType, &j.Remote, &j.Tags, &j.PostedAt,
		); err != nil {
			return nil, fmt.Errorf("all jobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountJobs returns the total number of stored jobs.
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// SetJobStatus updates the mutable user-facing fields of a job's match
// row. Nil pointers leave the corresponding field untouched.
func (s *Store) SetJobStatus(ctx context.Context, jobID int64, status string, favorited, applied *bool, notes *string) error {
	const q = `
	UPDATE job_matches SET
		status     = COALESCE(NULLIF($2, ''), status),
		favorited  = COALESCE($3, favorited),
		applied    = COALESCE($4, applied),
		notes      = COALESCE($5, notes),
		updated_at = now()
	WHERE job_id = $1`

	tag, err := s.pool.Exec(ctx, q, jobID, status, favorited, applied, notes)
	if err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %d has no match row", jobID)
	}
	return nil
}

// Stats aggregates the dashboard counters.
func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	const q = `
	SELECT
		(SELECT COUNT(*) FROM jobs),
		(SELECT COUNT(*) FROM job_matches WHERE match_score >= 70),
		(SELECT COUNT(*) FROM job_matches WHERE favorited),
		(SELECT COUNT(*) FROM job_matches WHERE applied),
		(SELECT MAX(updated_at) FROM jobs)`

	var st model.Stats
	if err := s.pool.QueryRow(ctx, q).Scan(
		&st.TotalJobs, &st.HighMatches, &st.Favorited, &st.Applied, &st.LastUpdate,
	); err != nil {
		return nil, fmt.Errorf("stats query: %w", err)
	}
	return &st, nil
}

// InsertScraperRun records one scrape cycle in the run log.
func (s *Store) InsertScraperRun(ctx context.Context, run model.ScraperRun) error {
	const q = `
	INSERT INTO scraper_logs (source, jobs_found, jobs_added, jobs_updated, error, started_at, finished_at)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`

	if _, err := s.pool.Exec(ctx, q,
		run.Source, run.JobsFound, run.JobsAdded, run.JobsUpdated,
		run.Error, run.StartedAt, run.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert scraper run: %w", err)
	}
	return nil
}

func scanScoredJob(rows pgx.Rows) (model.ScoredJob, error) {
	var (
		sj         model.ScoredJob
		reasonsRaw []byte
	)
	if err := rows.Scan(
		&sj.ID, &sj.ExternalID, &sj.Source, &sj.Title, &sj.Company,
		&sj.Location, &sj.Description, &sj.URL,
		&sj.SalaryMin, &sj.SalaryMax, &sj.SalaryCurrency,
		&sj.JobType, &sj.Remote, &sj.Tags, &sj.PostedAt,
		&sj.MatchScore, &reasonsRaw,
		&sj.Status, &sj.Favorited, &sj.Applied,
	); err != nil {
		return model.ScoredJob{}, fmt.Errorf("scan scored job: %w", err)
	}
	if len(reasonsRaw) > 0 {
		if err := json.Unmarshal(reasonsRaw, &sj.MatchReasons); err != nil {
			return model.ScoredJob{}, fmt.Errorf("decode match reasons: %w", err)
		}
	}
	return sj, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

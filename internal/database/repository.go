package database

import (
	"context"
	"fmt"
	"time"

	"go-jobscraper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              BIGSERIAL PRIMARY KEY,
	source          TEXT        NOT NULL,
	listing_url     TEXT        NOT NULL,
	apply_url       TEXT        NOT NULL UNIQUE,
	title           TEXT,
	company         TEXT,
	company_website TEXT,
	description     TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertJob = `
INSERT INTO jobs (source, listing_url, apply_url, title, company, company_website, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (apply_url)
DO UPDATE SET source = EXCLUDED.source, listing_url = EXCLUDED.listing_url, title = EXCLUDED.title,
	company = EXCLUDED.company, company_website = EXCLUDED.company_website,
	description = EXCLUDED.description, updated_at = now()`

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Poolers in transaction mode (PgBouncer, Supabase) cannot keep prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the jobs table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveJobs upserts the jobs of one scrape keyed by apply URL, in a single
// transaction. Jobs without an apply URL are skipped. It returns the number
// of rows written.
func (r *Repository) SaveJobs(ctx context.Context, source, listingURL string, jobs []models.JobInformation) (int, error) {
	rows := ToStoredJobs(source, listingURL, jobs)
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, job := range rows {
		batch.Queue(upsertJob, job.Source, job.ListingURL, job.ApplyURL, job.Title, job.Company, job.Website, job.Desc)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to save jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit jobs: %w", err)
	}
	return len(rows), nil
}

// ListJobs returns the most recently updated jobs, newest first. An empty
// source matches every source.
func (r *Repository) ListJobs(ctx context.Context, source string, limit int) ([]models.StoredJob, error) {
	query := `
		SELECT id, source, listing_url, apply_url, title, company, company_website, description, created_at, updated_at
		FROM jobs
		WHERE $1 = '' OR source = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.StoredJob
	for rows.Next() {
		var job models.StoredJob
		var id int64
		if err := rows.Scan(&id, &job.Source, &job.ListingURL, &job.ApplyURL, &job.Title, &job.Company, &job.Website, &job.Desc, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job.ID = fmt.Sprint(id)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// ToStoredJobs maps extracted jobs to rows, dropping those without an apply
// URL and keeping the last record of any repeated apply URL
func ToStoredJobs(source, listingURL string, jobs []models.JobInformation) []models.StoredJob {
	index := make(map[string]int, len(jobs))
	rows := make([]models.StoredJob, 0, len(jobs))
	for _, job := range jobs {
		applyURL := models.Value(job.ApplyURL)
		if applyURL == "" {
			continue
		}
		row := models.StoredJob{
			Source:     source,
			ListingURL: listingURL,
			ApplyURL:   applyURL,
			Title:      job.JobTitle,
			Company:    job.CompanyName,
			Website:    job.CompanyWebsite,
			Desc:       job.JobDescription,
		}
		if i, ok := index[applyURL]; ok {
			rows[i] = row
			continue
		}
		index[applyURL] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

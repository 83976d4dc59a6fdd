package storage

import (
	"context"
	"sort"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/table"
)

// JobRegistry manages the job list kept in a two-column (reserved, name)
// table.
type JobRegistry struct {
	tbl   table.Table
	weeks *WeekStore
}

// NewJobRegistry returns a registry over tbl that cascades deletions to
// weeks.
func NewJobRegistry(tbl table.Table, weeks *WeekStore) *JobRegistry {
	return &JobRegistry{tbl: tbl, weeks: weeks}
}

// List returns the distinct job names in sorted order.
func (r *JobRegistry) List(ctx context.Context) ([]string, error) {
	rows, err := r.tbl.Rows(ctx, nil)
	if err != nil {
		return nil, unavailable("listing jobs", err)
	}
	seen := map[string]bool{}
	jobs := []string{}
	for _, row := range rows {
		if len(row) <= model.ColJobName || row[model.ColJobName] == "" {
			continue
		}
		name := row[model.ColJobName]
		if !seen[name] {
			seen[name] = true
			jobs = append(jobs, name)
		}
	}
	sort.Strings(jobs)
	return jobs, nil
}

// Exists reports whether name is a registered job.
func (r *JobRegistry) Exists(ctx context.Context, name string) (bool, error) {
	rows, err := r.tbl.Rows(ctx, table.Where{model.ColJobName: name})
	if err != nil {
		return false, unavailable("looking up job", err)
	}
	return name != "" && len(rows) > 0, nil
}

// Create registers a job and returns its trimmed name. Duplicates are
// allowed; List collapses them.
func (r *JobRegistry) Create(ctx context.Context, name string) (string, error) {
	name, err := model.NormalizeJobName(name)
	if err != nil {
		return "", err
	}
	header, err := r.tbl.Header(ctx)
	if err != nil {
		return "", unavailable("reading jobs header", err)
	}
	rows := [][]string{{"", name}}
	if header == nil {
		// The first row of a table is its header.
		rows = append([][]string{model.JobsHeader}, rows...)
	}
	if err := r.tbl.Append(ctx, rows...); err != nil {
		return "", unavailable("creating job", err)
	}
	return name, nil
}

// Delete removes every row of the job, then every stored week of it. It
// returns the number of job rows and week rows removed.
func (r *JobRegistry) Delete(ctx context.Context, name string) (int, int, error) {
	jobs, err := r.tbl.Delete(ctx, table.Where{model.ColJobName: name})
	if err != nil {
		return 0, 0, unavailable("deleting job", err)
	}
	weeks, err := r.weeks.DeleteForJob(ctx, name)
	if err != nil {
		return jobs, 0, err
	}
	return jobs, weeks, nil
}

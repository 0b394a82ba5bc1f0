package state

import (
	"fmt"
	"strings"
)

// ListOptions specifies filters for listing workbenches.
type ListOptions struct {
	RepoPath string   // Filter by clone path (exact match)
	Statuses []Status // Filter by status (any of these)
}

// ListWorkbenches returns all workbenches matching the given filters.
// If no filters are specified, returns all workbenches.
func (db *DB) ListWorkbenches(opts ListOptions) ([]*Workbench, error) {
	query := `
		SELECT id, repo_url, repo_path, branch_name, manifest,
		       venv_path, image_tag, created_at, status
		FROM workbenches
	`

	var conditions []string
	var args []any

	if opts.RepoPath != "" {
		conditions = append(conditions, "repo_path = ?")
		args = append(args, opts.RepoPath)
	}

	if len(opts.Statuses) > 0 {
		// One "?" placeholder per status, values passed via args.
		placeholders := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workbenches: %w", err)
	}
	defer rows.Close()

	var workbenches []*Workbench
	for rows.Next() {
		wb, err := scanWorkbench(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workbench: %w", err)
		}
		workbenches = append(workbenches, wb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workbenches: %w", err)
	}

	return workbenches, nil
}

// CountWorkbenches returns the number of workbenches matching the filters.
func (db *DB) CountWorkbenches(opts ListOptions) (int, error) {
	query := "SELECT COUNT(*) FROM workbenches"

	var conditions []string
	var args []any

	if opts.RepoPath != "" {
		conditions = append(conditions, "repo_path = ?")
		args = append(args, opts.RepoPath)
	}

	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count workbenches: %w", err)
	}

	return count, nil
}

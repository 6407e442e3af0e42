package repository

import (
	"context"
	"fmt"
	"slices"

	"taskmaster/internal/db"
)

// RequiredColumns are the columns the stores read and write, per table.
var RequiredColumns = map[string][]string{
	"users":      {"id", "username", "email", "password_hash", "created_at"},
	"categories": {"id", "user_id", "name", "color", "icon", "created_at"},
	"tasks": {
		"id", "user_id", "title", "description", "category_id", "tags",
		"priority", "status", "completion_percentage", "images",
		"due_date", "created_at", "updated_at",
	},
}

// SchemaReport describes one table as found in the database.
type SchemaReport struct {
	Table   string
	Exists  bool
	Missing []string
	// Legacy lists columns from older layouts that should be migrated away.
	Legacy []string
}

func (r SchemaReport) OK() bool {
	return r.Exists && len(r.Missing) == 0
}

var legacyColumns = map[string][]string{
	"tasks": {"category"},
}

// CheckSchema compares the live tables with RequiredColumns.
func CheckSchema(ctx context.Context, q db.Querier) ([]SchemaReport, error) {
	tables := make([]string, 0, len(RequiredColumns))
	for t := range RequiredColumns {
		tables = append(tables, t)
	}
	slices.Sort(tables)

	reports := make([]SchemaReport, 0, len(tables))
	for _, table := range tables {
		have, err := tableColumns(ctx, q, table)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		reports = append(reports, compareColumns(table, have))
	}
	return reports, nil
}

func compareColumns(table string, have []string) SchemaReport {
	r := SchemaReport{Table: table, Exists: len(have) > 0}
	if !r.Exists {
		return r
	}
	for _, col := range RequiredColumns[table] {
		if !slices.Contains(have, col) {
			r.Missing = append(r.Missing, col)
		}
	}
	for _, col := range legacyColumns[table] {
		if slices.Contains(have, col) {
			r.Legacy = append(r.Legacy, col)
		}
	}
	return r
}

func tableColumns(ctx context.Context, q db.Querier, table string) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

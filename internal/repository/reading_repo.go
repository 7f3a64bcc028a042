package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"greenhouse/internal/models"
)

// ReadingSQLite stores one reading kind in the table of the same name.
type ReadingSQLite struct {
	db        *sql.DB
	kind      models.RecordKind
	insertSQL string
	selectSQL string
}

// NewReadingSQLite only accepts known reading kinds, so the table name in
// its SQL never comes from outside input.
func NewReadingSQLite(db *sql.DB, kind models.RecordKind) (*ReadingSQLite, error) {
	if !models.IsReadingKind(kind) {
		return nil, fmt.Errorf("unknown reading kind %q", kind)
	}
	table := string(kind)
	return &ReadingSQLite{
		db:        db,
		kind:      kind,
		insertSQL: fmt.Sprintf(`INSERT INTO %s (timestamp, value) VALUES (?, ?)`, table),
		selectSQL: fmt.Sprintf(`SELECT timestamp, value FROM %s`, table),
	}, nil
}

func (r *ReadingSQLite) Insert(ctx context.Context, rd models.Reading) error {
	if rd.Kind != r.kind {
		return fmt.Errorf("insert %s reading into %s store", rd.Kind, r.kind)
	}
	if _, err := r.db.ExecContext(ctx, r.insertSQL, formatTime(rd.Timestamp), rd.Value); err != nil {
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return nil
}

func (r *ReadingSQLite) List(ctx context.Context, f ListFilter) ([]models.Reading, error) {
	q, args := withRange(r.selectSQL, f, nil, nil)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		rd := models.Reading{Kind: r.kind}
		if err := rows.Scan(&rd.Timestamp, &rd.Value); err != nil {
			return nil, err
		}
		rd.Timestamp = rd.Timestamp.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// withRange appends the time bounds, any extra conditions, newest-first
// ordering and the limit to base.
func withRange(base string, f ListFilter, conds []string, args []any) (string, []any) {
	if !f.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, formatTime(f.To))
	}
	q := base
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC LIMIT ?"
	return q, append(args, f.limit())
}

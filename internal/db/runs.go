package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saslab/sasdevices/internal/report"
)

// RunRecord summarizes one stored enumeration run
type RunRecord struct {
	ID        string
	Hostname  string
	CreatedAt time.Time
	Hosts     int
	Expanders int
	Groups    int
	Orphans   int
	Skipped   int
}

// GroupRecord is one stored enclosure group
type GroupRecord struct {
	Index      int
	Label      string
	MaxPaths   int
	Enclosures string // comma-joined SAS addresses
}

// UnitRecord is one stored logical unit
type UnitRecord struct {
	GroupIndex  *int // nil for orphans
	LU          string
	Vendor      string
	Model       string
	Rev         string
	Bay         int
	Size        string
	Paths       int
	UnderPathed bool
	Blocks      string
	SGs         string
}

// SaveRun stores a flattened report and returns the new run id
func (d *DB) SaveRun(out *report.Output) (string, error) {
	id := uuid.NewString()

	tx, err := d.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, hostname, created_at, hosts, expanders, enclosure_groups, orphans, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, out.Hostname, out.When.Unix(),
		len(out.Hosts), len(out.Expanders), len(out.Groups), len(out.Orphans), out.Skipped)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for gi, g := range out.Groups {
		addrs := make([]string, len(g.Enclosures))
		for i, enc := range g.Enclosures {
			addrs[i] = enc.SASAddress
		}
		_, err = tx.Exec(`
			INSERT INTO run_groups (run_id, group_idx, label, max_paths, enclosures)
			VALUES (?, ?, ?, ?, ?)`,
			id, gi, g.Label, g.MaxPaths, strings.Join(addrs, ","))
		if err != nil {
			return "", fmt.Errorf("failed to insert group %d: %w", gi, err)
		}

		for _, u := range g.Units {
			if err := insertUnit(tx, id, &gi, u); err != nil {
				return "", err
			}
		}
	}

	for _, u := range out.Orphans {
		if err := insertUnit(tx, id, nil, u); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func insertUnit(tx *sql.Tx, runID string, groupIdx *int, u report.UnitOut) error {
	_, err := tx.Exec(`
		INSERT INTO run_units (run_id, group_idx, lu, vendor, model, rev, bay, size, paths, under_pathed, blocks, sgs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, groupIdx, u.ID, u.Vendor, u.Model, u.Rev, u.Bay, u.Size,
		u.Paths, u.UnderPathed, u.Blocks, u.SGs)
	if err != nil {
		return fmt.Errorf("failed to insert unit %s: %w", u.ID, err)
	}
	return nil
}

// ListRuns returns stored runs, newest first
func (d *DB) ListRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`
		SELECT id, hostname, created_at, hosts, expanders, enclosure_groups, orphans, skipped
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its groups and units
func (d *DB) GetRun(id string) (*RunRecord, []*GroupRecord, []*UnitRecord, error) {
	row := d.conn.QueryRow(`
		SELECT id, hostname, created_at, hosts, expanders, enclosure_groups, orphans, skipped
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil, nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	grows, err := d.conn.Query(`
		SELECT group_idx, label, max_paths, enclosures
		FROM run_groups WHERE run_id = ? ORDER BY group_idx`, id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer grows.Close()

	var groups []*GroupRecord
	for grows.Next() {
		g := &GroupRecord{}
		if err := grows.Scan(&g.Index, &g.Label, &g.MaxPaths, &g.Enclosures); err != nil {
			return nil, nil, nil, err
		}
		groups = append(groups, g)
	}
	if err := grows.Err(); err != nil {
		return nil, nil, nil, err
	}

	urows, err := d.conn.Query(`
		SELECT group_idx, lu, vendor, model, rev, bay, size, paths, under_pathed, blocks, sgs
		FROM run_units WHERE run_id = ? ORDER BY group_idx, bay, lu`, id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer urows.Close()

	var units []*UnitRecord
	for urows.Next() {
		u := &UnitRecord{}
		var gi sql.NullInt64
		if err := urows.Scan(&gi, &u.LU, &u.Vendor, &u.Model, &u.Rev, &u.Bay,
			&u.Size, &u.Paths, &u.UnderPathed, &u.Blocks, &u.SGs); err != nil {
			return nil, nil, nil, err
		}
		if gi.Valid {
			idx := int(gi.Int64)
			u.GroupIndex = &idx
		}
		units = append(units, u)
	}
	return run, groups, units, urows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	r := &RunRecord{}
	var created int64
	if err := s.Scan(&r.ID, &r.Hostname, &created, &r.Hosts, &r.Expanders,
		&r.Groups, &r.Orphans, &r.Skipped); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	return r, nil
}

package storage

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	proberr "crateprobe/internal/errors"
	"crateprobe/internal/stats"
)

// InsertRecord stores one analysis result. Undefined fractions (NaN) are
// stored as NULL.
func (db *DB) InsertRecord(r *stats.Record) error {
	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO results (
				run_id, name, version, published_at, edition, reported_msrv,
				version_signature, unsafe_exprs, total_exprs, unsafe_fraction,
				clippy_warnings, clippy_warnings_per_expr,
				source_digest, analyzed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, r.Name, r.Version, nullableString(r.PublishedAt),
			r.Edition, nullableInt(r.ReportedMSRV),
			r.VersionSignature, r.UnsafeExprs, r.TotalExprs,
			nullableFloat(r.UnsafeFraction),
			r.ClippyWarnings, nullableFloat(r.ClippyWarningsPerExpr),
			r.SourceDigest, r.AnalyzedAt.UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		return proberr.Newf(proberr.StoreFailed, err,
			"storing result for %s %s", r.Name, r.Version)
	}
	return nil
}

// ListRecords returns stored results, newest first. An empty runID returns
// every run.
func (db *DB) ListRecords(runID string) ([]stats.Record, error) {
	query := `
		SELECT run_id, name, version, published_at, edition, reported_msrv,
		       version_signature, unsafe_exprs, total_exprs, unsafe_fraction,
		       clippy_warnings, clippy_warnings_per_expr,
		       source_digest, analyzed_at
		FROM results`
	args := []interface{}{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY analyzed_at DESC, name, version`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, proberr.Newf(proberr.StoreFailed, err, "listing results")
	}
	defer rows.Close()

	var records []stats.Record
	for rows.Next() {
		var (
			r           stats.Record
			publishedAt sql.NullString
			msrv        sql.NullInt64
			fraction    sql.NullFloat64
			perExpr     sql.NullFloat64
			analyzedAt  string
		)
		if err := rows.Scan(
			&r.RunID, &r.Name, &r.Version, &publishedAt, &r.Edition, &msrv,
			&r.VersionSignature, &r.UnsafeExprs, &r.TotalExprs, &fraction,
			&r.ClippyWarnings, &perExpr,
			&r.SourceDigest, &analyzedAt); err != nil {
			return nil, proberr.Newf(proberr.StoreFailed, err, "scanning result row")
		}
		r.PublishedAt = publishedAt.String
		if msrv.Valid {
			v := int(msrv.Int64)
			r.ReportedMSRV = &v
		}
		r.UnsafeFraction = floatOrNaN(fraction)
		r.ClippyWarningsPerExpr = floatOrNaN(perExpr)
		if t, err := time.Parse(time.RFC3339, analyzedAt); err == nil {
			r.AnalyzedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// csvHeader is the column order of exported reports.
var csvHeader = []string{
	"run_id", "name", "version", "published_at", "edition", "reported_msrv",
	"version_signature", "unsafe_exprs", "total_exprs", "unsafe_fraction",
	"clippy_warnings", "clippy_warnings_per_expr", "source_digest", "analyzed_at",
}

// ExportCSV writes the given records as a CSV report.
func ExportCSV(w io.Writer, records []stats.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range records {
		msrv := ""
		if r.ReportedMSRV != nil {
			msrv = strconv.Itoa(*r.ReportedMSRV)
		}
		row := []string{
			r.RunID,
			r.Name,
			r.Version,
			r.PublishedAt,
			strconv.Itoa(r.Edition),
			msrv,
			stats.FormatFloat(r.VersionSignature),
			strconv.Itoa(r.UnsafeExprs),
			strconv.Itoa(r.TotalExprs),
			stats.FormatFloat(r.UnsafeFraction),
			strconv.Itoa(r.ClippyWarnings),
			stats.FormatFloat(r.ClippyWarningsPerExpr),
			r.SourceDigest,
			r.AnalyzedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", r.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

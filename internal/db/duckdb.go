// Package db manages the DuckDB analytics sidecar.
//
// The viewer itself filters in memory; DuckDB only mirrors the feature
// attributes so operators can run ad-hoc SQL over the detection results.
// Every failure here degrades to "database unavailable", never a crash.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}

// FeatureRow is one mirrored attribute record.
type FeatureRow struct {
	ID   string
	Area float64
}

// LoadFeatures replaces the solar_panels table with the given attribute
// rows. Geometry stays in the store; only what SQL can usefully
// aggregate is mirrored.
func LoadFeatures(db *sql.DB, rows []FeatureRow) error {
	if db == nil {
		return fmt.Errorf("database not available")
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE OR REPLACE TABLE solar_panels (id VARCHAR, area_m2 DOUBLE)`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO solar_panels (id, area_m2) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.Area); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// HistogramBucket is one bucket of the area distribution.
type HistogramBucket struct {
	Lower float64 `json:"lower" doc:"Inclusive lower bound of the bucket (m²)"`
	Upper float64 `json:"upper" doc:"Exclusive upper bound of the bucket (m²)"`
	Count int     `json:"count" doc:"Number of features in the bucket"`
}

// Histogram buckets the mirrored areas into n equal-width buckets.
func Histogram(db *sql.DB, n int) ([]HistogramBucket, error) {
	if db == nil {
		return nil, fmt.Errorf("database not available")
	}
	if n < 1 {
		n = 10
	}

	var count int
	var maxArea sql.NullFloat64
	if err := db.QueryRow(`SELECT COUNT(*), MAX(area_m2) FROM solar_panels`).Scan(&count, &maxArea); err != nil {
		return nil, err
	}
	if count == 0 || !maxArea.Valid || maxArea.Float64 <= 0 {
		return []HistogramBucket{}, nil
	}

	width := maxArea.Float64 / float64(n)
	rows, err := db.Query(
		`SELECT LEAST(CAST(FLOOR(area_m2 / ?) AS INTEGER), ?) AS bucket, COUNT(*)
		 FROM solar_panels GROUP BY bucket ORDER BY bucket`,
		width, n-1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var bucket, c int
		if err := rows.Scan(&bucket, &c); err != nil {
			continue
		}
		counts[bucket] = c
	}

	buckets := make([]HistogramBucket, 0, n)
	for i := 0; i < n; i++ {
		buckets = append(buckets, HistogramBucket{
			Lower: float64(i) * width,
			Upper: float64(i+1) * width,
			Count: counts[i],
		})
	}
	return buckets, nil
}

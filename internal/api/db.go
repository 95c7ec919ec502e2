package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/db"
)

// DBHandler handles the DuckDB analytics endpoints.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler.
func NewDBHandler(conn *sql.DB) *DBHandler {
	return &DBHandler{db: conn}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("analytics"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("analytics"))
	huma.Get(api, "/api/v1/histogram", h.Histogram, huma.OperationTags("analytics"))
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}

	if tables == nil {
		tables = []string{}
	}

	out := &TablesOutput{}
	out.Body.Tables = tables
	return out, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"SQL query to execute"`
	}
}

// QueryOutput is the response for SQL queries.
type QueryOutput struct {
	Body struct {
		Columns []string         `json:"columns" doc:"Column names"`
		Rows    []map[string]any `json:"rows" doc:"Query results"`
		Count   int              `json:"count" doc:"Number of rows returned"`
	}
}

// Query executes a SQL query against DuckDB.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get columns", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]any)
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if results == nil {
		results = []map[string]any{}
	}

	out := &QueryOutput{}
	out.Body.Columns = columns
	out.Body.Rows = results
	out.Body.Count = len(results)
	return out, nil
}

// HistogramInput selects the bucket count.
type HistogramInput struct {
	Buckets int `query:"buckets" minimum:"1" maximum:"100" default:"10" doc:"Number of equal-width buckets"`
}

// HistogramOutput is the area distribution of the mirrored features.
type HistogramOutput struct {
	Body struct {
		Buckets []db.HistogramBucket `json:"buckets" doc:"Area distribution"`
	}
}

// Histogram buckets the mirrored panel areas.
func (h *DBHandler) Histogram(ctx context.Context, input *HistogramInput) (*HistogramOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	buckets, err := db.Histogram(h.db, input.Buckets)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to compute histogram", err)
	}

	out := &HistogramOutput{}
	out.Body.Buckets = buckets
	return out, nil
}

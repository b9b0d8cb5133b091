package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/model"
)

// ErrNotFound marks lookups for ids that were never stored.
var ErrNotFound = errors.New("valuation not found")

// HistoryRepo stores completed valuation runs for later retrieval.
type HistoryRepo struct{}

// NewHistoryRepo creates a new repository instance.
func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{}
}

// HistoryRecord is one stored valuation run. Report carries the full
// result; the scalar columns exist so history can be listed and filtered
// without unpacking JSONB.
type HistoryRecord struct {
	ID          string             `json:"id"`
	CompanyName string             `json:"company_name"`
	Industry    string             `json:"industry"`
	Stage       string             `json:"stage"`
	Revenue     float64            `json:"revenue"`
	NetIncome   float64            `json:"net_income"`
	FinalValue  float64            `json:"final_value"`
	Confidence  string             `json:"confidence"`
	Report      *engine.FullReport `json:"report,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Schema assumption (managed elsewhere, migrations):
// CREATE TABLE IF NOT EXISTS valuation_history (
//   id UUID PRIMARY KEY,
//   company_name TEXT NOT NULL,
//   industry TEXT,
//   stage TEXT,
//   revenue DOUBLE PRECISION,
//   net_income DOUBLE PRECISION,
//   final_value DOUBLE PRECISION,
//   confidence TEXT,
//   report_json JSONB,
//   created_at TIMESTAMPTZ
// );

// Save persists a valuation report and returns the generated record id.
func (r *HistoryRepo) Save(ctx context.Context, c *model.Company, report *engine.FullReport) (string, error) {
	pool := GetPool()
	if pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}
	if c == nil || report == nil {
		return "", fmt.Errorf("nil company or report")
	}

	jsonData, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO valuation_history
			(id, company_name, industry, stage, revenue, net_income, final_value, confidence, report_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	var finalValue float64
	var confidence string
	if report.Recommendation != nil {
		finalValue = report.Recommendation.FinalValue
		confidence = report.Recommendation.Confidence
	}

	_, err = pool.Exec(ctx, query,
		id,
		c.Name,
		report.Industry,
		string(report.Stage),
		c.Revenue,
		c.NetIncome,
		finalValue,
		confidence,
		jsonData,
		time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save valuation: %w", err)
	}

	return id, nil
}

// Get retrieves a single stored valuation by id, including the full report.
func (r *HistoryRepo) Get(ctx context.Context, id string) (*HistoryRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, company_name, industry, stage, revenue, net_income,
		       final_value, confidence, report_json, created_at
		FROM valuation_history WHERE id = $1
	`

	var rec HistoryRecord
	var jsonData []byte
	err := pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.CompanyName, &rec.Industry, &rec.Stage,
		&rec.Revenue, &rec.NetIncome, &rec.FinalValue, &rec.Confidence,
		&jsonData, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load valuation: %w", err)
	}

	if len(jsonData) > 0 {
		var report engine.FullReport
		if err := json.Unmarshal(jsonData, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report data: %w", err)
		}
		rec.Report = &report
	}

	return &rec, nil
}

// Recent lists the most recent valuation runs, newest first, without the
// full report payload.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, company_name, industry, stage, revenue, net_income,
		       final_value, confidence, created_at
		FROM valuation_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuations: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.CompanyName, &rec.Industry, &rec.Stage,
			&rec.Revenue, &rec.NetIncome, &rec.FinalValue, &rec.Confidence,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan valuation row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read valuation rows: %w", err)
	}

	return records, nil
}

package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"skinscan-backend/internal/models"
)

const scanColumns = `id, user_id, image_url, analysis_result, risk_level, recommendations, created_at`

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// CreateScan inserts a pending scan and returns the stored row.
func (d *DatabaseClient) CreateScan(ctx context.Context, userID, imageURL string) (*models.Scan, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO skin_scans (user_id, image_url)
		VALUES ($1, $2)
		RETURNING `+scanColumns, userID, imageURL)

	scan, err := scanRow(row)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create scan: %w", models.ErrPersistence, err)
	}
	return scan, nil
}

// ListScans returns the user's scans, newest first.
func (d *DatabaseClient) ListScans(ctx context.Context, userID string) ([]models.Scan, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+scanColumns+`
		FROM skin_scans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list scans: %w", models.ErrPersistence, err)
	}
	defer rows.Close()

	scans := make([]models.Scan, 0)
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %w", models.ErrPersistence, err)
		}
		scans = append(scans, *scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list scans: %w", models.ErrPersistence, err)
	}

	return scans, nil
}

// UpdateScanAnalysis sets the three analysis columns in one statement,
// scoped to the owner. analysis is stored as returned by the model and
// riskLevel fills the risk_level column. No matching row is ErrScanNotFound.
func (d *DatabaseClient) UpdateScanAnalysis(ctx context.Context, scanID uuid.UUID, userID string, analysis *models.Analysis, riskLevel string) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal analysis: %w", models.ErrPersistence, err)
	}

	recommendations := analysis.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	result, err := d.db.ExecContext(ctx, `
		UPDATE skin_scans
		SET analysis_result = $1, risk_level = $2, recommendations = $3
		WHERE id = $4 AND user_id = $5
	`, analysisJSON, riskLevel, pq.Array(recommendations), scanID, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to update scan: %w", models.ErrPersistence, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to update scan: %w", models.ErrPersistence, err)
	}
	if affected == 0 {
		return models.ErrScanNotFound
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.Scan, error) {
	var (
		scan            models.Scan
		analysisJSON    []byte
		riskLevel       sql.NullString
		recommendations pq.StringArray
	)
	err := row.Scan(
		&scan.ID, &scan.UserID, &scan.ImageURL,
		&analysisJSON, &riskLevel, &recommendations, &scan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(analysisJSON) > 0 {
		var a models.Analysis
		if err := json.Unmarshal(analysisJSON, &a); err != nil {
			return nil, fmt.Errorf("invalid analysis_result: %w", err)
		}
		scan.AnalysisResult = &a
	}
	if riskLevel.Valid {
		scan.RiskLevel = &riskLevel.String
	}
	if recommendations != nil {
		scan.Recommendations = []string(recommendations)
	}

	return &scan, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// DB exposes the underlying handle for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

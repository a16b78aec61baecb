package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"

	// RiskNeutral is the badge for a risk level outside the three known buckets.
	RiskNeutral = "neutral"
)

const (
	StatusPending  = "pending"
	StatusAnalyzed = "analyzed"
)

// Analysis is the structured assessment as returned by the inference model.
// RiskLevel keeps the model's own value; the risk_level column holds
// NormalizeRiskLevel of it.
type Analysis struct {
	Description     string   `json:"description"`
	RiskLevel       string   `json:"riskLevel,omitempty"`
	Recommendations []string `json:"recommendations"`
	Disclaimer      string   `json:"disclaimer"`
}

// Scan is one uploaded image and its (possibly pending) analysis.
// AnalysisResult, RiskLevel and Recommendations are either all set or all nil.
type Scan struct {
	ID              uuid.UUID
	UserID          string
	ImageURL        string
	AnalysisResult  *Analysis
	RiskLevel       *string
	Recommendations []string
	CreatedAt       time.Time
}

func (s *Scan) IsPending() bool {
	return s.AnalysisResult == nil
}

func (s *Scan) Status() string {
	if s.IsPending() {
		return StatusPending
	}
	return StatusAnalyzed
}

// RiskBadge maps a stored risk level to the badge shown in the history list.
// It returns an empty string when no risk level is set.
func RiskBadge(level *string) string {
	if level == nil || strings.TrimSpace(*level) == "" {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(*level)) {
	case RiskLow:
		return RiskLow
	case RiskModerate:
		return RiskModerate
	case RiskHigh:
		return RiskHigh
	default:
		return RiskNeutral
	}
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Token  string
}

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is a row-level change notification for the skin_scans table.
type ChangeEvent struct {
	Type   ChangeType `json:"type"`
	Table  string     `json:"table"`
	ScanID uuid.UUID  `json:"id"`
	UserID string     `json:"user_id"`
}

// NormalizeRiskLevel derives the stored risk_level from the model's value:
// trimmed and lower-cased, or "moderate" when blank. The fallback is a
// placeholder, not a detected result.
func NormalizeRiskLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return RiskModerate
	}
	return level
}

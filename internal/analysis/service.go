package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"skinscan-backend/internal/models"
)

// ScanUpdater persists an analysis onto a scan owned by userID.
type ScanUpdater interface {
	UpdateScanAnalysis(ctx context.Context, scanID uuid.UUID, userID string, analysis *models.Analysis, riskLevel string) error
}

// Service turns one (imageUrl, scanId) pair into one inference and one
// record update. Concurrent calls for the same scan are not deduplicated.
type Service struct {
	model  Model
	scans  ScanUpdater
	logger *slog.Logger
}

func NewService(model Model, scans ScanUpdater, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{model: model, scans: scans, logger: logger}
}

func (s *Service) Analyze(ctx context.Context, caller models.Principal, req models.AnalyzeRequest) (*models.Analysis, error) {
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: not authenticated", models.ErrAuthentication)
	}
	if req.ImageURL == "" || req.ScanID == uuid.Nil {
		return nil, fmt.Errorf("%w: imageUrl and scanId are required", models.ErrValidation)
	}

	log := s.logger.With("scan_id", req.ScanID.String(), "user_id", caller.UserID)
	log.Info("analyzing skin image")

	content, err := s.model.Complete(ctx, req.ImageURL)
	if err != nil {
		log.Error("inference failed", "error", err)
		return nil, err
	}

	analysis, err := ParseAnalysis(content)
	if err != nil {
		log.Error("inference output rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", models.ErrInference, err)
	}

	riskLevel := models.NormalizeRiskLevel(analysis.RiskLevel)
	if err := s.scans.UpdateScanAnalysis(ctx, req.ScanID, caller.UserID, analysis, riskLevel); err != nil {
		log.Error("failed to update scan", "error", err)
		return nil, err
	}

	log.Info("analysis complete", "risk_level", riskLevel)
	return analysis, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"skinscan-backend/internal/models"
)

type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}

type ScanStore interface {
	CreateScan(ctx context.Context, userID, imageURL string) (*models.Scan, error)
	ListScans(ctx context.Context, userID string) ([]models.Scan, error)
	UpdateScanAnalysis(ctx context.Context, scanID uuid.UUID, userID string, analysis *models.Analysis, riskLevel string) error
}

// Analyzer invokes the analyze-skin handler, in-process or remote.
type Analyzer interface {
	Analyze(ctx context.Context, caller models.Principal, req models.AnalyzeRequest) (*models.Analysis, error)
}

type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
	// Extension is used when the filename has none, e.g. a sniffed type.
	Extension string
}

type UploadResult struct {
	Scan     *models.Scan
	Analysis *models.Analysis
}

type ScanServiceOptions struct {
	// CleanupOrphanedUploads deletes the stored image when the pending
	// record cannot be created. Off by default: the blob is left behind.
	CleanupOrphanedUploads bool
	Now                    func() time.Time
	Logger                 *slog.Logger
}

type ScanService struct {
	objects  ObjectStore
	scans    ScanStore
	analyzer Analyzer
	cleanup  bool
	now      func() time.Time
	logger   *slog.Logger
}

func NewScanService(objects ObjectStore, scans ScanStore, analyzer Analyzer, opts ScanServiceOptions) *ScanService {
	s := &ScanService{
		objects:  objects,
		scans:    scans,
		analyzer: analyzer,
		cleanup:  opts.CleanupOrphanedUploads,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// UploadAndAnalyze stores the image, creates a pending scan and invokes the
// analysis, strictly in that order. The first failing step aborts the flow;
// completed steps are not rolled back.
func (s *ScanService) UploadAndAnalyze(ctx context.Context, caller models.Principal, in UploadInput) (*UploadResult, error) {
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, fmt.Errorf("%w: please select an image file, got %q", models.ErrValidation, in.ContentType)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrValidation)
	}
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: not authenticated", models.ErrAuthentication)
	}

	path := StoragePath(caller.UserID, s.now(), in.Filename, in.Extension)
	log := s.logger.With("user_id", caller.UserID, "path", path)

	if err := s.objects.Upload(ctx, path, in.Data, in.ContentType); err != nil {
		log.Error("image upload failed", "error", err)
		return nil, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	imageURL := s.objects.PublicURL(path)

	scan, err := s.scans.CreateScan(ctx, caller.UserID, imageURL)
	if err != nil {
		log.Error("failed to create scan", "error", err)
		s.removeOrphan(ctx, log, path)
		return nil, err
	}
	log = log.With("scan_id", scan.ID.String())
	log.Info("image uploaded, starting analysis")

	analysis, err := s.analyzer.Analyze(ctx, caller, models.AnalyzeRequest{
		ImageURL: imageURL,
		ScanID:   scan.ID,
	})
	if err != nil {
		log.Error("analysis failed, scan left pending", "error", err)
		return nil, err
	}

	return &UploadResult{Scan: scan, Analysis: analysis}, nil
}

func (s *ScanService) removeOrphan(ctx context.Context, log *slog.Logger, path string) {
	if !s.cleanup {
		return
	}
	if err := s.objects.Delete(ctx, path); err != nil {
		log.Warn("failed to delete orphaned upload", "error", err)
	}
}

// StoragePath builds "{userID}/{unixMillis}.{ext}".
func StoragePath(userID string, at time.Time, filename, fallbackExt string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = strings.TrimPrefix(fallbackExt, ".")
	}
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d.%s", userID, at.UnixMilli(), strings.ToLower(ext))
}

package models

import "time"

type AnalyzeResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
}

type ScanResponse struct {
	ID              string    `json:"id"`
	ImageURL        string    `json:"image_url"`
	Status          string    `json:"status"`
	AnalysisResult  *Analysis `json:"analysis_result"`
	RiskLevel       *string   `json:"risk_level"`
	RiskBadge       string    `json:"risk_badge,omitempty"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

type ScanListResponse struct {
	Scans []ScanResponse `json:"scans"`
}

type UploadResponse struct {
	Scan     ScanResponse `json:"scan"`
	Analysis *Analysis    `json:"analysis,omitempty"`
}

type SessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewScanResponse(s *Scan) ScanResponse {
	return ScanResponse{
		ID:              s.ID.String(),
		ImageURL:        s.ImageURL,
		Status:          s.Status(),
		AnalysisResult:  s.AnalysisResult,
		RiskLevel:       s.RiskLevel,
		RiskBadge:       RiskBadge(s.RiskLevel),
		Recommendations: s.Recommendations,
		CreatedAt:       s.CreatedAt,
	}
}

func NewScanListResponse(scans []Scan) ScanListResponse {
	out := make([]ScanResponse, len(scans))
	for i := range scans {
		out[i] = NewScanResponse(&scans[i])
	}
	return ScanListResponse{Scans: out}
}

package models

import "github.com/google/uuid"

// AnalyzeRequest is the body of the analysis invocation interface.
type AnalyzeRequest struct {
	ImageURL string    `json:"imageUrl" binding:"required"`
	ScanID   uuid.UUID `json:"scanId" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

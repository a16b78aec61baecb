package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"skinscan-backend/internal/models"
)

// ParseError reports model output that does not match the analysis schema.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type rawAnalysis struct {
	Description     *string         `json:"description"`
	RiskLevel       json.RawMessage `json:"riskLevel"`
	Recommendations []string        `json:"recommendations"`
	Disclaimer      *string         `json:"disclaimer"`
}

// ParseAnalysis decodes the model's message content. Description,
// recommendations and disclaimer are optional but must have the right type.
// A string riskLevel is kept verbatim; any other value is dropped.
func ParseAnalysis(content string) (*models.Analysis, error) {
	trimmed := bytes.TrimSpace([]byte(content))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Content: content, Err: fmt.Errorf("expected a JSON object")}
	}

	var raw rawAnalysis
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ParseError{Content: content, Err: err}
	}

	a := &models.Analysis{
		RiskLevel:       rawRiskLevel(raw.RiskLevel),
		Recommendations: raw.Recommendations,
	}
	if raw.Description != nil {
		a.Description = *raw.Description
	}
	if raw.Disclaimer != nil {
		a.Disclaimer = *raw.Disclaimer
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	return a, nil
}

func rawRiskLevel(raw json.RawMessage) string {
	var level string
	if len(raw) == 0 || json.Unmarshal(raw, &level) != nil {
		return ""
	}
	return level
}

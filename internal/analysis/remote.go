package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skinscan-backend/internal/models"
)

// RemoteInvoker calls a separately deployed analyze-skin handler, forwarding
// the caller's session token.
type RemoteInvoker struct {
	url        string
	httpClient *http.Client
}

func NewRemoteInvoker(url string) *RemoteInvoker {
	return &RemoteInvoker{
		url: url,
		httpClient: &http.Client{
			Timeout: 150 * time.Second,
		},
	}
}

func (r *RemoteInvoker) Analyze(ctx context.Context, caller models.Principal, req models.AnalyzeRequest) (*models.Analysis, error) {
	if caller.Token == "" {
		return nil, fmt.Errorf("%w: missing session token", models.ErrAuthentication)
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+caller.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", models.ErrInference, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", models.ErrInference, err)
	}

	if resp.StatusCode != http.StatusOK {
		kind := models.ErrInference
		if resp.StatusCode == http.StatusUnauthorized {
			kind = models.ErrAuthentication
		}
		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: analyze-skin failed: status %d: %s", kind, resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("%w: analyze-skin failed: status %d, body: %s", kind, resp.StatusCode, string(body))
	}

	var result models.AnalyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", models.ErrInference, err)
	}
	if !result.Success || result.Analysis == nil {
		return nil, fmt.Errorf("%w: analyze-skin returned no analysis", models.ErrInference)
	}

	return result.Analysis, nil
}

// Package analysis calls the external compliance analysis function.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no function URL was given.
var ErrNotConfigured = errors.New("analysis function URL is not configured")

type Request struct {
	AnalysisId  uuid.UUID `json:"analysis_id"`
	TenantId    uuid.UUID `json:"tenant_id"`
	DocumentId  uuid.UUID `json:"document_id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	DocumentURL string    `json:"document_url"`
}

type Result struct {
	ResultURL string `json:"result_url"`
	Summary   string `json:"summary,omitempty"`
}

type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

type HTTPAnalyzer struct {
	FunctionURL string
	Client      *http.Client
}

var _ Analyzer = &HTTPAnalyzer{}

func NewHTTPAnalyzer(functionURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		FunctionURL: functionURL,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if a.FunctionURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.FunctionURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call analysis function: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analysis function returned %d: %s", resp.StatusCode, snippet)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	if result.ResultURL == "" {
		return nil, fmt.Errorf("analysis function returned no result_url")
	}
	return &result, nil
}

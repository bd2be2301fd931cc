package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"packwright/internal/config"
	"packwright/internal/services"
)

const userAgent = "Packwright/0.1.0"

// Finding is one ranked result from the research backend.
type Finding struct {
	Term  string  `json:"term"`
	Note  string  `json:"note,omitempty"`
	Score float64 `json:"score"`
}

// Provider is the external search capability analysis tasks draw on. Only
// analysis tasks call it; the run controller never does.
type Provider interface {
	Search(ctx context.Context, query string) ([]Finding, error)
}

// Terms extracts the distinct search terms from a set of findings, keeping
// the order the backend ranked them in.
func Terms(findings []Finding) []string {
	seen := make(map[string]struct{}, len(findings))
	var terms []string
	for _, finding := range findings {
		term := strings.TrimSpace(finding.Term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// NewProvider builds a research provider from config. Without an endpoint a
// noop provider is returned and research-backed tasks degrade gracefully.
func NewProvider(cfg *config.Config) Provider {
	endpoint := strings.TrimSpace(cfg.Research.Endpoint)
	if endpoint == "" {
		return noopProvider{}
	}

	timeout := time.Duration(cfg.Research.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpProvider struct {
	endpoint string
	client   *http.Client
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Findings []Finding `json:"findings"`
}

func (p *httpProvider) Search(ctx context.Context, query string) ([]Finding, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "research", "search", "query is empty", nil)
	}

	body, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "research", "search", "research endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, services.Wrap(services.ErrTransient, "research", "search",
			fmt.Sprintf("research endpoint returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, services.Wrap(services.ErrExternal, "research", "search",
			fmt.Sprintf("research endpoint rejected query (%d)", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "research", "search", "read search response", err)
	}
	var decoded searchResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternal, "research", "search", "decode search response", err)
	}
	return decoded.Findings, nil
}

type noopProvider struct{}

func (noopProvider) Search(context.Context, string) ([]Finding, error) {
	return nil, nil
}

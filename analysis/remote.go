package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"civicecho-be/models"
)

// DefaultLanguageURL is the Google Cloud Natural Language annotateText endpoint.
const DefaultLanguageURL = "https://language.googleapis.com/v1/documents:annotateText"

// LanguageClient calls the Cloud Natural Language REST API for sentiment and entities.
type LanguageClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewLanguageClient returns a client for endpoint (DefaultLanguageURL when empty).
func NewLanguageClient(endpoint, apiKey string, httpClient *http.Client) *LanguageClient {
	if endpoint == "" {
		endpoint = DefaultLanguageURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &LanguageClient{endpoint: endpoint, apiKey: apiKey, http: httpClient}
}

type annotateRequest struct {
	Document struct {
		Type     string `json:"type"`
		Content  string `json:"content"`
		Language string `json:"language"`
	} `json:"document"`
	Features struct {
		ExtractEntities          bool `json:"extractEntities"`
		ExtractDocumentSentiment bool `json:"extractDocumentSentiment"`
	} `json:"features"`
	EncodingType string `json:"encodingType"`
}

type annotateResponse struct {
	DocumentSentiment struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
	Entities []struct {
		Name string `json:"name"`
	} `json:"entities"`
}

// Analyze implements Analyzer.
func (c *LanguageClient) Analyze(ctx context.Context, text string) (*Signals, error) {
	var body annotateRequest
	body.Document.Type = "PLAIN_TEXT"
	body.Document.Content = text
	body.Document.Language = "en"
	body.Features.ExtractEntities = true
	body.Features.ExtractDocumentSentiment = true
	body.EncodingType = "UTF8"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode annotate request: %w", err)
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("annotate text: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode annotate response: %w", err)
	}

	signals := &Signals{
		Sentiment: models.Sentiment{
			Score:     out.DocumentSentiment.Score,
			Magnitude: out.DocumentSentiment.Magnitude,
		},
		Entities: make([]string, 0, len(out.Entities)),
	}
	for _, e := range out.Entities {
		signals.Entities = append(signals.Entities, e.Name)
	}
	return signals, nil
}

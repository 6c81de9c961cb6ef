// Package extraction turns a user question plus retrieved regulatory
// context into candidate template field values via an OpenAI-compatible
// chat completions endpoint.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"coreport/internal/retrieval"
	"coreport/internal/template"
	"coreport/pkg/domainerrors"
)

// Extraction is the structured output of a single extraction call.
type Extraction struct {
	Candidates       []template.FieldCandidate
	OverallReasoning string
	Confidence       float64
	Warnings         []string
}

// Extractor is the boundary the query pipeline depends on.
type Extractor interface {
	Extract(ctx context.Context, question, scenario string, docs []retrieval.Document) (*Extraction, error)
}

// Client calls an OpenAI-compatible chat completions API in JSON mode.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractedField mirrors the JSON shape the model is instructed to emit.
type extractedField struct {
	Row             string   `json:"row"`
	FieldName       string   `json:"field_name"`
	Value           *float64 `json:"value"`
	Currency        string   `json:"currency"`
	SourceReference string   `json:"source_reference"`
	Reasoning       string   `json:"reasoning"`
}

type extractedPayload struct {
	Fields           []extractedField `json:"fields"`
	OverallReasoning string           `json:"overall_reasoning"`
	Confidence       float64          `json:"confidence"`
	Warnings         []string         `json:"warnings"`
}

func (c *Client) Extract(ctx context.Context, question, scenario string, docs []retrieval.Document) (*Extraction, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(question, scenario, docs)},
		},
		Temperature:    0.1,
		MaxTokens:      2000,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeUnavailable, "extraction service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeUnavailable, "read extraction response", err)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeUnavailable, "decode extraction response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("extraction service returned %d", resp.StatusCode)
		if chat.Error != nil && chat.Error.Message != "" {
			msg = chat.Error.Message
		}
		return nil, domainerrors.New(domainerrors.CodeUnavailable, msg)
	}
	if len(chat.Choices) == 0 {
		return nil, domainerrors.New(domainerrors.CodeUnavailable, "extraction response had no choices")
	}

	var parsed extractedPayload
	content := stripCodeFence(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		c.logger.WarnContext(ctx, "extraction output was not valid JSON", "error", err)
		return &Extraction{OverallReasoning: "Extraction output could not be parsed.", Warnings: []string{"model output was not valid JSON"}}, nil
	}

	out := &Extraction{
		OverallReasoning: parsed.OverallReasoning,
		Confidence:       parsed.Confidence,
		Warnings:         parsed.Warnings,
	}
	for _, f := range parsed.Fields {
		out.Candidates = append(out.Candidates, template.FieldCandidate{
			RowID:           normalizeRowID(f.Row),
			Value:           f.Value,
			Currency:        f.Currency,
			SourceReference: f.SourceReference,
			Reasoning:       f.Reasoning,
			RelevanceScore:  relevanceFor(f.SourceReference, docs),
		})
	}
	return out, nil
}

// normalizeRowID maps the short form the model emits ("010") onto the
// template row identifier ("row_010"). Already-prefixed ids pass through.
func normalizeRowID(row string) string {
	row = strings.TrimSpace(row)
	if strings.HasPrefix(row, "row_") {
		return row
	}
	return "row_" + row
}

// relevanceFor attributes a retrieval score to a cited source. An exact
// reference match wins; otherwise the first document whose reference
// contains (or is contained by) the citation is used.
func relevanceFor(sourceRef string, docs []retrieval.Document) float64 {
	ref := strings.TrimSpace(sourceRef)
	if ref == "" {
		return 0
	}
	for _, doc := range docs {
		if doc.SourceReference == ref {
			return doc.RelevanceScore
		}
	}
	lower := strings.ToLower(ref)
	for _, doc := range docs {
		dl := strings.ToLower(doc.SourceReference)
		if strings.Contains(dl, lower) || strings.Contains(lower, dl) {
			return doc.RelevanceScore
		}
	}
	return 0
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

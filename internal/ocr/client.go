package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"casedesk/internal/config"
	"casedesk/internal/domain"
	"casedesk/internal/port"
)

// Client implements port.TextExtractor against the hosted OCR service's
// extract endpoint.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient creates an OCR client from config.
func NewClient(cfg *config.OCRConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.Endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg *config.OCRConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	FileData     string `json:"file_data"` // base64
	ContentType  string `json:"content_type"`
	DocumentKind string `json:"document_kind,omitempty"`
	PersonRole   string `json:"person_role,omitempty"`
}

type extractResponse struct {
	Confidence   float64                    `json:"confidence"`
	DocumentKind string                     `json:"document_kind"`
	Fields       map[string]json.RawMessage `json:"fields"`
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if len(input.FileBytes) == 0 {
		return nil, &ExtractionError{Kind: KindEmptyContent, Err: fmt.Errorf("no file content")}
	}
	if !domain.ExtractableContentTypes[input.ContentType] {
		return nil, &ExtractionError{Kind: KindUnsupportedFile, Err: fmt.Errorf("content type %q", input.ContentType)}
	}

	kind := input.DocumentKind
	if kind == domain.KindUnknown {
		kind = ""
	}
	reqBody, err := json.Marshal(extractRequest{
		FileData:     base64.StdEncoding.EncodeToString(input.FileBytes),
		ContentType:  input.ContentType,
		DocumentKind: string(kind),
		PersonRole:   string(input.PersonRole),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ExtractionError{Kind: KindProviderError, Err: fmt.Errorf("calling OCR service: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExtractionError{Kind: KindProviderError, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, string(respBody))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, NewRateLimitError(baseErr, ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
		case resp.StatusCode == http.StatusUnsupportedMediaType:
			return nil, &ExtractionError{Kind: KindUnsupportedFile, Err: baseErr}
		case resp.StatusCode == http.StatusUnprocessableEntity:
			return nil, &ExtractionError{Kind: KindEmptyContent, Err: baseErr}
		default:
			return nil, &ExtractionError{Kind: KindProviderError, Err: baseErr}
		}
	}

	return parseResponse(respBody)
}

func parseResponse(body []byte) (*port.ExtractOutput, error) {
	var er extractResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, &ExtractionError{Kind: KindProviderError, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(er.Fields) == 0 {
		return nil, &ExtractionError{Kind: KindEmptyContent, Err: fmt.Errorf("extraction returned no fields")}
	}

	fields := make(map[string]string, len(er.Fields))
	for k, raw := range er.Fields {
		v := coerceString(raw)
		if v != "" {
			fields[k] = v
		}
	}

	kind := domain.DocumentKind(er.DocumentKind)
	if kind == "" || !domain.ValidDocumentKinds[kind] {
		kind = domain.KindUnknown
	}

	return &port.ExtractOutput{
		Confidence:   er.Confidence,
		DocumentKind: kind,
		Fields:       fields,
	}, nil
}

// coerceString flattens a JSON scalar into the string form the case record
// stores. Non-scalar values are dropped.
func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

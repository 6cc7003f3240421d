package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrDetectorUnavailable is returned when no text-detection endpoint is configured.
var ErrDetectorUnavailable = errors.New("text detection is not configured")

// TextDetector turns an image into tokens in scan order.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]Token, error)
}

// VisionClient calls a Google Vision compatible images:annotate endpoint.
type VisionClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewVisionClient creates a VisionClient. endpoint is the full annotate URL.
func NewVisionClient(endpoint, apiKey string, httpClient *http.Client) *VisionClient {
	return &VisionClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// DefaultVisionHTTPClient returns an http.Client with the given timeout.
func DefaultVisionHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// requestURL adds the API key as an escaped query parameter, keeping any
// query the endpoint already carries.
func (c *VisionClient) requestURL() string {
	if c.apiKey == "" {
		return c.endpoint
	}
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + url.Values{"key": {c.apiKey}}.Encode()
}

type annotateRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type annotateImageRequest struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// DetectText sends the image for TEXT_DETECTION and returns the word-level
// annotations. The first annotation holds the whole page text and is skipped.
func (c *VisionClient) DetectText(ctx context.Context, image []byte) ([]Token, error) {
	if c.endpoint == "" {
		return nil, ErrDetectorUnavailable
	}

	body, err := json.Marshal(annotateRequest{
		Requests: []annotateImageRequest{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call text detection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("text detection unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Responses) == 0 {
		return []Token{}, nil
	}

	r := out.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("text detection error %d: %s", r.Error.Code, r.Error.Message)
	}

	tokens := make([]Token, 0, len(r.TextAnnotations))
	for i, a := range r.TextAnnotations {
		if i == 0 {
			continue
		}
		tokens = append(tokens, Token{Text: a.Description, Position: i - 1})
	}
	return tokens, nil
}

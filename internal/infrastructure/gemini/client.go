package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricemarkup/backend/internal/domain"
)

// extractionPrompt instructs the model to emit the shared items schema.
const extractionPrompt = `Extract all distinct product names, their brands or variants, and their unit prices.
Rules:
1. Extract 'name' (primary identity).
2. Extract 'brand' (manufacturer or variant).
3. Extract 'originalPrice' as a clean number.
4. Identify 'currency'.
5. Return ONLY a JSON object with an array 'items'.`

// Fenced or bare JSON object inside a grounded-search answer. The grounded
// model cannot be forced into JSON response mode, so the payload is fished
// out of free text.
var (
	fencedJSONRegex = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	bareJSONRegex   = regexp.MustCompile(`(?s)\{.*\}`)
)

// Client handles communication with the Gemini generateContent API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	flashModel  string
	proModel    string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new extraction client. flashModel serves the image
// and messy-text paths, proModel the search-grounded URL path.
func NewClient(apiKey, baseURL, flashModel, proModel string) *Client {
	// Free-tier quota is on the order of 15 requests per minute; one
	// user-triggered import at a time never needs more.
	limiter := rate.NewLimiter(rate.Limit(0.25), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		flashModel:  flashModel,
		proModel:    proModel,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Request/response wire types for the generateContent endpoint.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content           content            `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	Web *webSource `json:"web,omitempty"`
}

type webSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// itemsPayload is the JSON object the prompts ask the model to return.
type itemsPayload struct {
	Items []domain.RawProductRecord `json:"items"`
}

// ExtractFromImage runs vision-based extraction over a photographed price
// sheet.
func (c *Client) ExtractFromImage(ctx context.Context, imageData []byte, mimeType string) (*domain.ExtractionResult, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
				{Text: extractionPrompt},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.generate(ctx, c.flashModel, &req)
	if err != nil {
		return nil, err
	}

	items, err := parseItemsPayload(candidateText(resp))
	if err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{Items: items}, nil
}

// CleanMessyData asks the model to structure a free-text block with
// embedded prices.
func (c *Client) CleanMessyData(ctx context.Context, textBlock string) (*domain.ExtractionResult, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: fmt.Sprintf("Clean this messy data:\n%s\n\n%s", textBlock, extractionPrompt)},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.generate(ctx, c.flashModel, &req)
	if err != nil {
		return nil, err
	}

	items, err := parseItemsPayload(candidateText(resp))
	if err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{Items: items}, nil
}

// ExtractFromURL fetches and extracts a web page through the
// search-grounded model. Grounding citations come back as Sources.
func (c *Client) ExtractFromURL(ctx context.Context, url string) (*domain.ExtractionResult, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: fmt.Sprintf("Extract prices from this URL: %s\n\n%s", url, extractionPrompt)},
			},
		}},
		Tools: []tool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := c.generate(ctx, c.proModel, &req)
	if err != nil {
		return nil, err
	}

	text := candidateText(resp)
	items, err := parseItemsPayload(extractJSONBlock(text))
	if err != nil {
		return nil, err
	}

	return &domain.ExtractionResult{
		Items:   items,
		Sources: groundingSources(resp),
	}, nil
}

// generate executes one generateContent call with rate limiting and up to
// three attempts for transient failures.
func (c *Client) generate(ctx context.Context, model string, payload *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL, body)
		if err != nil {
			if c.debug {
				log.Printf("[GEMINI] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			sleepWithContext(ctx, exponentialBackoff(attempt))
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[GEMINI] API error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(respBody))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrExtractionFailure, resp.StatusCode)
			// Client-side errors other than rate limiting will not heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			sleepWithContext(ctx, exponentialBackoff(attempt))
			continue
		}

		var generated generateResponse
		if err := json.Unmarshal(respBody, &generated); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}

		if c.debug {
			log.Printf("[GEMINI] model %s answered with %d candidate(s)", model, len(generated.Candidates))
		}
		return &generated, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP POST with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PriceMarkup/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the delay before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return 500 * time.Millisecond << (attempt - 1)
}

// sleepWithContext waits out the backoff unless the context ends first.
func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// candidateText flattens the first candidate's text parts.
func candidateText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for _, p := range resp.Candidates[0].Content.Parts {
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// parseItemsPayload decodes the items schema out of a model answer.
func parseItemsPayload(text string) ([]domain.RawProductRecord, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty model answer", domain.ErrMalformedResponse)
	}

	var payload itemsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return payload.Items, nil
}

// extractJSONBlock pulls the JSON object out of a free-text answer,
// preferring a ```json fence over a bare object match.
func extractJSONBlock(text string) string {
	if m := fencedJSONRegex.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return bareJSONRegex.FindString(text)
}

// groundingSources maps grounding chunks to citation records, skipping
// chunks without a web URI.
func groundingSources(resp *generateResponse) []domain.GroundingSource {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []domain.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, domain.GroundingSource{URI: chunk.Web.URI, Title: title})
	}
	return sources
}

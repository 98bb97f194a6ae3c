package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHostedBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultVertexLocation   = "global"
	defaultHTTPTimeout      = 120 * time.Second
	defaultRetryMaxAttempts = 3
	defaultRetryBaseDelay   = 1 * time.Second
	defaultRetryMaxDelay    = 4 * time.Second
)

// Generation settings pinned for reproducible transcription output.
const (
	generationTemperature = 0.0
	generationTopP        = 0.0
	generationSeed        = 42
)

// Config captures the invocation context resolved by the caller. The client
// itself never touches the environment; hosted-API versus Vertex routing is
// decided entirely by these fields.
type Config struct {
	// Vertex selects the enterprise platform endpoint and bearer auth.
	Vertex bool
	// APIKey authenticates hosted-API requests.
	APIKey string
	// AccessToken authenticates Vertex requests.
	AccessToken string
	// Project and Location scope Vertex requests.
	Project  string
	Location string
	// BaseURL overrides the computed endpoint root (used by tests).
	BaseURL string
	// Model is the default model identifier.
	Model string
	// TimeoutSeconds bounds each HTTP attempt.
	TimeoutSeconds int
}

// Client issues generateContent requests against the Gemini REST surface.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt budget (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client from the resolved invocation context.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Location == "" {
		cfg.Location = defaultVertexLocation
	}
	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryMaxAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Request describes one transcription invocation.
type Request struct {
	// VideoURI is the already-resolved video reference.
	VideoURI string
	// Prompt is the full task instruction text.
	Prompt string
	// Model overrides the configured default when non-empty.
	Model string
	// StartOffset and EndOffset bound the processed video portion.
	StartOffset time.Duration
	EndOffset   time.Duration
	// FPS is the frame sampling rate; zero keeps the backend default.
	FPS float64
}

// InvocationError reports a failed model invocation. Transient failures were
// retried up to the attempt budget before surfacing; non-transient failures
// surface after a single attempt.
type InvocationError struct {
	Transient  bool
	Attempts   int
	StatusCode int
	Err        error
}

func (e *InvocationError) Error() string {
	kind := "non-transient"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("model invocation: %s failure after %d attempt(s) (http %d): %v", kind, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model invocation: %s failure after %d attempt(s): %v", kind, e.Attempts, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

type httpStatusError struct {
	StatusCode int
	Status     string
	Message    string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini request: http %d %s: %s", e.StatusCode, e.Status, strings.TrimSpace(e.Message))
	}
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Message))
}

type blockedError struct {
	Reason string
}

func (e *blockedError) Error() string {
	return fmt.Sprintf("gemini request: blocked by content policy (%s)", e.Reason)
}

// GenerateTranscript sends the video and prompt to the model and returns the
// raw text reply. The retry state machine allows up to three attempts with
// 1s/2s/4s backoff; only transient failures are retried, and the context is
// checked before every sleep and attempt so cancellation never starts a new
// attempt.
func (c *Client) GenerateTranscript(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.VideoURI) == "" {
		return "", errors.New("gemini generate: video uri required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("gemini generate: prompt required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	if model == "" {
		return "", errors.New("gemini generate: model required")
	}
	if err := c.checkAuth(); err != nil {
		return "", err
	}

	payload := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{
					FileData:      &fileData{FileURI: req.VideoURI, MimeType: "video/*"},
					VideoMetadata: buildVideoMetadata(req),
				},
				{Text: strings.TrimSpace(req.Prompt)},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature: generationTemperature,
			TopP:        generationTopP,
			Seed:        generationSeed,
		},
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.sendOnce(ctx, model, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		transient, delay := classify(err)
		if !transient {
			return "", &InvocationError{Transient: false, Attempts: attempt, StatusCode: statusCode(err), Err: err}
		}
		if attempt == attempts {
			break
		}
		if delay <= 0 {
			delay = c.backoffDelay(attempt)
		}
		if err := c.sleep(ctx, c.capDelay(delay)); err != nil {
			return "", err
		}
	}

	return "", &InvocationError{Transient: true, Attempts: attempts, StatusCode: statusCode(lastErr), Err: lastErr}
}

func (c *Client) checkAuth() error {
	if c.cfg.Vertex {
		if c.cfg.AccessToken == "" {
			return errors.New("gemini generate: access token required for vertex mode")
		}
		if c.cfg.Project == "" && c.cfg.BaseURL == "" {
			return errors.New("gemini generate: project required for vertex mode")
		}
		return nil
	}
	if c.cfg.APIKey == "" {
		return errors.New("gemini generate: api key required")
	}
	return nil
}

func buildVideoMetadata(req Request) *videoMetadata {
	if req.StartOffset <= 0 && req.EndOffset <= 0 && req.FPS == 0 {
		return nil
	}
	meta := &videoMetadata{FPS: req.FPS}
	if req.StartOffset > 0 {
		meta.StartOffset = offsetString(req.StartOffset)
	}
	if req.EndOffset > 0 {
		meta.EndOffset = offsetString(req.EndOffset)
	}
	return meta
}

func offsetString(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}

func (c *Client) endpoint(model string) string {
	base := c.cfg.BaseURL
	if base == "" {
		if c.cfg.Vertex {
			host := fmt.Sprintf("https://%s-aiplatform.googleapis.com", c.cfg.Location)
			if c.cfg.Location == "global" {
				host = "https://aiplatform.googleapis.com"
			}
			base = fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google", host, c.cfg.Project, c.cfg.Location)
		} else {
			base = defaultHostedBaseURL
		}
	}
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(base, "/"), url.PathEscape(model))
}

func (c *Client) sendOnce(ctx context.Context, model string, payload generateContentRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(model), bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Vertex {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	} else {
		httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini request: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &httpStatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var apiErr apiErrorEnvelope
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			statusErr.Status = apiErr.Error.Status
			statusErr.Message = apiErr.Error.Message
		}
		if retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			statusErr.RetryAfter = retryAfter
		}
		return "", statusErr
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("gemini request: decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", &blockedError{Reason: decoded.PromptFeedback.BlockReason}
	}
	if len(decoded.Candidates) == 0 {
		return "", errors.New("gemini request: empty candidates")
	}

	candidate := decoded.Candidates[0]
	if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "PROHIBITED_CONTENT" {
		return "", &blockedError{Reason: candidate.FinishReason}
	}
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("gemini request: empty content (finish_reason=%q)", candidate.FinishReason)
	}
	return text.String(), nil
}

// classify decides whether an attempt failure may be retried, and suggests a
// delay when the server provided one.
func classify(err error) (bool, time.Duration) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return true, statusErr.RetryAfter
		case statusErr.StatusCode == http.StatusBadRequest &&
			strings.Contains(statusErr.Message, "try again"):
			// The backend reports a not-yet-ingested video as a 400 whose
			// message invites a retry.
			return true, statusErr.RetryAfter
		default:
			return false, 0
		}
	}

	var blocked *blockedError
	if errors.As(err, &blocked) {
		return false, 0
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true, 0
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true, 0
	}
	return false, 0
}

func statusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// backoffDelay doubles the base delay per completed attempt: 1s, 2s, 4s.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if c.retryMaxDelay > 0 && delay >= c.retryMaxDelay {
			return c.retryMaxDelay
		}
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

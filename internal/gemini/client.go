// Package gemini talks to the Gemini generateContent API to read receipts and
// interpret assignment commands.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second

	// Operation names, used in errors and metrics.
	OpScan    = "scan"
	OpCommand = "command"

	maxResponseBodySize = 4 << 20
)

var ErrNotConfigured = errors.New("gemini api key not configured")

// ExternalServiceError reports a failed or unusable answer from Gemini.
type ExternalServiceError struct {
	Op         string
	StatusCode int    // HTTP status, 0 when the request never completed
	Status     string // API status such as RESOURCE_EXHAUSTED
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gemini %s failed", e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d", e.StatusCode)
		if e.Status != "" {
			fmt.Fprintf(&b, " %s", e.Status)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// RateLimited reports whether the call was refused for quota reasons.
func (e *ExternalServiceError) RateLimited() bool {
	return e.StatusCode == fasthttp.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// IsRateLimited reports whether err is a rate-limited ExternalServiceError.
func IsRateLimited(err error) bool {
	var extErr *ExternalServiceError
	return errors.As(err, &extErr) && extErr.RateLimited()
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// ReplyLanguage is the language of command confirmations, e.g. "English".
	ReplyLanguage string
}

// Client calls Gemini. It holds the API key; callers never see it.
type Client struct {
	cfg  Config
	http *fasthttp.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ReplyLanguage == "" {
		cfg.ReplyLanguage = "English"
	}

	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			Name:                "receiptsplit",
			MaxResponseBodySize: maxResponseBodySize,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
	Temperature      float64        `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate sends one generateContent request and returns the text of the
// first candidate. No retries are attempted.
func (c *Client) generate(ctx context.Context, op string, body generateRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &ExternalServiceError{Op: op, Err: ErrNotConfigured}
	}
	if err := ctx.Err(); err != nil {
		return "", &ExternalServiceError{Op: op, Err: err}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", op, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.SetBody(payload)

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return "", &ExternalServiceError{Op: op, Err: err}
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		extErr := &ExternalServiceError{Op: op, StatusCode: status}
		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil {
			extErr.Status = apiErr.Error.Status
			extErr.Message = apiErr.Error.Message
		}
		return "", extErr
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &ExternalServiceError{Op: op, StatusCode: fasthttp.StatusOK, Message: "undecodable response", Err: err}
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", &ExternalServiceError{Op: op, StatusCode: fasthttp.StatusOK, Message: "prompt blocked: " + out.PromptFeedback.BlockReason}
	}
	if len(out.Candidates) == 0 {
		return "", &ExternalServiceError{Op: op, StatusCode: fasthttp.StatusOK, Message: "no candidates returned"}
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &ExternalServiceError{Op: op, StatusCode: fasthttp.StatusOK, Message: "empty answer"}
	}
	return text.String(), nil
}

// extractJSON returns the outermost JSON object in text, dropping markdown
// fences or chatter the model may add around it.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", errors.New("no JSON object in answer")
	}
	return text[start : end+1], nil
}

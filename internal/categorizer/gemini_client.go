package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

const minRetryInterval = 100 * time.Millisecond

// GeminiClient talks to the Gemini API. Every call waits on a shared limiter
// so consecutive requests are spaced by the configured cool-down, and
// transient failures are retried.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	cooldown    time.Duration
	maxRetries  uint64
	limiter     *rate.Limiter
	logger      logging.Logger
}

// NewGeminiClient creates a client from the AI configuration section.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig, maxRetries uint64, logger logging.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	cooldown := cfg.Cooldown()
	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout(),
		cooldown:    cooldown,
		maxRetries:  maxRetries,
		limiter:     rate.NewLimiter(rate.Every(cooldown), 1),
		logger:      logger.WithField(logging.FieldComponent, "gemini"),
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Model returns the model name used for requests.
func (c *GeminiClient) Model() string {
	return c.model
}

// ExtractDocument sends a document with its extraction prompt and returns the
// JSON text of the answer together with token usage.
func (c *GeminiClient) ExtractDocument(ctx context.Context, prompt, mimeType string, data []byte) (string, models.TokenUsage, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = "application/json"

	resp, err := c.generate(ctx, model, genai.Text(prompt), genai.Blob{MIMEType: mimeType, Data: data})
	usage := c.usage(resp)
	if err != nil {
		return "", usage, err
	}
	text, err := responseText(resp)
	return text, usage, err
}

// InferAccountTitle implements AIClient.
func (c *GeminiClient) InferAccountTitle(ctx context.Context, q InferenceQuery) (Inference, error) {
	type hint struct {
		Title    string `json:"title"`
		Keywords string `json:"keywords"`
	}
	hints := make([]hint, 0, len(q.Masters))
	for _, m := range q.Masters {
		kw := m.Keywords
		if kw == "" {
			kw = "特になし"
		}
		hints = append(hints, hint{Title: m.Title, Keywords: kw})
	}

	prompt := fmt.Sprintf("あなたは日本の経理専門家です。与えられた情報と勘定科目マスターを基に、最も可能性の高い勘定科目を1つだけJSON形式で返してください。\n"+
		"# 領収書情報\n- 店名: %s\n- 摘要: %s\n- 金額(税込): %d円\n# 勘定科目マスター\n%s",
		q.CounterpartyName, q.Description, q.Amount, models.Payload(hints))

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"accountTitle": {Type: genai.TypeString, Enum: models.AccountTitles(q.Masters)},
		},
		Required: []string{"accountTitle"},
	}
	return c.infer(ctx, model, prompt)
}

// InferPassbookAccount implements AIClient.
func (c *GeminiClient) InferPassbookAccount(ctx context.Context, q InferenceQuery) (Inference, error) {
	prompt := fmt.Sprintf("あなたは日本の経理専門家です。以下の「摘要」に最も適した「勘定科目」「補助科目」「標準税区分」をJSONで返してください。\n"+
		"# 摘要\n%s\n# 勘定科目マスター\n%s",
		q.Description, models.Payload(q.Masters))

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"accountTitle": {Type: genai.TypeString, Enum: models.AccountTitles(q.Masters)},
			"subAccount":   {Type: genai.TypeString},
			"taxCategory":  {Type: genai.TypeString},
		},
		Required: []string{"accountTitle", "subAccount", "taxCategory"},
	}
	return c.infer(ctx, model, prompt)
}

func (c *GeminiClient) infer(ctx context.Context, model *genai.GenerativeModel, prompt string) (Inference, error) {
	resp, err := c.generate(ctx, model, genai.Text(prompt))
	if err != nil {
		return Inference{}, err
	}
	text, err := responseText(resp)
	if err != nil {
		return Inference{}, err
	}
	var inf Inference
	if err := json.Unmarshal([]byte(text), &inf); err != nil {
		return Inference{}, fmt.Errorf("failed to decode inference %q: %w", text, err)
	}
	return inf, nil
}

// generate performs one request with the cool-down, timeout and retry policy.
func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	interval := c.cooldown
	if interval < minRetryInterval {
		interval = minRetryInterval
	}
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		r, err := model.GenerateContent(callCtx, parts...)
		if err != nil {
			c.logger.WithError(err).Warn("Gemini request failed",
				logging.F(logging.FieldModel, c.model),
				logging.F(logging.FieldDuration, time.Since(start).String()))
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return resp, fmt.Errorf("gemini %s: %w", c.model, err)
	}
	return resp, nil
}

func (c *GeminiClient) usage(resp *genai.GenerateContentResponse) models.TokenUsage {
	u := models.TokenUsage{Model: c.model}
	if resp != nil && resp.UsageMetadata != nil {
		u.PromptTokens = resp.UsageMetadata.PromptTokenCount
		u.CandidatesTokens = resp.UsageMetadata.CandidatesTokenCount
		u.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}
	return u
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from model")
	}
	return b.String(), nil
}

// isRetryable treats rate limiting, server errors and timeouts as transient.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return errors.Is(err, context.DeadlineExceeded)
}

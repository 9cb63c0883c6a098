package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"go.uber.org/zap"
)

// defaultGenerateTimeout bounds one model call. Local models routinely take
// more than a minute on CPU-only hosts.
const defaultGenerateTimeout = 120 * time.Second

// Generator produces the report text for a prepared prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaGenerator calls a local Ollama server's generate endpoint.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *logger.Logger
}

// NewOllamaGenerator creates a generator against the given Ollama base URL,
// for example http://localhost:11434. A non-positive timeout falls back to
// the default.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration, l *logger.Logger) *OllamaGenerator {
	if l == nil {
		l = logger.NewNopLogger()
	}

	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	return &OllamaGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  l,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate implements Generator. The whole response arrives in one body
// because streaming is disabled.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeReportFailed, "failed to encode generate request", err)
	}

	url := g.baseURL + "/api/generate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeReportFailed, "failed to build generate request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("requesting report from model",
		zap.String("url", url),
		zap.String("model", g.model),
		zap.Int("prompt_bytes", len(body)),
	)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeModelUnavailable, err, "model server at %s is unreachable", g.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errors.Newf(errors.ErrCodeModelUnavailable, "model %s is not available: %s", g.model, readErrorBody(resp))
	}

	if resp.StatusCode/100 != 2 {
		return "", errors.Newf(errors.ErrCodeReportHTTPFailure, "generate request failed with status %d: %s", resp.StatusCode, readErrorBody(resp))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(errors.ErrCodeReportParseFailure, "failed to decode generate response", err)
	}

	report := strings.TrimSpace(parsed.Response)
	if report == "" {
		return "", errors.New(errors.ErrCodeReportParseFailure, "model returned an empty report")
	}

	return report, nil
}

// readErrorBody extracts the error message Ollama puts in failed responses,
// falling back to the HTTP status text.
func readErrorBody(resp *http.Response) string {
	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && strings.TrimSpace(parsed.Error) != "" {
		return parsed.Error
	}

	return resp.Status
}

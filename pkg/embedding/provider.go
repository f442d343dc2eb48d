package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/yumyai/protclass/internal/retry"
	"github.com/yumyai/protclass/logger"
	"go.uber.org/zap"
)

// Provider turns a cleaned sequence into an embedding vector.
type Provider interface {
	Embed(ctx context.Context, sequence string) ([]float64, error)
	Name() string
}

const (
	ProviderMock = "mock"
	ProviderHTTP = "http"
	ProviderNone = "none"

	DefaultModel = "esm2_t33_650M_UR50D"
	DefaultLayer = 12
)

// Config selects and configures a Provider.
type Config struct {
	Provider   string
	URL        string
	APIKey     string
	Model      string
	VectorPath string // gjson path to the vector in the response body
	Timeout    time.Duration
	Retry      retry.Config
}

// NewProvider builds the provider named by cfg.Provider. ProviderNone (or an
// empty name) yields a nil Provider: classification then runs without embeddings.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderMock:
		return MockProvider{}, nil
	case ProviderHTTP:
		return NewHTTPProvider(cfg)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// MockProvider generates a deterministic Dimensions-long vector from the
// residue character codes. It does no I/O and is used offline and in tests.
type MockProvider struct{}

func (MockProvider) Name() string { return ProviderMock }

func (MockProvider) Embed(ctx context.Context, sequence string) ([]float64, error) {
	if sequence == "" {
		return nil, ErrEmptyEmbedding
	}
	codes := []byte(sequence)
	n := float64(len(codes))

	vec := make([]float64, Dimensions)
	for i := range vec {
		var sum float64
		for j, c := range codes {
			sum += math.Sin(float64(c)*float64(i+1)*0.001 + float64(j)*0.1)
		}
		vec[i] = sum / n
	}
	return vec, nil
}

// HTTPProvider calls a remote embedding service.
type HTTPProvider struct {
	url        string
	apiKey     string
	model      string
	vectorPath string
	retry      retry.Config
	http       *http.Client
}

type embedRequest struct {
	Sequence   string `json:"sequence"`
	Model      string `json:"model"`
	ReprLayers []int  `json:"repr_layers"`
}

// Paths tried after the configured one, covering the common response shapes.
var fallbackVectorPaths = []string{"embeddings.12", "representations.12", "embedding", "data.0.embedding"}

func NewHTTPProvider(cfg Config) (*HTTPProvider, error) {
	if cfg.URL == "" {
		return nil, errors.New("embedding provider url is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry == (retry.Config{}) {
		cfg.Retry = retry.DefaultConfig()
	}
	return &HTTPProvider{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		vectorPath: cfg.VectorPath,
		retry:      cfg.Retry,
		http:       &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *HTTPProvider) Name() string { return ProviderHTTP }

func (p *HTTPProvider) Embed(ctx context.Context, sequence string) ([]float64, error) {
	payload, err := json.Marshal(embedRequest{
		Sequence:   sequence,
		Model:      p.model,
		ReprLayers: []int{DefaultLayer},
	})
	if err != nil {
		return nil, err
	}

	body, err := retry.Execute(ctx, retry.Options{Config: p.retry, APIName: "embedding"},
		func(attempt int) ([]byte, int, error) {
			return p.post(ctx, payload)
		})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}

	vec, err := p.decode(body)
	if err != nil {
		return nil, err
	}
	if len(vec) != Dimensions {
		logger.Warn("Unexpected embedding size", zap.Int("got", len(vec)), zap.Int("want", Dimensions))
	}
	return vec, nil
}

func (p *HTTPProvider) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if retry.IsTransient(nil, resp.StatusCode) {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("embedding api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, resp.StatusCode, nil
}

// decode pulls the first numeric array found at the configured path or one
// of the fallback paths.
func (p *HTTPProvider) decode(body []byte) ([]float64, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("embedding api returned invalid json")
	}

	paths := fallbackVectorPaths
	if p.vectorPath != "" {
		paths = append([]string{p.vectorPath}, fallbackVectorPaths...)
	}

	for _, path := range paths {
		res := gjson.GetBytes(body, path)
		if !res.IsArray() {
			continue
		}
		items := res.Array()
		// Some services nest per-residue or per-batch arrays; take the first row.
		if len(items) > 0 && items[0].IsArray() {
			items = items[0].Array()
		}
		vec := make([]float64, 0, len(items))
		for _, item := range items {
			if item.Type != gjson.Number {
				vec = nil
				break
			}
			vec = append(vec, item.Float())
		}
		if len(vec) > 0 {
			return vec, nil
		}
	}
	return nil, ErrEmptyEmbedding
}

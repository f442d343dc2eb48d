package uniprot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yumyai/protclass/internal/retry"
	"github.com/yumyai/protclass/logger"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://rest.uniprot.org"

var (
	ErrNotFound         = errors.New("uniprot entry not found")
	ErrInvalidAccession = errors.New("invalid accession")
	ErrUnavailable      = errors.New("uniprot service unavailable")
)

// Accessions and entry names (P69905, A0A023GPI8, HBA_HUMAN).
var accessionPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// Client fetches entries from the UniProtKB REST API.
type Client struct {
	baseURL string
	retry   retry.Config
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry.DefaultConfig(),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithRetry replaces the retry policy; used by tests to avoid real delays.
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}

// ValidAccession reports whether s looks like a UniProt accession or entry name.
func ValidAccession(s string) bool {
	return accessionPattern.MatchString(s)
}

// Fetch retrieves and decodes one entry.
func (c *Client) Fetch(ctx context.Context, accession string) (*Entry, error) {
	accession = strings.TrimSpace(accession)
	if !ValidAccession(accession) {
		return nil, fmt.Errorf("%w %q", ErrInvalidAccession, accession)
	}

	fullURL := fmt.Sprintf("%s/uniprotkb/%s.json", c.baseURL, url.PathEscape(strings.ToUpper(accession)))

	type response struct {
		status int
		body   []byte
	}
	resp, err := retry.Execute(ctx, retry.Options{Config: c.retry, APIName: "UniProt"},
		func(attempt int) (response, int, error) {
			status, body, err := c.get(ctx, fullURL)
			return response{status, body}, status, err
		})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", accession, ErrUnavailable, err)
	}

	switch {
	case resp.status == http.StatusNotFound || resp.status == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, accession)
	case resp.status < 200 || resp.status >= 300:
		return nil, fmt.Errorf("%w (%d): %s", ErrUnavailable, resp.status, strings.TrimSpace(string(resp.body)))
	}

	entry := Decode(resp.body)
	logger.Debug("Fetched UniProt entry",
		zap.String("accession", entry.Accession),
		zap.Int("length", entry.Length),
		zap.Int("go_terms", len(entry.GOTerms)),
	)
	return &entry, nil
}

func (c *Client) get(ctx context.Context, fullURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

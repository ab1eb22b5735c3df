package ucsc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gencatalog/internal/cache"
	"gencatalog/internal/logging"
	"gencatalog/internal/peer"
)

const (
	// ProviderName is the display name of the UCSC provider.
	ProviderName = "UCSC"

	genomesFunc        = "ucsc.genomes"
	defaultHTTPTimeout = 30 * time.Second
	unknownAccession   = "na"
)

var accessionPattern = regexp.MustCompile(`GC[AF]_\d+\.\d+`)

// apiGenome is one entry of the list/ucscGenomes response.
type apiGenome struct {
	Description    string `json:"description"`
	Organism       string `json:"organism"`
	ScientificName string `json:"scientificName"`
	SourceName     string `json:"sourceName"`
	TaxID          int    `json:"taxId"`
	Active         int    `json:"active"`
}

type apiResponse struct {
	Genomes map[string]apiGenome `json:"ucscGenomes"`
}

// Client loads the UCSC genome catalog.
type Client struct {
	apiURL          string
	downloadBaseURL string
	httpClient      *http.Client
	store           *cache.Store
	policy          cache.Policy
	logger          *slog.Logger
}

var _ peer.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache memoizes the genome list in store under policy.
func WithCache(store *cache.Store, policy cache.Policy) Option {
	return func(c *Client) {
		c.store = store
		c.policy = policy
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a UCSC client. apiURL is the list/ucscGenomes endpoint and
// downloadBaseURL the goldenPath root.
func New(apiURL, downloadBaseURL string, opts ...Option) (*Client, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil, errors.New("ucsc api url required")
	}
	downloadBaseURL = strings.TrimSpace(downloadBaseURL)
	if downloadBaseURL == "" {
		return nil, errors.New("ucsc download base url required")
	}
	client := &Client{
		apiURL:          apiURL,
		downloadBaseURL: strings.TrimRight(downloadBaseURL, "/"),
		httpClient:      &http.Client{Timeout: defaultHTTPTimeout},
		policy:          cache.LongLived,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "ucsc")
	return client, nil
}

// Name returns the provider display name.
func (c *Client) Name() string {
	return ProviderName
}

// LoadCatalog fetches (or reuses the cached) genome list.
func (c *Client) LoadCatalog(ctx context.Context) (peer.Catalog, error) {
	key, err := cache.NewKey(genomesFunc, c.apiURL)
	if err != nil {
		return nil, err
	}
	genomes, err := cache.GetOrCompute(ctx, c.store, key, c.policy, c.fetchGenomes)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("ucsc catalog loaded", logging.Int("genomes", len(genomes)))
	return &Catalog{client: c, genomes: genomes}, nil
}

func (c *Client) fetchGenomes(ctx context.Context) (map[string]peer.Genome, error) {
	c.logger.Info("downloading assembly summaries from UCSC",
		logging.String(logging.FieldEventType, "ucsc_catalog_fetch"),
		logging.String("url", c.apiURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ucsc genome list returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode ucsc response: %w", err)
	}
	if len(payload.Genomes) == 0 {
		return nil, errors.New("ucsc genome list is empty")
	}

	genomes := make(map[string]peer.Genome, len(payload.Genomes))
	for name, g := range payload.Genomes {
		genomes[name] = peer.Genome{
			Name:        name,
			Accession:   ExtractAccession(g.SourceName),
			TaxonomyID:  g.TaxID,
			Species:     g.ScientificName,
			Description: g.Description,
		}
	}
	return genomes, nil
}

// ExtractAccession returns the GenBank or RefSeq assembly accession embedded
// in text, or "na" when there is none.
func ExtractAccession(text string) string {
	if match := accessionPattern.FindString(text); match != "" {
		return match
	}
	return unknownAccession
}

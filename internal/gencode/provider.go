package gencode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gencatalog/internal/cache"
	"gencatalog/internal/listing"
	"gencatalog/internal/logging"
	"gencatalog/internal/metrics"
	"gencatalog/internal/peer"
)

const (
	// ProviderName is the display name of the GENCODE provider.
	ProviderName = "GENCODE"

	statusFunc   = "gencode.status"
	discoverFunc = "gencode.discover"
)

// Options configures a Provider.
type Options struct {
	// BaseURL is the GENCODE release root, e.g. ftp://ftp.ebi.ac.uk/pub/databases/gencode.
	BaseURL string
	// Dialer lists the release tree. Nil selects one from the BaseURL scheme.
	Dialer  listing.Dialer
	Timeout time.Duration
	// Peer supplies the catalog GENCODE assemblies are reconciled against.
	Peer  peer.Provider
	Cache *cache.Store
	// LongPolicy caches discovery; ShortPolicy caches the reachability check.
	LongPolicy  cache.Policy
	ShortPolicy cache.Policy
	Prefix      PrefixFunc
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Provider serves the reconciled GENCODE catalog.
type Provider struct {
	baseURL     string
	dialer      listing.Dialer
	peer        peer.Provider
	cache       *cache.Store
	longPolicy  cache.Policy
	shortPolicy cache.Policy
	prefix      PrefixFunc
	builder     *Builder
	logger      *slog.Logger

	mu          sync.RWMutex
	started     bool
	state       State
	catalog     Catalog
	peerCatalog peer.Catalog
	mapping     NameMapping
}

// NewProvider validates opts and returns an uninitialized provider.
func NewProvider(opts Options) (*Provider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gencode base url required")
	}
	if opts.Peer == nil {
		return nil, errors.New("peer provider required")
	}
	dialer := opts.Dialer
	if dialer == nil {
		var err error
		dialer, err = listing.NewDialer(baseURL, opts.Timeout)
		if err != nil {
			return nil, err
		}
	}
	longPolicy := opts.LongPolicy
	if longPolicy.Name == "" {
		longPolicy = cache.LongLived
	}
	shortPolicy := opts.ShortPolicy
	if shortPolicy.Name == "" {
		shortPolicy = cache.ShortLived
	}
	logger := logging.NewComponentLogger(opts.Logger, "provider")

	return &Provider{
		baseURL:     baseURL,
		dialer:      dialer,
		peer:        opts.Peer,
		cache:       opts.Cache,
		longPolicy:  longPolicy,
		shortPolicy: shortPolicy,
		prefix:      opts.Prefix,
		builder:     NewBuilder(dialer, WithBuilderLogger(opts.Logger), WithBuilderMetrics(opts.Metrics)),
		logger:      logger,
		state:       StateUninitialized,
	}, nil
}

// Open creates a provider and initializes it.
func Open(ctx context.Context, opts Options) (*Provider, error) {
	p, err := NewProvider(opts)
	if err != nil {
		return nil, err
	}
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the provider display name.
func (p *Provider) Name() string {
	return ProviderName
}

// BaseURL returns the release root the provider lists.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// State returns the current initialization state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Initialize runs reachability, discovery, peer loading, mapping and
// enrichment once, in that order. On failure the provider keeps the last
// state it reached; a second call returns ErrAlreadyInitialized.
func (p *Provider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyInitialized
	}
	p.started = true
	p.mu.Unlock()

	if err := p.checkReachable(ctx); err != nil {
		return err
	}
	p.advance(StateReachabilityChecked, nil)

	catalog, err := p.discover(ctx)
	if err != nil {
		return fmt.Errorf("discover gencode catalog: %w", err)
	}
	p.advance(StateCatalogDiscovered, func() { p.catalog = catalog })

	peerCatalog, err := p.peer.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load %s catalog: %w", p.peer.Name(), err)
	}
	p.advance(StatePeerCatalogLoaded, func() { p.peerCatalog = peerCatalog })

	mapping := BuildMapping(catalog, p.prefix)
	p.advance(StateMappingBuilt, func() { p.mapping = mapping })

	// Enrichment works on a copy so concurrent readers never observe a
	// partially enriched catalog.
	enriched := catalog.Clone()
	if err := Enrich(enriched, mapping, peerCatalog.Lookup); err != nil {
		return err
	}
	p.advance(StateEnriched, func() { p.catalog = enriched })

	p.logger.Info("gencode provider ready",
		logging.String(logging.FieldEventType, "provider_ready"),
		logging.Int("assemblies", len(enriched)))
	return nil
}

func (p *Provider) advance(state State, apply func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if apply != nil {
		apply()
	}
	p.state = state
	p.logger.Debug("provider state advanced", logging.String("state", state.String()))
}

func (p *Provider) checkReachable(ctx context.Context) error {
	key, err := cache.NewKey(statusFunc, p.baseURL)
	if err != nil {
		return err
	}
	_, err = cache.GetOrCompute(ctx, p.cache, key, p.shortPolicy, func(ctx context.Context) (bool, error) {
		if err := listing.Ping(ctx, p.dialer, p.baseURL); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, p.baseURL, err)
	}
	return nil
}

func (p *Provider) discover(ctx context.Context) (Catalog, error) {
	key, err := cache.NewKey(discoverFunc, p.baseURL)
	if err != nil {
		return nil, err
	}
	catalog, err := cache.GetOrCompute(ctx, p.cache, key, p.longPolicy, func(ctx context.Context) (Catalog, error) {
		return p.builder.Discover(ctx, p.baseURL)
	})
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = make(Catalog)
	}
	return catalog, nil
}

// Ping reports whether the release root can be listed right now. It is never
// cached and works in any state.
func (p *Provider) Ping(ctx context.Context) bool {
	return listing.Ping(ctx, p.dialer, p.baseURL) == nil
}

// require reports ErrNotReady below state; callers hold p.mu.
func (p *Provider) require(state State) error {
	if p.state < state {
		return fmt.Errorf("%w: state %s, need %s", ErrNotReady, p.state, state)
	}
	return nil
}

// record returns the named record; callers hold p.mu.
func (p *Provider) record(name string) (*AssemblyRecord, error) {
	record, ok := p.catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAssembly, name)
	}
	return record, nil
}

// ResolveAnnotationLinks returns the annotation links of an assembly. It only
// needs discovery to have completed.
func (p *Provider) ResolveAnnotationLinks(name string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateCatalogDiscovered); err != nil {
		return nil, err
	}
	record, err := p.record(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), record.AnnotationLinks...), nil
}

// PeerName returns the reconciled peer name of an assembly.
func (p *Provider) PeerName(name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateMappingBuilt); err != nil {
		return "", err
	}
	return p.peerNameLocked(name)
}

func (p *Provider) peerNameLocked(name string) (string, error) {
	if _, err := p.record(name); err != nil {
		return "", err
	}
	peerName, ok := p.mapping.PeerName(name)
	if !ok {
		return "", fmt.Errorf("%w: assembly %s has no peer mapping", ErrCatalogInvariant, name)
	}
	return peerName, nil
}

// peerTarget resolves the peer catalog and name for a ready provider.
func (p *Provider) peerTarget(name string) (peer.Catalog, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateEnriched); err != nil {
		return nil, "", err
	}
	peerName, err := p.peerNameLocked(name)
	if err != nil {
		return nil, "", err
	}
	return p.peerCatalog, peerName, nil
}

// ResolveDownloadLink returns the peer's sequence download link for an
// assembly. GENCODE sequences are not masked, so the peer is the sequence
// source for every assembly.
func (p *Provider) ResolveDownloadLink(ctx context.Context, name string, mask peer.Mask, opts peer.LinkOptions) (string, error) {
	peerCatalog, peerName, err := p.peerTarget(name)
	if err != nil {
		return "", err
	}
	return peerCatalog.DownloadLink(ctx, peerName, mask, opts)
}

// DownloadGenome downloads the assembly sequence from the peer and returns
// the written path.
func (p *Provider) DownloadGenome(ctx context.Context, name string, req peer.DownloadRequest) (string, error) {
	peerCatalog, peerName, err := p.peerTarget(name)
	if err != nil {
		return "", err
	}
	p.logger.Info("downloading genome from peer",
		logging.String(logging.FieldEventType, "genome_download"),
		logging.String(logging.FieldAssembly, name),
		logging.String("peer_name", peerName))
	return peerCatalog.DownloadGenome(ctx, peerName, req)
}

// Genomes returns copies of every record sorted by name.
func (p *Provider) Genomes() ([]AssemblyRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateCatalogDiscovered); err != nil {
		return nil, err
	}
	out := make([]AssemblyRecord, 0, len(p.catalog))
	for _, name := range p.catalog.Names() {
		out = append(out, *p.catalog[name].clone())
	}
	return out, nil
}

// Genome returns a copy of one record.
func (p *Provider) Genome(name string) (AssemblyRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateCatalogDiscovered); err != nil {
		return AssemblyRecord{}, err
	}
	record, err := p.record(name)
	if err != nil {
		return AssemblyRecord{}, err
	}
	return *record.clone(), nil
}

// GenomeInfo summarizes an enriched assembly.
type GenomeInfo struct {
	Name        string `json:"name"`
	Accession   string `json:"accession"`
	TaxonomyID  int    `json:"taxonomy_id"`
	Annotations bool   `json:"annotations"`
	Species     string `json:"species"`
	OtherInfo   string `json:"other_info"`
}

// GenomeInfo returns the summary of an assembly. It requires enrichment so
// accession and description are populated.
func (p *Provider) GenomeInfo(name string) (GenomeInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateEnriched); err != nil {
		return GenomeInfo{}, err
	}
	record, err := p.record(name)
	if err != nil {
		return GenomeInfo{}, err
	}
	return infoFor(record), nil
}

func infoFor(record *AssemblyRecord) GenomeInfo {
	return GenomeInfo{
		Name:        record.Name,
		Accession:   record.Accession,
		TaxonomyID:  record.TaxonomyID,
		Annotations: len(record.AnnotationLinks) > 0,
		Species:     record.Species,
		OtherInfo:   record.OtherInfo,
	}
}

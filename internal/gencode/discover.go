package gencode

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gencatalog/internal/listing"
	"gencatalog/internal/logging"
	"gencatalog/internal/metrics"
)

const (
	primaryAssemblyMarker = "primary_assembly"
	liftoverAssembly      = "GRCh37"
	liftoverDirectory     = "GRCh37_mapping"
)

// Builder discovers the assembly catalog from a GENCODE release tree.
type Builder struct {
	dialer  listing.Dialer
	logger  *slog.Logger
	metrics *metrics.Metrics
	species []Species
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the discovery logger.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBuilderMetrics records listing counts and discovery durations.
func WithBuilderMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = m
	}
}

// NewBuilder creates a Builder listing through dialer.
func NewBuilder(dialer listing.Dialer, opts ...BuilderOption) *Builder {
	b := &Builder{
		dialer:  dialer,
		logger:  logging.NewNop(),
		species: SupportedSpecies(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "gencode")
	return b
}

// releaseScan is what one release directory contributes to the catalog.
type releaseScan struct {
	release  string
	dirURL   string
	assembly string
	liftover bool
}

// Discover walks every species under baseURL and returns the catalog before
// enrichment. Species are listed concurrently, each over its own session;
// results are merged in species order so the outcome matches a sequential
// walk. Listing failures wrap ErrTransport and are not retried.
func (b *Builder) Discover(ctx context.Context, baseURL string) (Catalog, error) {
	if b.dialer == nil {
		return nil, fmt.Errorf("%w: no directory dialer configured", ErrTransport)
	}
	root := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	runID := uuid.NewString()
	logger := b.logger.With(logging.String(logging.FieldCorrelationID, runID))
	start := time.Now()
	defer b.metrics.ObserveDiscovery(start)

	logger.Info("discovering gencode releases",
		logging.String(logging.FieldEventType, "discovery_start"),
		logging.String("base_url", root))

	scans := make([][]releaseScan, len(b.species))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, sp := range b.species {
		group.Go(func() error {
			result, err := b.scanSpecies(groupCtx, logger, root, sp)
			if err != nil {
				return err
			}
			scans[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	catalog := make(Catalog)
	for i, sp := range b.species {
		mergeScans(catalog, sp, scans[i])
	}
	b.metrics.SetCatalogSize(len(catalog))

	logger.Info("gencode discovery complete",
		logging.String(logging.FieldEventType, "discovery_complete"),
		logging.Int("assemblies", len(catalog)),
		logging.Duration("elapsed", time.Since(start)))
	return catalog, nil
}

func (b *Builder) scanSpecies(ctx context.Context, logger *slog.Logger, root string, sp Species) ([]releaseScan, error) {
	logger = logger.With(logging.String(logging.FieldSpecies, sp.Tag))

	session, err := b.dialer.Dial(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("%w: open session for %s: %w", ErrTransport, sp.Tag, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("close listing session failed", logging.Error(err))
		}
	}()

	speciesDir := sp.directory()
	b.metrics.IncListing(sp.Tag)
	entries, err := session.List(ctx, speciesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrTransport, speciesDir, err)
	}
	releases := ResolveReleases(entries, sp.Tag)
	if len(releases) == 0 {
		logger.Info("no releases discovered",
			logging.String(logging.FieldEventType, "discovery_empty"))
		return nil, nil
	}
	logger.Debug("resolved releases", logging.Int("count", len(releases)))

	scans := make([]releaseScan, 0, len(releases))
	for _, release := range releases {
		releaseDir := speciesDir + "/release_" + release
		b.metrics.IncListing(sp.Tag)
		listed, err := session.List(ctx, releaseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", ErrTransport, releaseDir, err)
		}
		files := entryBaseNames(listed)
		scan := releaseScan{
			release:  release,
			dirURL:   root + "/" + releaseDir,
			assembly: primaryAssembly(files),
			liftover: sp.Primary && slices.Contains(files, liftoverDirectory),
		}
		if scan.assembly == "" {
			logger.Debug("release has no primary assembly file",
				logging.String(logging.FieldRelease, release))
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

// mergeScans folds one species' releases into the catalog. The first release
// naming an assembly seeds its record; later ones only append links.
func mergeScans(catalog Catalog, sp Species, scans []releaseScan) {
	for _, scan := range scans {
		if scan.assembly != "" {
			link := fmt.Sprintf("%s/gencode.v%s.annotation.gtf.gz", scan.dirURL, scan.release)
			if record, ok := catalog[scan.assembly]; ok {
				if !slices.Contains(record.AnnotationLinks, link) {
					record.AnnotationLinks = append(record.AnnotationLinks, link)
				}
			} else {
				catalog[scan.assembly] = &AssemblyRecord{
					Name:            scan.assembly,
					TaxonomyID:      sp.TaxonomyID,
					Species:         sp.Name,
					AnnotationLinks: []string{link},
				}
			}
		}

		if _, ok := catalog[liftoverAssembly]; scan.liftover && !ok {
			catalog[liftoverAssembly] = &AssemblyRecord{
				Name:       liftoverAssembly,
				TaxonomyID: Human.TaxonomyID,
				Species:    Human.Name,
				AnnotationLinks: []string{fmt.Sprintf("%s/%s/gencode.v%slift37.annotation.gtf.gz",
					scan.dirURL, liftoverDirectory, scan.release)},
			}
		}
	}
}

// primaryAssembly returns the assembly named by the first primary assembly
// file, with any patch suffix after the first dot dropped.
func primaryAssembly(files []string) string {
	for _, file := range files {
		if !strings.Contains(file, primaryAssemblyMarker) {
			continue
		}
		name, _, _ := strings.Cut(file, ".")
		return name
	}
	return ""
}

func entryBaseNames(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimRight(entry, "/")
		if idx := strings.LastIndex(entry, "/"); idx >= 0 {
			entry = entry[idx+1:]
		}
		out = append(out, entry)
	}
	return out
}

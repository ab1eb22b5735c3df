package gencode_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"gencatalog/internal/cache"
	"gencatalog/internal/gencode"
	"gencatalog/internal/peer"
	"gencatalog/internal/testsupport"
)

func newProvider(t *testing.T, tree *testsupport.Tree, fake *testsupport.FakePeer, store *cache.Store) *gencode.Provider {
	t.Helper()
	p, err := gencode.NewProvider(gencode.Options{
		BaseURL: testBase,
		Dialer:  tree,
		Peer:    fake,
		Cache:   store,
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	return p
}

func TestProviderInitializeReachesEnriched(t *testing.T) {
	fake := testsupport.NewFakePeer(testsupport.UCSCGenomes()...)
	p := newProvider(t, testsupport.GencodeTree(), fake, nil)
	if p.State() != gencode.StateUninitialized {
		t.Fatalf("initial state = %s", p.State())
	}

	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !p.State().Ready() {
		t.Fatalf("state = %s, want enriched", p.State())
	}
	if err := p.Initialize(context.Background()); !errors.Is(err, gencode.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	info, err := p.GenomeInfo("GRCh38")
	if err != nil {
		t.Fatalf("GenomeInfo returned error: %v", err)
	}
	want := gencode.GenomeInfo{
		Name:        "GRCh38",
		Accession:   "GCA_000001405.15",
		TaxonomyID:  9606,
		Annotations: true,
		Species:     "Homo sapiens",
		OtherInfo:   "GENCODE annotation + UCSC hg38 genome",
	}
	if info != want {
		t.Fatalf("GenomeInfo = %+v, want %+v", info, want)
	}

	if peerName, err := p.PeerName("GRCm39"); err != nil || peerName != "mm39" {
		t.Fatalf("PeerName = %q, %v", peerName, err)
	}
}

func TestProviderResolvesLinks(t *testing.T) {
	fake := testsupport.NewFakePeer(testsupport.UCSCGenomes()...)
	p := newProvider(t, testsupport.GencodeTree(), fake, nil)
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	link, err := p.ResolveDownloadLink(context.Background(), "GRCh37", peer.MaskHard, peer.LinkOptions{})
	if err != nil {
		t.Fatalf("ResolveDownloadLink returned error: %v", err)
	}
	if link != "https://peer.test/hg19/hg19.fa.gz?mask=hard" {
		t.Fatalf("unexpected link %q", link)
	}

	links, err := p.ResolveAnnotationLinks("GRCh37")
	if err != nil {
		t.Fatalf("ResolveAnnotationLinks returned error: %v", err)
	}
	if len(links) != 1 || !strings.HasSuffix(links[0], "GRCh37_mapping/gencode.v44lift37.annotation.gtf.gz") {
		t.Fatalf("unexpected liftover links: %v", links)
	}
	links[0] = "mutated"
	again, _ := p.ResolveAnnotationLinks("GRCh37")
	if again[0] == "mutated" {
		t.Fatal("annotation links share storage with the catalog")
	}

	if _, err := p.ResolveDownloadLink(context.Background(), "GRCz11", peer.MaskSoft, peer.LinkOptions{}); !errors.Is(err, gencode.ErrUnknownAssembly) {
		t.Fatalf("expected ErrUnknownAssembly, got %v", err)
	}
}

func TestProviderDownloadGenomeDelegatesToPeer(t *testing.T) {
	fake := testsupport.NewFakePeer(testsupport.UCSCGenomes()...)
	p := newProvider(t, testsupport.GencodeTree(), fake, nil)
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	req := peer.DownloadRequest{GenomesDir: t.TempDir(), LocalName: "GRCm39", Mask: peer.MaskSoft}
	path, err := p.DownloadGenome(context.Background(), "GRCm39", req)
	if err != nil {
		t.Fatalf("DownloadGenome returned error: %v", err)
	}
	if !strings.HasSuffix(path, "/GRCm39/mm39.fa.gz") {
		t.Fatalf("unexpected path %q", path)
	}
	if got := fake.Downloads(); len(got) != 1 || got[0] != req {
		t.Fatalf("unexpected recorded downloads: %+v", got)
	}
}

func TestProviderQueriesRequireState(t *testing.T) {
	p := newProvider(t, testsupport.GencodeTree(), testsupport.NewFakePeer(), nil)

	if _, err := p.ResolveAnnotationLinks("GRCh38"); !errors.Is(err, gencode.ErrNotReady) {
		t.Fatalf("expected ErrNotReady before discovery, got %v", err)
	}
	if _, err := p.ResolveDownloadLink(context.Background(), "GRCh38", peer.MaskSoft, peer.LinkOptions{}); !errors.Is(err, gencode.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := p.Genomes(); !errors.Is(err, gencode.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestProviderEnrichmentFailureStopsAtMappingBuilt(t *testing.T) {
	// The peer lacks hg19, so the synthesized GRCh37 record cannot be enriched.
	var genomes []peer.Genome
	for _, g := range testsupport.UCSCGenomes() {
		if g.Name != "hg19" {
			genomes = append(genomes, g)
		}
	}
	p := newProvider(t, testsupport.GencodeTree(), testsupport.NewFakePeer(genomes...), nil)

	err := p.Initialize(context.Background())
	if !errors.Is(err, gencode.ErrCatalogInvariant) {
		t.Fatalf("expected ErrCatalogInvariant, got %v", err)
	}
	if p.State() != gencode.StateMappingBuilt {
		t.Fatalf("state = %s, want mapping_built", p.State())
	}

	links, err := p.ResolveAnnotationLinks("GRCh38")
	if err != nil || len(links) != 2 {
		t.Fatalf("annotation links should stay available after discovery: %v, %v", links, err)
	}
	genome, err := p.Genome("GRCh38")
	if err != nil || genome.Accession != "" {
		t.Fatalf("expected unenriched record, got %+v, %v", genome, err)
	}
	if _, err := p.ResolveDownloadLink(context.Background(), "GRCh38", peer.MaskSoft, peer.LinkOptions{}); !errors.Is(err, gencode.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestProviderUnreachable(t *testing.T) {
	tree := testsupport.NewTree()
	p := newProvider(t, tree, testsupport.NewFakePeer(), nil)

	if p.Ping(context.Background()) {
		t.Fatal("expected Ping to fail without a root listing")
	}
	err := p.Initialize(context.Background())
	if !errors.Is(err, gencode.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if p.State() != gencode.StateUninitialized {
		t.Fatalf("state = %s, want uninitialized", p.State())
	}
}

func TestProviderPeerLoadFailure(t *testing.T) {
	fake := testsupport.NewFakePeer()
	fake.FailLoad(errors.New("ucsc api down"))
	p := newProvider(t, testsupport.GencodeTree(), fake, nil)

	if err := p.Initialize(context.Background()); err == nil {
		t.Fatal("expected peer load error")
	}
	if p.State() != gencode.StateCatalogDiscovered {
		t.Fatalf("state = %s, want catalog_discovered", p.State())
	}
}

func TestProviderReusesCachedDiscovery(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	tree := testsupport.GencodeTree()

	first := newProvider(t, tree, testsupport.NewFakePeer(testsupport.UCSCGenomes()...), store)
	if err := first.Initialize(context.Background()); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	listsAfterFirst := tree.Lists()

	second := newProvider(t, tree, testsupport.NewFakePeer(testsupport.UCSCGenomes()...), store)
	if err := second.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if tree.Lists() != listsAfterFirst {
		t.Fatalf("expected cached status and discovery, listings grew from %d to %d", listsAfterFirst, tree.Lists())
	}

	a, _ := first.Genomes()
	b, _ := second.Genomes()
	if len(a) != len(b) {
		t.Fatalf("catalogs differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Accession != b[i].Accession || !slices.Equal(a[i].AnnotationLinks, b[i].AnnotationLinks) {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	entries, err := store.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var funcs []string
	for _, e := range entries {
		funcs = append(funcs, e.Func)
	}
	slices.Sort(funcs)
	if !slices.Equal(funcs, []string{"gencode.discover", "gencode.status"}) {
		t.Fatalf("unexpected cached functions: %v", funcs)
	}
}

func TestProviderSearch(t *testing.T) {
	p := newProvider(t, testsupport.GencodeTree(), testsupport.NewFakePeer(testsupport.UCSCGenomes()...), nil)
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	tests := []struct {
		term string
		want []string
	}{
		{term: "grcm", want: []string{"GRCm39"}},
		{term: "10090", want: []string{"GRCm39"}},
		{term: "HG19", want: []string{"GRCh37"}},
		{term: "homo sapiens", want: []string{"GRCh37", "GRCh38"}},
		{term: "GCA_000001405.15", want: []string{"GRCh38"}},
		{term: "danio", want: nil},
	}
	for _, tt := range tests {
		results, err := p.Search(tt.term)
		if err != nil {
			t.Fatalf("Search(%q) returned error: %v", tt.term, err)
		}
		var names []string
		for _, r := range results {
			names = append(names, r.Name)
		}
		if !slices.Equal(names, tt.want) {
			t.Fatalf("Search(%q) = %v, want %v", tt.term, names, tt.want)
		}
	}
}

func TestProviderConcurrentReads(t *testing.T) {
	p := newProvider(t, testsupport.GencodeTree(), testsupport.NewFakePeer(testsupport.UCSCGenomes()...), nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, _ = p.ResolveAnnotationLinks("GRCh38")
				_ = p.State()
			}
		}()
	}
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	wg.Wait()
}

func TestNewProviderValidation(t *testing.T) {
	if _, err := gencode.NewProvider(gencode.Options{Peer: testsupport.NewFakePeer()}); err == nil {
		t.Fatal("expected error without base url")
	}
	if _, err := gencode.NewProvider(gencode.Options{BaseURL: testBase}); err == nil {
		t.Fatal("expected error without peer")
	}
	if _, err := gencode.NewProvider(gencode.Options{BaseURL: "gopher://x", Peer: testsupport.NewFakePeer()}); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

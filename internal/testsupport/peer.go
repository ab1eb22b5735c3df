package testsupport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gencatalog/internal/peer"
)

// FakePeer is an in-memory peer.Provider and peer.Catalog.
type FakePeer struct {
	mu        sync.Mutex
	genomes   map[string]peer.Genome
	loadErr   error
	loads     atomic.Int32
	downloads []peer.DownloadRequest
}

var (
	_ peer.Provider = (*FakePeer)(nil)
	_ peer.Catalog  = (*FakePeer)(nil)
)

// NewFakePeer returns a peer catalog holding genomes.
func NewFakePeer(genomes ...peer.Genome) *FakePeer {
	f := &FakePeer{genomes: make(map[string]peer.Genome)}
	for _, g := range genomes {
		f.genomes[g.Name] = g
	}
	return f
}

// FailLoad makes LoadCatalog return err.
func (f *FakePeer) FailLoad(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadErr = err
}

// Loads returns how many times the catalog was loaded.
func (f *FakePeer) Loads() int { return int(f.loads.Load()) }

// Downloads returns the recorded download requests.
func (f *FakePeer) Downloads() []peer.DownloadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]peer.DownloadRequest(nil), f.downloads...)
}

func (f *FakePeer) Name() string { return "UCSC" }

func (f *FakePeer) LoadCatalog(ctx context.Context) (peer.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.loads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f, nil
}

func (f *FakePeer) Lookup(name string) (peer.Genome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.genomes[name]
	return g, ok
}

// DownloadLink returns a deterministic fake URL.
func (f *FakePeer) DownloadLink(_ context.Context, name string, mask peer.Mask, _ peer.LinkOptions) (string, error) {
	if _, ok := f.Lookup(name); !ok {
		return "", fmt.Errorf("%w: %s", peer.ErrGenomeNotFound, name)
	}
	return fmt.Sprintf("https://peer.test/%s/%s.fa.gz?mask=%s", name, name, mask), nil
}

// DownloadGenome records the request and returns the would-be path.
func (f *FakePeer) DownloadGenome(_ context.Context, name string, req peer.DownloadRequest) (string, error) {
	if _, ok := f.Lookup(name); !ok {
		return "", fmt.Errorf("%w: %s", peer.ErrGenomeNotFound, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, req)
	local := req.LocalName
	if local == "" {
		local = name
	}
	return req.GenomesDir + "/" + local + "/" + name + ".fa.gz", nil
}

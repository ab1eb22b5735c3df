package ucsc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gencatalog/internal/fileutil"
	"gencatalog/internal/logging"
	"gencatalog/internal/peer"
)

// Catalog is a loaded UCSC genome list.
type Catalog struct {
	client  *Client
	genomes map[string]peer.Genome
}

var _ peer.Catalog = (*Catalog)(nil)

// Lookup returns the named genome.
func (c *Catalog) Lookup(name string) (peer.Genome, bool) {
	g, ok := c.genomes[name]
	return g, ok
}

// Len returns the number of genomes in the catalog.
func (c *Catalog) Len() int {
	return len(c.genomes)
}

// CandidateLinks lists the download links tried for a genome, in order.
// Older assemblies ship per-chromosome tarballs; newer ones a single FASTA.
// UCSC publishes no unmasked files, so MaskNone shares the soft-masked links
// and DownloadGenome unmasks them.
func (c *Catalog) CandidateLinks(name string, mask peer.Mask) []string {
	base := c.client.downloadBaseURL + "/" + name + "/bigZips/"
	if mask == peer.MaskHard {
		return []string{
			base + "chromFaMasked.tar.gz",
			base + name + ".fa.masked.gz",
		}
	}
	return []string{
		base + "chromFa.tar.gz",
		base + name + ".fa.gz",
	}
}

// DownloadLink returns the first candidate link that exists.
func (c *Catalog) DownloadLink(ctx context.Context, name string, mask peer.Mask, opts peer.LinkOptions) (string, error) {
	if _, ok := c.genomes[name]; !ok {
		return "", fmt.Errorf("%w: %s", peer.ErrGenomeNotFound, name)
	}
	candidates := c.CandidateLinks(name, mask)
	if opts.SkipProbe {
		return candidates[0], nil
	}

	var errs []error
	for _, link := range candidates {
		ok, err := c.client.probe(ctx, link)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return link, nil
		}
	}
	if err := errors.Join(errs...); err != nil {
		return "", fmt.Errorf("no download link for %s: %w", name, err)
	}
	return "", fmt.Errorf("no download link for %s with %s mask", name, mask)
}

// DownloadGenome fetches the resolved link into <GenomesDir>/<LocalName>/,
// keeping the remote file name. Sequence files are not unpacked. With
// MaskNone the soft-masked bases are upper-cased while streaming to disk.
func (c *Catalog) DownloadGenome(ctx context.Context, name string, req peer.DownloadRequest) (string, error) {
	if strings.TrimSpace(req.GenomesDir) == "" {
		return "", errors.New("genomes directory required")
	}
	local := fileutil.SafeName(req.LocalName)
	if local == "" {
		local = fileutil.SafeName(name)
	}
	if local == "" {
		return "", fmt.Errorf("invalid local name for %q", name)
	}
	mask := req.Mask
	if mask == "" {
		mask = peer.MaskSoft
	}

	link, err := c.DownloadLink(ctx, name, mask, peer.LinkOptions{})
	if err != nil {
		return "", err
	}
	dst := filepath.Join(req.GenomesDir, local, path.Base(link))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	// Sequence downloads outlive the API timeout.
	client := *c.client.httpClient
	client.Timeout = 0
	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", link, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s returned %d", link, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if mask == peer.MaskNone {
		pr, pw := io.Pipe()
		defer pr.Close()
		go func() {
			pw.CloseWithError(unmask(pw, resp.Body, path.Base(link)))
		}()
		body = pr
	}

	written, err := fileutil.WriteAtomic(dst, body, 0o644)
	if err != nil {
		return "", err
	}
	c.client.logger.Info("genome downloaded",
		logging.String(logging.FieldEventType, "genome_downloaded"),
		logging.String("genome", name),
		logging.String("path", dst),
		logging.String("mask", string(mask)),
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(start)))
	return dst, nil
}

// probe reports whether link exists. Missing files are not errors.
func (c *Client) probe(ctx context.Context, link string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", link, err)
	}
	resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("probe %s returned %d", link, resp.StatusCode)
	}
}

package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxIndexBytes bounds how much of an index page is parsed.
const maxIndexBytes = 8 << 20

// HTTPDialer lists directories by parsing HTTP(S) index pages.
type HTTPDialer struct {
	client *http.Client
}

// HTTPOption configures an HTTPDialer.
type HTTPOption func(*HTTPDialer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(d *HTTPDialer) {
		if client != nil {
			d.client = client
		}
	}
}

// NewHTTPDialer creates an index-page dialer.
func NewHTTPDialer(timeout time.Duration, opts ...HTTPOption) *HTTPDialer {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialer := &HTTPDialer{client: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(dialer)
	}
	return dialer
}

// Dial validates root. HTTP sessions hold no connection of their own.
func (d *HTTPDialer) Dial(ctx context.Context, root string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(strings.TrimSpace(root))
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("index url %q must use http or https", root)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("index url %q has no host", root)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return &httpSession{client: d.client, root: parsed}, nil
}

type httpSession struct {
	client *http.Client
	root   *url.URL
}

func (s *httpSession) List(ctx context.Context, dir string) ([]string, error) {
	target := *s.root
	if dir = strings.Trim(dir, "/"); dir != "" {
		target.Path = target.Path + "/" + dir
	}
	target.Path += "/"
	endpoint := target.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("list %s (latency=%v): %w", endpoint, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s returned %d (latency=%v)", endpoint, resp.StatusCode, latency)
	}
	links, err := parseIndex(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, fmt.Errorf("parse index %s: %w", endpoint, err)
	}
	return entryNames(links), nil
}

func (s *httpSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// parseIndex collects the relative child links of an index page. Sort links,
// parent links and absolute or external links are ignored.
func parseIndex(r io.Reader) ([]string, error) {
	tokenizer := html.NewTokenizer(r)
	seen := make(map[string]struct{})
	var links []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, value, more := tokenizer.TagAttr()
				if string(key) == "href" {
					if link, ok := childLink(string(value)); ok {
						if _, dup := seen[link]; !dup {
							seen[link] = struct{}{}
							links = append(links, link)
						}
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

func childLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") {
		return "", false
	}
	parsed, err := url.Parse(href)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return "", false
	}
	link := strings.TrimPrefix(parsed.Path, "./")
	if link == "" || strings.HasPrefix(link, "..") {
		return "", false
	}
	return link, true
}

package listing

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Lister lists directory entries relative to a session root.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Session is a Lister holding transport resources until closed.
type Session interface {
	Lister
	Close() error
}

// Dialer opens sessions against a remote root such as
// ftp://ftp.ebi.ac.uk/pub/databases/gencode.
type Dialer interface {
	Dial(ctx context.Context, root string) (Session, error)
}

// NewDialer returns the dialer matching the scheme of rawURL.
func NewDialer(rawURL string, timeout time.Duration) (Dialer, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}
	switch parsed.Scheme {
	case "ftp":
		return &FTPDialer{Timeout: timeout}, nil
	case "http", "https":
		return NewHTTPDialer(timeout), nil
	default:
		return nil, fmt.Errorf("unsupported listing scheme %q", parsed.Scheme)
	}
}

// Ping reports whether root can be opened and listed. The answer rests on
// the dial and the listing alone; a failed close afterwards is ignored.
func Ping(ctx context.Context, dialer Dialer, root string) error {
	session, err := dialer.Dial(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	if _, err := session.List(ctx, ""); err != nil {
		return err
	}
	return nil
}

// entryNames reduces listed paths to their final element, dropping blanks
// and dot entries.
func entryNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimRight(strings.TrimSpace(entry), "/")
		if entry == "" {
			continue
		}
		name := path.Base(entry)
		if name == "." || name == ".." || name == "/" {
			continue
		}
		names = append(names, name)
	}
	return names
}

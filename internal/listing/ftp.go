package listing

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

const (
	defaultFTPPort     = "21"
	anonymousUser      = "anonymous"
	anonymousPassword  = "anonymous"
	defaultDialTimeout = 30 * time.Second
)

// FTPDialer opens anonymous FTP sessions.
type FTPDialer struct {
	Timeout time.Duration
}

// Dial connects and logs in to the host of root.
func (d *FTPDialer) Dial(ctx context.Context, root string) (Session, error) {
	parsed, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("parse ftp url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("ftp url %q has no host", root)
	}
	addr := parsed.Host
	if parsed.Port() == "" {
		addr = net.JoinHostPort(parsed.Hostname(), defaultFTPPort)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	user, password := anonymousUser, anonymousPassword
	if parsed.User != nil {
		user = parsed.User.Username()
		if pw, ok := parsed.User.Password(); ok {
			password = pw
		}
	}
	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login %s: %w", addr, err)
	}

	rootPath := parsed.Path
	if rootPath == "" {
		rootPath = "/"
	}
	return &ftpSession{conn: conn, root: rootPath}, nil
}

type ftpSession struct {
	mu   sync.Mutex
	conn *ftp.ServerConn
	root string
}

// List issues an NLST; the control connection serves one command at a time.
func (s *ftpSession) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := path.Join(s.root, dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.conn.NameList(target)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", target, err)
	}
	return entryNames(entries), nil
}

func (s *ftpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("close ftp session: %w", err)
	}
	return nil
}

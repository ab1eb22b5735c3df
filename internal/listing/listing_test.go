package listing_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"gencatalog/internal/listing"
)

const releaseIndex = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<html><head><title>Index of /pub/databases/gencode/Gencode_mouse</title></head>
<body>
<h1>Index of /pub/databases/gencode/Gencode_mouse</h1>
<table>
<tr><th><a href="?C=N;O=D">Name</a></th><th><a href="?C=M;O=A">Last modified</a></th></tr>
<tr><td><a href="/pub/databases/gencode/">Parent Directory</a></td></tr>
<tr><td><a href="release_M22/">release_M22/</a></td></tr>
<tr><td><a href="release_M23/">release_M23/</a></td></tr>
<tr><td><a href="latest_release/">latest_release/</a></td></tr>
<tr><td><a href="README.txt">README.txt</a></td></tr>
<tr><td><a href="https://www.gencodegenes.org/">GENCODE</a></td></tr>
</table>
</body></html>`

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gencode/Gencode_mouse/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(releaseIndex))
	})
	mux.HandleFunc("/gencode/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gencode/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body><a href="Gencode_human/">Gencode_human/</a><a href="Gencode_mouse/">Gencode_mouse/</a><a href="../">Up</a></body></html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPSessionListsIndexEntries(t *testing.T) {
	server := newIndexServer(t)
	dialer := listing.NewHTTPDialer(5 * time.Second)

	session, err := dialer.Dial(context.Background(), server.URL+"/gencode/")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer session.Close()

	root, err := session.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List root returned error: %v", err)
	}
	if !slices.Equal(root, []string{"Gencode_human", "Gencode_mouse"}) {
		t.Fatalf("unexpected root entries: %v", root)
	}

	entries, err := session.List(context.Background(), "Gencode_mouse")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"release_M22", "release_M23", "latest_release", "README.txt"}
	if !slices.Equal(entries, want) {
		t.Fatalf("entries = %v, want %v", entries, want)
	}
}

func TestHTTPSessionReportsStatusErrors(t *testing.T) {
	server := newIndexServer(t)
	session, err := listing.NewHTTPDialer(time.Second).Dial(context.Background(), server.URL+"/gencode")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer session.Close()

	if _, err := session.List(context.Background(), "Gencode_rat"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestHTTPDialRejectsBadRoots(t *testing.T) {
	dialer := listing.NewHTTPDialer(time.Second)
	for _, root := range []string{"ftp://example.org/pub", "http://", "://bad"} {
		if _, err := dialer.Dial(context.Background(), root); err == nil {
			t.Fatalf("expected error for root %q", root)
		}
	}
}

func TestNewDialerSelectsByScheme(t *testing.T) {
	tests := []struct {
		url     string
		wantFTP bool
		wantErr bool
	}{
		{url: "ftp://ftp.ebi.ac.uk/pub/databases/gencode", wantFTP: true},
		{url: "https://ftp.ebi.ac.uk/pub/databases/gencode"},
		{url: "http://mirror.example.org/gencode"},
		{url: "s3://bucket/gencode", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dialer, err := listing.NewDialer(tt.url, time.Second)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDialer returned error: %v", err)
			}
			_, isFTP := dialer.(*listing.FTPDialer)
			if isFTP != tt.wantFTP {
				t.Fatalf("dialer type %T, wantFTP=%v", dialer, tt.wantFTP)
			}
		})
	}
}

func TestPing(t *testing.T) {
	server := newIndexServer(t)
	dialer := listing.NewHTTPDialer(time.Second)

	if err := listing.Ping(context.Background(), dialer, server.URL+"/gencode"); err != nil {
		t.Fatalf("expected reachable root, got %v", err)
	}
	if err := listing.Ping(context.Background(), dialer, server.URL+"/missing"); err == nil {
		t.Fatal("expected unreachable root")
	}
}

type closeFailSession struct {
	listErr error
	closed  bool
}

func (s *closeFailSession) List(context.Context, string) ([]string, error) {
	return []string{"Gencode_human"}, s.listErr
}

func (s *closeFailSession) Close() error {
	s.closed = true
	return errors.New("quit: connection reset")
}

type sessionDialer struct{ session *closeFailSession }

func (d sessionDialer) Dial(context.Context, string) (listing.Session, error) {
	return d.session, nil
}

func TestPingClosesSessionAndIgnoresCloseError(t *testing.T) {
	ok := &closeFailSession{}
	if err := listing.Ping(context.Background(), sessionDialer{ok}, "ftp://example.org/gencode"); err != nil {
		t.Fatalf("close failure after a successful listing should not fail ping: %v", err)
	}
	if !ok.closed {
		t.Fatal("expected session to be closed")
	}

	broken := &closeFailSession{listErr: errors.New("550 no such directory")}
	if err := listing.Ping(context.Background(), sessionDialer{broken}, "ftp://example.org/gencode"); err == nil {
		t.Fatal("expected listing failure to fail ping")
	}
	if !broken.closed {
		t.Fatal("expected session to be closed after a failed listing")
	}
}

func TestFTPDialFailsWithoutServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	dialer := &listing.FTPDialer{Timeout: time.Second}
	if _, err := dialer.Dial(context.Background(), "ftp://"+addr+"/pub"); err == nil {
		t.Fatal("expected dial error for closed port")
	}
}

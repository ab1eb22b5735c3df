package ucsc

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// unmaskWriter upper-cases sequence lines. FASTA header lines pass through
// untouched.
type unmaskWriter struct {
	w         io.Writer
	header    bool
	lineStart bool
	buf       []byte
}

func newUnmaskWriter(w io.Writer) *unmaskWriter {
	return &unmaskWriter{w: w, lineStart: true}
}

func (u *unmaskWriter) Write(p []byte) (int, error) {
	u.buf = append(u.buf[:0], p...)
	for i, b := range u.buf {
		if u.lineStart {
			u.header = b == '>'
		}
		u.lineStart = b == '\n'
		if !u.header && b >= 'a' && b <= 'z' {
			u.buf[i] = b - ('a' - 'A')
		}
	}
	n, err := u.w.Write(u.buf)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// unmask copies a soft-masked download from src to dst with every sequence
// base in upper case. name selects the layout: a gzipped tarball of FASTA
// files, a gzipped FASTA or a plain FASTA.
func unmask(dst io.Writer, src io.Reader, name string) error {
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		return unmaskTarball(dst, src)
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(src)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		defer zr.Close()
		zw := gzip.NewWriter(dst)
		if _, err := io.Copy(newUnmaskWriter(zw), zr); err != nil {
			return fmt.Errorf("unmask %s: %w", name, err)
		}
		return zw.Close()
	default:
		_, err := io.Copy(newUnmaskWriter(dst), src)
		return err
	}
}

// unmaskTarball rewrites every regular file of the archive. Case changes keep
// sizes, so the original headers stay valid.
func unmaskTarball(dst io.Writer, src io.Reader) error {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("read tarball: %w", err)
	}
	defer zr.Close()
	zw := gzip.NewWriter(dst)
	tr := tar.NewReader(zr)
	tw := tar.NewWriter(zw)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tarball entry: %w", err)
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write tarball entry %s: %w", hdr.Name, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if _, err := io.Copy(newUnmaskWriter(tw), tr); err != nil {
			return fmt.Errorf("unmask %s: %w", hdr.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finish tarball: %w", err)
	}
	return zw.Close()
}

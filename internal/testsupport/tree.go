package testsupport

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"gencatalog/internal/listing"
)

// Tree is an in-memory listing.Dialer. Directories map to their entries;
// Fail makes a directory listing return an error.
type Tree struct {
	mu      sync.Mutex
	dirs    map[string][]string
	fail    map[string]error
	dialErr error

	dials  atomic.Int32
	closes atomic.Int32
	lists  atomic.Int32
}

var _ listing.Dialer = (*Tree)(nil)

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{dirs: make(map[string][]string), fail: make(map[string]error)}
}

// Set replaces the entries of dir, relative to the session root.
func (t *Tree) Set(dir string, entries ...string) *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dirs[clean(dir)] = append([]string(nil), entries...)
	return t
}

// Fail makes listing dir return err.
func (t *Tree) Fail(dir string, err error) *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail[clean(dir)] = err
	return t
}

// FailDial makes every Dial return err.
func (t *Tree) FailDial(err error) *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialErr = err
	return t
}

// Dials returns how many sessions were opened.
func (t *Tree) Dials() int { return int(t.dials.Load()) }

// Closes returns how many sessions were closed.
func (t *Tree) Closes() int { return int(t.closes.Load()) }

// Lists returns how many listings were issued.
func (t *Tree) Lists() int { return int(t.lists.Load()) }

func (t *Tree) Dial(ctx context.Context, _ string) (listing.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	err := t.dialErr
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t.dials.Add(1)
	return &treeSession{tree: t}, nil
}

type treeSession struct {
	tree   *Tree
	closed atomic.Bool
}

func (s *treeSession) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, fmt.Errorf("list %s: session closed", dir)
	}
	s.tree.lists.Add(1)
	key := clean(dir)

	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	if err := s.tree.fail[key]; err != nil {
		return nil, err
	}
	entries, ok := s.tree.dirs[key]
	if !ok {
		return nil, fmt.Errorf("list %s: no such directory", dir)
	}
	return append([]string(nil), entries...), nil
}

func (s *treeSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.tree.closes.Add(1)
	}
	return nil
}

func clean(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return "."
	}
	return path.Clean(dir)
}

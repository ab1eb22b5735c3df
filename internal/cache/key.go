package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// keyVersion is mixed into every digest so a payload layout change
// invalidates old entries instead of failing to decode them.
const keyVersion = "v1"

// Policy selects how long a cached value stays fresh.
type Policy struct {
	Name string
	TTL  time.Duration
}

var (
	// LongLived suits expensive discovery that changes at most weekly.
	LongLived = Policy{Name: "long", TTL: 7 * 24 * time.Hour}
	// ShortLived suits cheap status and reachability checks.
	ShortLived = Policy{Name: "short", TTL: 10 * time.Minute}
)

// WithTTL returns a copy of p with a different expiry.
func (p Policy) WithTTL(ttl time.Duration) Policy {
	p.TTL = ttl
	return p
}

// Key identifies a memoized call: the function identity and a digest of its
// argument values.
type Key struct {
	Func   string
	Digest string
}

// NewKey builds a key from a function identity and its arguments. Arguments
// must be JSON encodable; equal values always produce equal keys.
func NewKey(fn string, args ...any) (Key, error) {
	fn = strings.TrimSpace(fn)
	if fn == "" {
		return Key{}, fmt.Errorf("cache key: function identity required")
	}
	if args == nil {
		args = []any{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return Key{}, fmt.Errorf("cache key %s: encode arguments: %w", fn, err)
	}
	hash := sha256.New()
	hash.Write([]byte(keyVersion))
	hash.Write([]byte{0})
	hash.Write([]byte(fn))
	hash.Write([]byte{0})
	hash.Write(encoded)
	return Key{Func: fn, Digest: hex.EncodeToString(hash.Sum(nil))}, nil
}

func (k Key) String() string {
	return k.Func + ":" + k.Digest
}

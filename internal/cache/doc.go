// Package cache memoizes expensive remote computations on disk.
//
// Entries are keyed by a function identity plus a digest of the argument
// values, stored as JSON payloads in a SQLite database under the cache
// directory, and considered fresh until their age exceeds the caller's
// Policy TTL. Two policies are predefined: LongLived (about a week) for
// catalog discovery and peer catalog downloads, and ShortLived (ten minutes)
// for reachability checks.
//
// GetOrCompute guarantees at most one concurrent computation per key: callers
// in the same process share a single in-flight computation, and separate
// processes serialize on a per-key file lock and re-check the store before
// computing. Failed computations are never cached.
//
// A nil *Store is valid and simply runs every computation.
package cache

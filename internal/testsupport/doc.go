// Package testsupport holds test fixtures shared across packages: temp-dir
// configs, cache stores, an in-memory release tree and a fake peer catalog.
package testsupport

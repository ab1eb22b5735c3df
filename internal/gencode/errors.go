package gencode

import "errors"

var (
	// ErrTransport wraps listing and connection failures during discovery.
	ErrTransport = errors.New("gencode transport failure")
	// ErrCatalogInvariant marks a catalog that cannot be reconciled with the
	// peer catalog: a missing mapping or a peer name the peer does not know.
	ErrCatalogInvariant = errors.New("catalog invariant violation")
	// ErrNotReady is returned by queries issued before the provider reached
	// the state they require.
	ErrNotReady = errors.New("provider not ready")
	// ErrUnknownAssembly is returned for names absent from the catalog.
	ErrUnknownAssembly = errors.New("unknown assembly")
	// ErrUnreachable is returned when the GENCODE root cannot be listed.
	ErrUnreachable = errors.New("gencode provider unreachable")
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("provider already initialized")
)

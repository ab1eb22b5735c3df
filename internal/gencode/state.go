package gencode

// State is a provider initialization stage. States only move forward.
type State int

const (
	StateUninitialized State = iota
	StateReachabilityChecked
	StateCatalogDiscovered
	StatePeerCatalogLoaded
	StateMappingBuilt
	StateEnriched
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReachabilityChecked:
		return "reachability_checked"
	case StateCatalogDiscovered:
		return "catalog_discovered"
	case StatePeerCatalogLoaded:
		return "peer_catalog_loaded"
	case StateMappingBuilt:
		return "mapping_built"
	case StateEnriched:
		return "enriched"
	default:
		return "unknown"
	}
}

// Ready reports whether every initialization step completed.
func (s State) Ready() bool {
	return s == StateEnriched
}

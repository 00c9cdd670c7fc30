package corpuscmd

// FeatureGates exposes runtime feature toggles required by corpus command handlers.
// Callers supply closures that read the runtime configuration so handlers stay
// decoupled from it.
type FeatureGates struct {
	IndexEnabled func() bool
}

func (g FeatureGates) indexEnabled() bool {
	if g.IndexEnabled == nil {
		return false
	}
	return g.IndexEnabled()
}

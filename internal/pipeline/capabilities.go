package pipeline

// PlatformCapabilities describes what the host environment can provide.
type PlatformCapabilities struct {
	// Raster reports whether images can be decoded into pixel buffers and
	// re-encoded. When false, preprocessing is a pass-through.
	Raster bool `json:"raster"`
}

// DefaultCapabilities reports a host with full raster support.
func DefaultCapabilities() PlatformCapabilities {
	return PlatformCapabilities{Raster: true}
}

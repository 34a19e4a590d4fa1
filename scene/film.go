package scene

// Film is read from a sensor's <film> sub-element (spec.md §3).
type Film struct {
	Width  int
	Height int
}

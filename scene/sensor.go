package scene

// Sensor supports only the perspective variant (spec.md §3/§4.4); other
// <sensor type="..."> values are a fatal UnknownVariant at parse time.
type Sensor struct {
	FOV         float64
	FOVAxis     string // default "x"
	ShutterOpen  float64
	ShutterClose float64
	NearClip    float64
	FarClip     float64
	Film        Film
	ToWorld     Transform
}

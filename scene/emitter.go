package scene

// EmitterKind discriminates the Emitter sum type (spec.md §3).
type EmitterKind int

const (
	EmitterArea EmitterKind = iota
	EmitterPoint
	EmitterPointNormal
	EmitterSpot
	EmitterDirectional
	EmitterCollimated
	EmitterConstant
	EmitterEnvMap
	EmitterSunSky
)

func (k EmitterKind) String() string {
	switch k {
	case EmitterArea:
		return "area"
	case EmitterPoint:
		return "point"
	case EmitterPointNormal:
		return "pointnormal"
	case EmitterSpot:
		return "spot"
	case EmitterDirectional:
		return "directional"
	case EmitterCollimated:
		return "collimated"
	case EmitterConstant:
		return "constant"
	case EmitterEnvMap:
		return "envmap"
	case EmitterSunSky:
		return "sunsky"
	default:
		return "unknown"
	}
}

type Emitter struct {
	Kind            EmitterKind
	Transform       Transform // defaults to identity; captured before dispatch (spec.md §4.4)
	SamplingWeight  float64   // default 1.0

	Area         *AreaEmitter
	Point        *PointEmitter
	PointNormal  *PointNormalEmitter
	Spot         *SpotEmitter
	Directional  *DirectionalEmitter
	Collimated   *CollimatedEmitter
	Constant     *ConstantEmitter
	EnvMap       *EnvMapEmitter
	SunSky       *SunSkyEmitter
}

type AreaEmitter struct {
	Radiance Spectrum
}

type PointEmitter struct {
	Intensity Spectrum
	Position  [3]float64
}

type PointNormalEmitter struct {
	Intensity Spectrum
	Position  [3]float64
	Normal    [3]float64
}

type SpotEmitter struct {
	Intensity    Spectrum
	CutoffAngle  float64
	BeamWidth    float64
	Texture      *Texture // optional projected texture
}

type DirectionalEmitter struct {
	Irradiance Spectrum
	Direction  [3]float64
}

type CollimatedEmitter struct {
	Power Spectrum
}

type ConstantEmitter struct {
	Radiance Spectrum
}

type EnvMapEmitter struct {
	Filename string
	Scale    float64
	Gamma    float64 // 0 when not specified
	Cache    bool
}

// SunDirectionKind discriminates how SunSkyEmitter's direction is given.
type SunDirectionKind int

const (
	SunDirectionExplicit SunDirectionKind = iota
	SunDirectionEphemeris
)

type SunSkyEmitter struct {
	Turbidity  float64
	Resolution int

	DirectionKind SunDirectionKind
	SunDirection  [3]float64    // valid when DirectionKind == SunDirectionExplicit
	Ephemeris     *SunEphemeris // valid when DirectionKind == SunDirectionEphemeris

	SunScale  float64
	SkyScale  float64
}

// SunEphemeris is the (date, time, location) tuple used to derive a sun
// direction when no explicit sunDirection vector is given (spec.md §4.4).
type SunEphemeris struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	Latitude, Longitude       float64
	Timezone                  float64
}

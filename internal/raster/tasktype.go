package raster

// Tag is the closed set of behavioral task types (spec 4.E). Go has no
// native sum type; per spec 9's redesign note we model the "one variant
// per tag, each carrying its own constants" requirement as a closed table
// of Def values rather than an interface with one implementation per
// tag — this is what actually kills the repeated try/fallback code the
// note complains about, since BuildClusterRaster (raster.go) has exactly one
// windowing/fallback implementation driven by table data.
type Tag string

const (
	TagCO            Tag = "CO"
	TagLum           Tag = "Lum"
	TagReach         Tag = "Reach"
	TagNull          Tag = "Null"
	TagGazeAnchor    Tag = "GazeAnchor"
	TagSaccade       Tag = "Saccade"
	TagTouchFeedback Tag = "TouchFeedback"
	TagTouch         Tag = "Touch"
)

// Order is the fixed concatenation order spec 4.E requires when combining
// task types into a single per-cluster raster record.
var Order = []Tag{TagCO, TagLum, TagReach, TagNull, TagGazeAnchor, TagSaccade, TagTouchFeedback, TagTouch}

// Def is one task type's alignment policy: which event to align to
// (with a fallback if the primary is absent from every trial), the
// window in ms relative to that event, and the reaction-time definition.
type Def struct {
	Tag      Tag
	Primary  string
	Fallback string // "" => no fallback
	WindowL  float64
	WindowR  float64

	// RT numerator event. "" => no RT defined for this task (spec's Null).
	RTNumerator string

	// RTDenominatorIsAlignEvent: true for CO/Lum, where the RT
	// denominator is whichever of Primary/Fallback actually resolved for
	// windowing. False for the disGo/Go-denominated tags and for Reach,
	// which use an independent denominator pair/event below.
	RTDenominatorIsAlignEvent bool
	RTDenomPrimary            string
	RTDenomFallback           string
}

// Table is the canonical task-type table from spec 4.E (all times ms).
var Table = map[Tag]Def{
	TagCO: {
		Tag: TagCO, Primary: "TargsOn", Fallback: "disTargsOn",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenominatorIsAlignEvent: true,
	},
	TagLum: {
		Tag: TagLum, Primary: "disGo", Fallback: "Go",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenominatorIsAlignEvent: true,
	},
	TagGazeAnchor: {
		Tag: TagGazeAnchor, Primary: "disTargsOn", Fallback: "TargsOn",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenomPrimary: "disGo", RTDenomFallback: "Go",
	},
	TagSaccade: {
		Tag: TagSaccade, Primary: "disTargsOn", Fallback: "TargsOn",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenomPrimary: "disGo", RTDenomFallback: "Go",
	},
	TagTouchFeedback: {
		Tag: TagTouchFeedback, Primary: "disTargsOn", Fallback: "TargsOn",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenomPrimary: "disGo", RTDenomFallback: "Go",
	},
	TagTouch: {
		Tag: TagTouch, Primary: "disTargsOn", Fallback: "TargsOn",
		WindowL: -300, WindowR: 500,
		RTNumerator: "SaccStart", RTDenomPrimary: "disGo", RTDenomFallback: "Go",
	},
	TagReach: {
		Tag: TagReach, Primary: "ReachStart", Fallback: "",
		WindowL: -400, WindowR: 400,
		RTNumerator: "ReachStart", RTDenomPrimary: "TargsOn",
	},
	TagNull: {
		Tag: TagNull, Primary: "Pulse_start", Fallback: "",
		WindowL: -300, WindowR: 500,
		RTNumerator: "",
	},
}

// coAsymmetricNeighborDef returns the CO task def with primary/fallback
// swapped, used when building a neighbor cluster's raster (spec 4.E:
// "Neighbor rasters: ... the two implementations of the CO primary/
// fallback pair differ between the cluster's own raster and its
// neighbors'" — DESIGN.md Open Question decision 2 treats this as
// deliberate).
func coAsymmetricNeighborDef() Def {
	d := Table[TagCO]
	d.Primary, d.Fallback = d.Fallback, d.Primary
	return d
}

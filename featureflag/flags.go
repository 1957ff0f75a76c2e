package featureflag

// Flag is the name of a feature flag
type Flag string

const (
	// FlagDisableSpatialPrefilter skips the quadtree prefilter stage and feeds
	// every year-filtered turbine to frustum culling.
	FlagDisableSpatialPrefilter Flag = "disable-spatial-prefilter"

	// FlagDisableFrustumCulling treats every turbine as visible.
	FlagDisableFrustumCulling Flag = "disable-frustum-culling"

	// FlagDisableLOD renders every visible turbine at full detail.
	FlagDisableLOD Flag = "disable-lod"

	// FlagDisableFrameBroadcast disables the periodic frame ticker so clients
	// only receive frames they explicitly request.
	FlagDisableFrameBroadcast Flag = "disable-frame-broadcast"
)

package websocket

// CameraUpdatePayload carries the orbital camera state from the viewer.
type CameraUpdatePayload struct {
	RotX   float32 `json:"rot_x"`
	RotY   float32 `json:"rot_y"`
	Zoom   float32 `json:"zoom"`
	FOV    float32 `json:"fov,omitempty"`
	Aspect float32 `json:"aspect,omitempty"`
}

// YearSetPayload selects the commissioning year the viewer displays.
type YearSetPayload struct {
	Year int `json:"year"`
}

// TurbineState is the per-turbine render state sent in frames.
type TurbineState struct {
	ID         uint32  `json:"id"`
	X          float32 `json:"x"`
	Z          float32 `json:"z"`
	BaseHeight float32 `json:"base_height"`
	Height     float32 `json:"height"`
	RotorRad   float32 `json:"rotor_radius"`
	BladeAngle float32 `json:"blade_angle"`
}

// FrameStatsPayload mirrors the pipeline stats for one frame.
type FrameStatsPayload struct {
	TotalCandidates int     `json:"total_candidates"`
	CulledBySpatial int     `json:"culled_by_spatial"`
	CulledByFrustum int     `json:"culled_by_frustum"`
	Visible         int     `json:"visible"`
	ElapsedMicros   int64   `json:"elapsed_us"`
	VisibleRatio    float32 `json:"visible_ratio"`
}

// FrameResponsePayload is one rendered frame: visible turbines grouped by
// lod tier name.
type FrameResponsePayload struct {
	Year   int                       `json:"year"`
	Groups map[string][]TurbineState `json:"groups"`
	Stats  FrameStatsPayload         `json:"stats"`
}

// SceneResponsePayload describes the loaded field.
type SceneResponsePayload struct {
	TurbineCount int       `json:"turbine_count"`
	Years        []int     `json:"years"`
	XMin         float32   `json:"x_min"`
	XMax         float32   `json:"x_max"`
	ZMin         float32   `json:"z_min"`
	ZMax         float32   `json:"z_max"`
	LODRatios    []float32 `json:"lod_ratios"`
}

// ErrorPayload reports a request failure to the viewer.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

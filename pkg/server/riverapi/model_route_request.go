package riverapi

// LatLon is a WGS-84 coordinate pair in a request body.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRequest is the body for POST /routes. flow_condition defaults to
// "normal" and paddle_speed_mps to 0 (pure float).
type RouteRequest struct {
	Start          LatLon  `json:"start"`
	End            LatLon  `json:"end"`
	FlowCondition  string  `json:"flow_condition,omitempty"`
	PaddleSpeedMPS float64 `json:"paddle_speed_mps,omitempty"`
	AllowUpstream  bool    `json:"allow_upstream,omitempty"`
}

// AssertRouteRequestRequired checks that both endpoints are present.
func AssertRouteRequestRequired(obj RouteRequest) error {
	if obj.Start == (LatLon{}) {
		return &RequiredError{Field: "start"}
	}
	if obj.End == (LatLon{}) {
		return &RequiredError{Field: "end"}
	}
	return nil
}

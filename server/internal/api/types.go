package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State      string  `json:"state"`
	Records    int     `json:"records"`
	Sites      int     `json:"sites"`
	MinPayload float64 `json:"min_payload"`
	MaxPayload float64 `json:"max_payload"`
}

// SiteOption is one entry of the site dropdown.
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SliderResponse describes the payload range slider.
type SliderResponse struct {
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Marks []float64  `json:"marks"`
	Value [2]float64 `json:"value"`
}

// OptionsResponse is the payload for GET /api/v1/options.
type OptionsResponse struct {
	Sites       []SiteOption   `json:"sites"`
	DefaultSite string         `json:"default_site"`
	Slider      SliderResponse `json:"slider"`
}

// Slice is one (label, value) pair of the aggregate view.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// SummaryResponse is the payload for GET /api/v1/summary.
type SummaryResponse struct {
	Site   string  `json:"site"`
	Mode   string  `json:"mode"` // "by_site" | "site_outcomes"
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

// Point is one launch in the payload/outcome view.
type Point struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	Outcome                int     `json:"outcome"` // 0 | 1
	OutcomeLabel           string  `json:"outcome_label"`
	BoosterVersionCategory string  `json:"booster_version_category"`
	Site                   string  `json:"site"`
}

// CorrelationResponse is the payload for GET /api/v1/correlation.
type CorrelationResponse struct {
	Site        string  `json:"site"`
	PayloadLow  float64 `json:"payload_low"`
	PayloadHigh float64 `json:"payload_high"`
	Title       string  `json:"title"`
	Count       int     `json:"count"`
	Points      []Point `json:"points"`
}

// QueryRequest is a dashboard selection sent by WebSocket and gRPC clients.
// Nil bounds default to the dataset's payload range.
type QueryRequest struct {
	Site        string   `json:"site"`
	PayloadLow  *float64 `json:"payload_low,omitempty"`
	PayloadHigh *float64 `json:"payload_high,omitempty"`
}

// UpdateResponse carries both views for one selection.
type UpdateResponse struct {
	Summary     SummaryResponse     `json:"summary"`
	Correlation CorrelationResponse `json:"correlation"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

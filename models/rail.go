package models

// Rail node status levels returned by the inference model.
const (
	NodeStatusNormal   = "NORMAL"
	NodeStatusElevated = "ELEVATED"
	NodeStatusStressed = "STRESSED"
	NodeStatusCritical = "CRITICAL"
)

type FreightScheduleEntry struct {
	Window        string  `json:"window"`
	ShipCount     int     `json:"ship_count"`
	FreightMassKg float64 `json:"freight_mass_kg"`
}

type FreightSchedule struct {
	ForecastWindowHours int                    `json:"forecast_window_hours"`
	Windows             []FreightScheduleEntry `json:"windows"`
	TotalShips          int                    `json:"total_ships"`
	TotalFreightKg      float64                `json:"total_freight_kg"`
	HourlyRateKgPerHour float64                `json:"hourly_rate_kg_per_hour"`
}

type RailNodeAssessment struct {
	NodeID                 string  `json:"node_id"`
	Location               string  `json:"location"`
	EstimatedLoadKgPerHour float64 `json:"estimated_load_kg_per_hour"`
	CapacityUtilizationPct float64 `json:"capacity_utilization_pct"`
	Status                 string  `json:"status"`
	ConnectedLines         int     `json:"connected_lines"`
	PrimaryRailroad        string  `json:"primary_railroad"`
}

type RailAnalysisSummary struct {
	CriticalNodes      int      `json:"critical_nodes"`
	StressedNodes      int      `json:"stressed_nodes"`
	RecommendedActions []string `json:"recommended_actions"`
}

// RailAnalysis is either a parsed node-stress assessment or, when the
// inference response failed validation, the raw text with ParseError set.
type RailAnalysis struct {
	AnalysisTimestamp            string               `json:"analysis_timestamp,omitempty"`
	TotalInboundFreightKgPerHour float64              `json:"total_inbound_freight_kg_per_hour,omitempty"`
	Nodes                        []RailNodeAssessment `json:"nodes,omitempty"`
	Summary                      *RailAnalysisSummary `json:"summary,omitempty"`
	RawResponse                  string               `json:"raw_response,omitempty"`
	ParseError                   bool                 `json:"parse_error,omitempty"`
}

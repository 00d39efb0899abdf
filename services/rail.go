package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/logan-wrld/austin-port-to-rail/models"
)

// RailAnalysisService merges rail topology with an inbound freight
// schedule into a structured analysis request and delegates the
// load-vs-capacity inference to the oracle. It never computes node
// load or utilization itself.
type RailAnalysisService struct {
	topology *TopologyService
	oracle   Oracle
	timeout  time.Duration
}

func NewRailAnalysisService(topology *TopologyService, oracle Oracle, timeout time.Duration) *RailAnalysisService {
	return &RailAnalysisService{
		topology: topology,
		oracle:   oracle,
		timeout:  timeout,
	}
}

// Analyze validates the inputs, builds the freight schedule and the
// topology-grounded prompt, and calls the oracle. The returned
// RailAnalysis is either the validated structured result or a degraded
// one carrying the raw response with ParseError set. Only input
// validation failures and an unreachable oracle return an error.
func (s *RailAnalysisService) Analyze(ctx context.Context, shipCount, forecastWindowHours int) (models.FreightSchedule, models.RailAnalysis, error) {
	schedule, err := BuildFreightSchedule(shipCount, forecastWindowHours)
	if err != nil {
		return models.FreightSchedule{}, models.RailAnalysis{}, err
	}

	summary := s.topology.Summarize("TX")
	prompt := buildAnalysisPrompt(summary, schedule)

	raw, err := s.oracle.Generate(ctx, prompt, GenerateOptions{
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONFormat:  true,
		Timeout:     s.timeout,
	})
	if err != nil {
		return schedule, models.RailAnalysis{}, err
	}

	return schedule, parseRailAnalysis(raw), nil
}

// parseRailAnalysis validates the oracle's text against the documented
// schema. A response that is not well-formed comes back as a degraded
// result preserving the raw text verbatim: no silent success, no crash.
func parseRailAnalysis(raw string) models.RailAnalysis {
	degraded := models.RailAnalysis{RawResponse: raw, ParseError: true}

	cleaned := extractJSON(raw)
	if cleaned == "" {
		return degraded
	}

	var analysis models.RailAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return degraded
	}
	if len(analysis.Nodes) == 0 || analysis.Summary == nil {
		return degraded
	}

	for i := range analysis.Nodes {
		analysis.Nodes[i].Status = strings.ToUpper(strings.TrimSpace(analysis.Nodes[i].Status))
	}
	analysis.RawResponse = ""
	analysis.ParseError = false
	return analysis
}

var (
	jsonFencePattern   = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern  = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaFixup = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON pulls a JSON object out of model output, tolerating
// markdown code fences and trailing commas.
func extractJSON(content string) string {
	var raw string
	if m := jsonFencePattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = jsonObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaFixup.ReplaceAllString(raw, "$1")
}

func buildAnalysisPrompt(summary TopologySummary, schedule models.FreightSchedule) string {
	var b strings.Builder

	b.WriteString("Analyze the following railroad and freight data. Return ONLY structured JSON data, no prose.\n\n")
	b.WriteString(buildTopologyContext(summary))
	b.WriteString(buildForecastContext(schedule))

	b.WriteString(`
For the top 15 rail nodes in Texas (prioritize nodes near Houston/Galveston):
1. Estimate inbound load pressure (kg/hour) based on ship forecast
2. Compare against inferred rail capacity from line density and node connectivity
3. Classify node status as: NORMAL, ELEVATED, STRESSED, or CRITICAL

Return JSON in this exact format:
{
  "analysis_timestamp": "ISO timestamp",
  "total_inbound_freight_kg_per_hour": number,
  "nodes": [
    {
      "node_id": "string",
      "location": "city/area name",
      "estimated_load_kg_per_hour": number,
      "capacity_utilization_pct": number,
      "status": "NORMAL|ELEVATED|STRESSED|CRITICAL",
      "connected_lines": number,
      "primary_railroad": "string"
    }
  ],
  "summary": {
    "critical_nodes": number,
    "stressed_nodes": number,
    "recommended_actions": ["string"]
  }
}`)

	return b.String()
}

func buildTopologyContext(summary TopologySummary) string {
	if summary.NodeCount == 0 && len(summary.SampleLines) == 0 {
		return ""
	}

	var b strings.Builder

	if summary.NodeCount > 0 {
		fmt.Fprintf(&b, "Railroad Nodes Summary (Texas):\n")
		fmt.Fprintf(&b, "- Total nodes: %d\n", summary.NodeCount)
		fmt.Fprintf(&b, "- Passenger stations: %d\n", summary.PassengerStations)
		fmt.Fprintf(&b, "- Boundary/interchange points: %d\n\n", summary.BoundaryNodes)

		if len(summary.SampleNodes) > 0 {
			fmt.Fprintf(&b, "Sample node data (first %d):\n", len(summary.SampleNodes))
			for _, n := range summary.SampleNodes {
				fmt.Fprintf(&b, "  node=%s state=%s county=%s district=%s boundary=%t\n",
					n.NodeID, n.State, n.CountyFIPS, n.District, n.Boundary)
			}
			b.WriteString("\n")
		}
	}

	if len(summary.SampleLines) > 0 || summary.TotalMiles > 0 {
		fmt.Fprintf(&b, "Railroad Lines Summary (Texas):\n")
		fmt.Fprintf(&b, "- Total track miles: %.1f\n", summary.TotalMiles)
		if len(summary.OwnerCounts) > 0 {
			b.WriteString("- Rail owners:")
			for _, oc := range summary.OwnerCounts {
				fmt.Fprintf(&b, " %s=%d", oc.Owner, oc.Count)
			}
			b.WriteString("\n")
		}
		if len(summary.SampleLines) > 0 {
			fmt.Fprintf(&b, "\nSample line data (first %d):\n", len(summary.SampleLines))
			for _, l := range summary.SampleLines {
				fmt.Fprintf(&b, "  owner=%s state=%s miles=%.1f district=%s\n",
					l.Owner, l.State, l.Miles, l.District)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func buildForecastContext(schedule models.FreightSchedule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Inbound Ship Forecast (%d-hour window):\n", schedule.ForecastWindowHours)
	for _, w := range schedule.Windows {
		fmt.Fprintf(&b, "- %s: %d ships\n", w.Window, w.ShipCount)
	}
	fmt.Fprintf(&b, "- Total inbound: %d ships\n\n", schedule.TotalShips)

	b.WriteString("Estimated freight conversion:\n")
	fmt.Fprintf(&b, "- Average TEU per ship: %d\n", TEUPerShip)
	fmt.Fprintf(&b, "- Average weight per TEU: %d kg\n", KgPerTEU)
	fmt.Fprintf(&b, "- Total expected freight: %.0f kg over %d hours\n", schedule.TotalFreightKg, schedule.ForecastWindowHours)
	fmt.Fprintf(&b, "- Hourly inbound rate: %.0f kg/hour\n", schedule.HourlyRateKgPerHour)

	return b.String()
}
